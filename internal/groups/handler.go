package groups

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/users"
)

// LocationUserLister resolves the accounts assigned to one location. The
// users service implements it.
type LocationUserLister interface {
	ListByLocation(ctx context.Context, actor *access.User, locationID string) ([]users.User, error)
}

type Handler struct {
	logger        *slog.Logger
	service       *Service
	locationUsers LocationUserLister
	validator     *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, locationUsers LocationUserLister) *Handler {
	return &Handler{logger: logger, service: service, locationUsers: locationUsers, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listGroups)
	r.Post("/", h.createGroup)
	r.Get("/{id}", h.getGroup)
	r.Put("/{id}/locations", h.replaceLocations)
	r.Delete("/{id}", h.deleteGroup)
	r.Get("/locations/{locationID}/users", h.listLocationUsers)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), access.UserFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "list groups", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	group, err := h.service.Get(r.Context(), access.UserFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, r, "get group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var input NewGroup
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	group, err := h.service.Create(r.Context(), access.UserFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, r, "create group", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, group)
}

type locationsRequest struct {
	LocationIDs []string `json:"locationIds" validate:"required,dive,min=1"`
}

func (h *Handler) replaceLocations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req locationsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	group, err := h.service.ReplaceLocations(r.Context(), access.UserFromContext(r.Context()), id, req.LocationIDs)
	if err != nil {
		h.respondError(w, r, "replace group locations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), access.UserFromContext(r.Context()), id); err != nil {
		h.respondError(w, r, "delete group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLocationUsers(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")
	if locationID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "location id is required")
		return
	}
	list, err := h.locationUsers.ListByLocation(r.Context(), access.UserFromContext(r.Context()), locationID)
	if err != nil {
		h.respondError(w, r, "list location users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "group id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
