package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
	"github.com/chainops/chainops/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes. The caller mounts these behind the
// authenticated-session middleware; per-operation authorization happens in
// the service so the rules hold for any transport.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/price-users", h.listPriceUsers)
	r.Get("/{id}", h.getUser)
	r.Post("/location-user", h.createLocationUser)
	r.Patch("/{id}/locations", h.updateLocations)
	r.Patch("/{id}/team", h.updateTeam)
	r.Patch("/{id}/group", h.updateGroup)
	r.Patch("/{id}/disable", h.disableUser)
	r.Patch("/{id}/enable", h.enableUser)
	r.Delete("/{id}", h.deleteUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), access.UserFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "list users", err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	meta := shared.NewPagination(page, perPage, len(users))

	start := (meta.Page - 1) * meta.PerPage
	if start > len(users) {
		start = len(users)
	}
	end := start + meta.PerPage
	if end > len(users) {
		end = len(users)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       users[start:end],
		"pagination": meta,
	})
}

func (h *Handler) listPriceUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListPriceUsers(r.Context(), access.UserFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "list price users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), access.UserFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, r, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type locationsRequest struct {
	LocationIDs []string `json:"locationIds" validate:"required"`
}

func (h *Handler) updateLocations(w http.ResponseWriter, r *http.Request) {
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
	actor := access.UserFromContext(r.Context())
	if err := h.service.UpdateLocations(r.Context(), actor, id, req.LocationIDs); err != nil {
		h.respondError(w, r, "update locations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type teamRequest struct {
	TeamID int64 `json:"teamId" validate:"required"`
}

func (h *Handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := access.UserFromContext(r.Context())
	if err := h.service.ReassignTeam(r.Context(), actor, id, req.TeamID); err != nil {
		h.respondError(w, r, "reassign team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type groupRequest struct {
	GroupID *int64 `json:"groupId"`
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	actor := access.UserFromContext(r.Context())
	if err := h.service.SetGroup(r.Context(), actor, id, req.GroupID); err != nil {
		h.respondError(w, r, "set group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) disableUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Disable(r.Context(), access.UserFromContext(r.Context()), id); err != nil {
		h.respondError(w, r, "disable user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) enableUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Enable(r.Context(), access.UserFromContext(r.Context()), id); err != nil {
		h.respondError(w, r, "enable user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), access.UserFromContext(r.Context()), id); err != nil {
		h.respondError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createLocationUser(w http.ResponseWriter, r *http.Request) {
	var input NewLocationUser
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := access.UserFromContext(r.Context())
	user, err := h.service.CreateLocationUser(r.Context(), actor, input)
	if err != nil {
		h.respondError(w, r, "create location user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "user id must be numeric")
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
