package locations

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chainops/chainops/internal/access"
	"github.com/chainops/chainops/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listLocations)
	r.Post("/", h.registerLocation)
	r.Post("/sync", h.syncDirectory)
	r.Get("/{id}", h.getLocation)
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), access.UserFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "list locations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.service.Get(r.Context(), access.UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get location", err)
		return
	}
	httpx.JSON(w, http.StatusOK, loc)
}

func (h *Handler) registerLocation(w http.ResponseWriter, r *http.Request) {
	var input NewLocation
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	loc, err := h.service.Register(r.Context(), access.UserFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, r, "register location", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loc)
}

type syncRequest struct {
	Locations []NewLocation `json:"locations" validate:"required,min=1,dive"`
}

func (h *Handler) syncDirectory(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	feed := make([]Location, 0, len(req.Locations))
	for _, in := range req.Locations {
		feed = append(feed, Location{ID: in.ID, Name: in.Name, Address: in.Address})
	}
	gone, err := h.service.SyncDirectory(r.Context(), access.UserFromContext(r.Context()), feed)
	if err != nil {
		h.respondError(w, r, "sync directory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{
		"received":    int64(len(feed)),
		"deactivated": gone,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
