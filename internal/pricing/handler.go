package pricing

import (
	"log/slog"
	"net/http"
	"strconv"

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
	r.Get("/locations/{locationID}", h.listForLocation)
	r.Post("/mappings", h.upsertMapping)
	r.Patch("/mappings/{id}", h.setPrice)
}

func (h *Handler) listForLocation(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForLocation(r.Context(), access.UserFromContext(r.Context()), chi.URLParam(r, "locationID"))
	if err != nil {
		h.respondError(w, r, "list price mappings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) upsertMapping(w http.ResponseWriter, r *http.Request) {
	var input NewMapping
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	m, err := h.service.Upsert(r.Context(), access.UserFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, r, "upsert price mapping", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "mapping id must be numeric")
		return
	}
	var req PriceChange
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	m, err := h.service.SetPrice(r.Context(), access.UserFromContext(r.Context()), id, req.Price)
	if err != nil {
		h.respondError(w, r, "set price", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if h.logger != nil {
		h.logger.Warn(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
