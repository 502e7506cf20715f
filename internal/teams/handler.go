package teams

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
	r.Get("/", h.listTeams)
	r.Post("/", h.createTeam)
	r.Get("/{id}", h.getTeam)
	r.Put("/{id}/roles", h.replaceRoles)
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), access.UserFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "list teams", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	team, err := h.service.Get(r.Context(), access.UserFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, r, "get team", err)
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var input NewTeam
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	team, err := h.service.Create(r.Context(), access.UserFromContext(r.Context()), input)
	if err != nil {
		h.respondError(w, r, "create team", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}

type rolesRequest struct {
	Roles []string `json:"roles" validate:"required,dive,min=2"`
}

func (h *Handler) replaceRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req rolesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	team, err := h.service.ReplaceRoles(r.Context(), access.UserFromContext(r.Context()), id, req.Roles)
	if err != nil {
		h.respondError(w, r, "replace team roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, team)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "team id must be numeric")
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
