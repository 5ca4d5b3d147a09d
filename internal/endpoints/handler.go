package endpoints

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/rbac"
)

// Handler wires HTTP endpoints for endpoint management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbac,
		validator: validator.New(),
	}
}

// MountRoutes registers endpoint management routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Protect("api-endpoint-list")).Get("/", h.list)
	r.With(h.rbac.Protect("api-endpoint-list")).Post("/", h.create)
	r.With(h.rbac.Protect("api-endpoint-detail")).Get("/{id}", h.get)
	r.With(h.rbac.Protect("api-endpoint-detail")).Put("/{id}", h.update)
	r.With(h.rbac.Protect("api-endpoint-detail")).Delete("/{id}", h.delete)
}

type endpointPayload struct {
	Path   string `json:"path" validate:"required"`
	Method string `json:"method" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type endpointResponse struct {
	ID     int64  `json:"id"`
	Path   string `json:"path"`
	Method string `json:"method"`
	Name   string `json:"name"`
}

func toResponse(ep Endpoint) endpointResponse {
	return endpointResponse{ID: ep.ID, Path: ep.Path, Method: ep.Method, Name: ep.Name}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListEndpoints(r.Context())
	if err != nil {
		h.logger.Error("list endpoints", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]endpointResponse, 0, len(list))
	for _, ep := range list {
		out = append(out, toResponse(ep))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload endpointPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ep, err := h.service.CreateEndpoint(r.Context(), payload.Path, payload.Method, payload.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(ep))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	ep, err := h.service.GetEndpoint(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(ep))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	var payload endpointPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ep, err := h.service.UpdateEndpoint(r.Context(), id, payload.Path, payload.Method, payload.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(ep))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := h.service.DeleteEndpoint(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
