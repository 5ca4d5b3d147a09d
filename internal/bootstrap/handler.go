package bootstrap

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Handler wires the one-shot admin bootstrap endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the bootstrap route on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bootstrap-admin", h.handleBootstrap)
}

type bootstrapRequest struct {
	Username string `json:"username" validate:"required,min=4,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	_, err := h.service.CreateAdmin(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyBootstrapped):
			httpx.JSON(w, http.StatusForbidden, map[string]string{
				"error": "Admin user already exists. This endpoint is disabled.",
			})
		case errors.Is(err, ErrUsernameTaken):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username already taken")
		case errors.Is(err, ErrEmailTaken):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email already taken")
		case errors.Is(err, ErrRoleMissing):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role admin does not exist; run provisioning first")
		case errors.Is(err, shared.ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("bootstrap admin", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"message": "Admin user created successfully!"})
}
