package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/rbac"
	"github.com/gatewarden/gatewarden/internal/shared"
)

// Messages returned by the login and logout endpoints. Bad-credential cases
// share one message so callers cannot tell a missing user from a wrong password.
const (
	msgBadCredentials  = "No active account found with the given credentials."
	msgDisabledAccount = "User account is disabled."
	msgMissingFields   = "Username and password are required."
	msgLoggedOut       = "Successfully logged out."
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	rbac         rbac.Middleware
	loginLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginLimiter may be nil.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, loginLimiter func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, loginLimiter: loginLimiter}
}

// MountRoutes registers auth routes on provided router. Logout is itself a
// permission-gated endpoint; login and refresh are open.
func (h *Handler) MountRoutes(r chi.Router) {
	if h.loginLimiter != nil {
		r.With(h.loginLimiter).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/token/refresh", h.handleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.With(h.rbac.Protect("logout")).Post("/logout", h.handleLogout)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access      string `json:"access"`
	Refresh     string `json:"refresh"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"detail": msgMissingFields})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"detail": msgMissingFields})
		return
	}

	pair, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"detail": msgBadCredentials})
		case errors.Is(err, shared.ErrAccountDisabled):
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"detail": msgDisabledAccount})
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Access:      pair.Access,
		Refresh:     pair.Refresh,
		IsSuperuser: pair.IsSuperuser,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Refresh == "" {
		httpx.JSON(w, http.StatusUnauthorized, map[string]string{"detail": shared.ErrInvalidToken.Error()})
		return
	}
	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidToken) {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"detail": shared.ErrInvalidToken.Error()})
			return
		}
		h.logger.Error("refresh token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"access": access})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Refresh == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
		return
	}
	if err := h.service.Revoke(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, shared.ErrInvalidToken) {
			httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
			return
		}
		h.logger.Error("revoke token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msgLoggedOut})
}
