package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/bootstrap"
	"github.com/gatewarden/gatewarden/internal/endpoints"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/rbac"
	"github.com/gatewarden/gatewarden/internal/roles"
	"github.com/gatewarden/gatewarden/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	BootstrapHandler *bootstrap.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	PermsHandler     *permissions.Handler
	EndpointsHandler *endpoints.Handler
	RBACMiddleware   rbac.Middleware
}

// NewRouter constructs the chi.Router with Gatewarden defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)
	params.BootstrapHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Authenticate)
		r.Route("/auth", params.UsersHandler.MountRoutes)
		r.Route("/role", params.RolesHandler.MountRoutes)
		r.Route("/permission", params.PermsHandler.MountRoutes)
		r.Route("/api-endpoint", params.EndpointsHandler.MountRoutes)
	})

	return r
}
