package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatewarden/gatewarden/internal/app"
	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/bootstrap"
	"github.com/gatewarden/gatewarden/internal/endpoints"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/rbac"
	"github.com/gatewarden/gatewarden/internal/roles"
	"github.com/gatewarden/gatewarden/internal/token"
	"github.com/gatewarden/gatewarden/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	signer, err := token.NewHMACSigner(cfg.JWTSecret)
	if err != nil {
		logger.Error("init signer", slog.Any("error", err))
		os.Exit(1)
	}

	guard := rbac.NewGuard(rbac.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Guard: guard, Signer: signer, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, signer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware, app.LoginRateLimiter(cfg))

	bootstrapService := bootstrap.NewService(bootstrap.NewRepository(dbpool))
	bootstrapHandler := bootstrap.NewHandler(logger, bootstrapService)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	rolesService := roles.NewService(roles.NewRepository(dbpool))
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

	permsService := permissions.NewService(permissions.NewRepository(dbpool))
	permsHandler := permissions.NewHandler(logger, permsService, rbacMiddleware)

	endpointsService := endpoints.NewService(endpoints.NewRepository(dbpool))
	endpointsHandler := endpoints.NewHandler(logger, endpointsService, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		BootstrapHandler: bootstrapHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		PermsHandler:     permsHandler,
		EndpointsHandler: endpointsHandler,
		RBACMiddleware:   rbacMiddleware,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
