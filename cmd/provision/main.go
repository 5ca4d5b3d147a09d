package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatewarden/gatewarden/internal/app"
	"github.com/gatewarden/gatewarden/internal/endpoints"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/provision"
	"github.com/gatewarden/gatewarden/internal/roles"
)

// Seeds the endpoint catalogue and the admin role. Safe to rerun; the
// full_access permission is reset to cover exactly the configured routes.
func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping provisioning")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	provisioner := provision.New(
		endpoints.NewRepository(pool),
		permissions.NewRepository(pool),
		roles.NewRepository(pool),
		logger,
	)

	if err := provisioner.Run(ctx, provision.DefaultRoutes); err != nil {
		logger.Error("provision", slog.Any("error", err))
		os.Exit(1)
	}
}
