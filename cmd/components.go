package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetimport/internal/browser"
	"github.com/xkilldash9x/fleetimport/internal/config"
	"github.com/xkilldash9x/fleetimport/internal/storage"
	"github.com/xkilldash9x/fleetimport/internal/workflow"
)

// components bundles the long-lived pieces both subcommands need: the browser
// launcher, the object store, and the workflow runner built on top of them.
type components struct {
	launcher *browser.Launcher
	runner   *workflow.Runner
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("object store setup: %w", err)
	}
	resolver := storage.NewResolver(store, logger)

	launcher := browser.NewLauncher(cfg.Browser, logger)

	sessions := workflow.SessionFactoryFunc(func(ctx context.Context) (workflow.Session, error) {
		return launcher.NewSession(ctx)
	})

	runner := workflow.NewRunner(sessions, resolver, cfg.Browser, cfg.Workflow, logger)

	return &components{launcher: launcher, runner: runner}, nil
}

func (c *components) Shutdown() {
	c.launcher.Shutdown()
}
