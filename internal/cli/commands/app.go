package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chazo1994/Creatory/internal/cli/client"
	"github.com/chazo1994/Creatory/internal/cli/config"
	"github.com/chazo1994/Creatory/internal/cli/ui"
	"github.com/chazo1994/Creatory/internal/session"
	"github.com/chazo1994/Creatory/pkg/logger"
)

// app bundles what a command needs: the persisted config, the session store
// seeded from it and an API client following the store's token
type app struct {
	cfg    *config.Config
	store  *session.Store
	api    *client.APIClient
	logger *slog.Logger
}

// setupLogging installs the process logger from config and --log-level
func setupLogging() error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := logger.Setup(cfg.Log); err != nil {
		ui.PrintError("failed to set up logging: %v", err)
		return fmt.Errorf("logger setup failed")
	}
	return nil
}

// loadApp loads config and wires the session store. With requireAuth set it
// fails unless a token is stored. server overrides the configured server.
func loadApp(requireAuth bool, server string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, fmt.Errorf("config load failed")
	}

	if requireAuth && !cfg.IsAuthenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'studioctl login' to authenticate.")
		return nil, fmt.Errorf("authentication required")
	}
	if server != "" {
		cfg.Server = server
	}

	log := slog.Default().With("component", "studioctl")
	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken, client.WithLogger(log))
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, fmt.Errorf("client creation failed")
	}
	cfg.Server = apiClient.Server()

	a := &app{
		cfg:    cfg,
		store:  session.NewStore(cfg.Snapshot()),
		api:    apiClient,
		logger: log,
	}

	// every committed transition is persisted and keeps the client's token current
	a.store.Subscribe(func(snap session.Snapshot) {
		a.api.SetToken(snap.Token)
		a.cfg.ApplySnapshot(snap)
		if err := a.cfg.Save(); err != nil {
			a.logger.Warn("failed to persist session", "error", err)
		}
	})
	return a, nil
}

// refreshThreads lists the selected conversation's threads and selects the
// first main and quick thread
func (a *app) refreshThreads(ctx context.Context) error {
	convID := a.store.Snapshot().ConversationID
	if convID == "" {
		ui.PrintError("no conversation selected")
		fmt.Println("\nRun 'studioctl conversation use <id>' first.")
		return fmt.Errorf("conversation required")
	}

	threads, err := a.api.ListThreads(ctx, convID)
	if err != nil {
		ui.PrintError("failed to list threads: %v", err)
		return fmt.Errorf("list threads failed")
	}
	a.store.ApplyThreads(threads)
	return nil
}

// requireWorkspace returns the selected workspace or prints a hint
func (a *app) requireWorkspace() (string, error) {
	wsID := a.store.Snapshot().WorkspaceID
	if wsID == "" {
		ui.PrintError("no workspace selected")
		fmt.Println("\nRun 'studioctl workspace use <id>' first.")
		return "", fmt.Errorf("workspace required")
	}
	return wsID, nil
}
