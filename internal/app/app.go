package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-markets/internal/client"
	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
	"github.com/bobmcallan/vire-markets/internal/dashboard"
	"github.com/bobmcallan/vire-markets/internal/handlers"
	"github.com/bobmcallan/vire-markets/internal/interfaces"
	"github.com/bobmcallan/vire-markets/internal/mcp"
	"github.com/bobmcallan/vire-markets/internal/scheduler"
	"github.com/bobmcallan/vire-markets/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage   interfaces.StorageManager
	Client    *client.DashboardClient
	Dashboard *dashboard.Coordinator
	Scheduler *scheduler.Scheduler

	// HTTP handlers
	PageHandler      *handlers.PageHandler
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	DashboardHandler *handlers.DashboardHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies. The scheduler is
// created but not started; call Start once the HTTP server is listening.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE, do not use in production")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	mgr, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = mgr

	a.Client = client.NewDashboardClient(cfg.API, logger)
	a.Dashboard = dashboard.New(cfg.Dashboard, a.Client, mgr.KeyValueStorage(), logger)
	a.Scheduler = scheduler.New(cfg.Dashboard, a.Dashboard, logger)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Config.IsDevMode(), a.Dashboard)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.Dashboard, a.Scheduler)
	a.MCPHandler = mcp.NewHandler(a.Dashboard, a.Scheduler, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Start renders the cached snapshot when it is fresh enough and starts the
// refresh scheduler.
func (a *App) Start(ctx context.Context) error {
	fromCache := a.Dashboard.Bootstrap(ctx)
	a.Logger.Info().
		Bool("from_cache", fromCache).
		Str("interval", a.Config.Dashboard.RefreshIntervalDuration().String()).
		Msg("starting dashboard refresh")
	return a.Scheduler.Start(ctx, fromCache)
}

// Close stops the scheduler and closes storage.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
