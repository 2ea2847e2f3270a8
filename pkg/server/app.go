package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FlowScan/internal/usecase"
	"FlowScan/pkg/config"
	xhttp "FlowScan/pkg/http"
	applogger "FlowScan/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	scheduler  *usecase.CycleScheduler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. httpServer may be nil.
func New(cfg *config.Config, log *applogger.Logger, scheduler *usecase.CycleScheduler, httpServer *xhttp.Server) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		scheduler:  scheduler,
		httpServer: httpServer,
	}
}

// Run starts the scheduler and blocks until it returns. SIGINT/SIGTERM stop the
// scheduler at the next cycle boundary.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller supplied lifetime.
func (a *App) RunContext(ctx context.Context) error {
	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	a.log.Info("scanner started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("mode", a.cfg.Scan.Mode),
		applogger.String("schedule", a.cfg.Scheduler.Mode),
		applogger.String("universe", a.cfg.Scan.UniverseSource),
		applogger.Int("workers", a.cfg.Scan.Workers))

	err := a.scheduler.Run(ctx)
	if err != nil {
		a.log.Error("scanner stopped with error", applogger.Error(err))
	}

	a.shutdown()
	return err
}

// shutdown gracefully stops the HTTP server. Sinks are closed by the DI cleanup.
func (a *App) shutdown() {
	a.log.Info("shutting down")
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
}
