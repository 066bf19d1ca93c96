package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"newspulse/internal/cache"
	"newspulse/internal/config"
	"newspulse/internal/domain"
	"newspulse/internal/hub"
	"newspulse/internal/infrastructure/llm"
	"newspulse/internal/infrastructure/scraper"
	"newspulse/internal/logging"
	"newspulse/internal/transport/httpapi"
	"newspulse/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// Application wires configuration into the pipeline, scheduler, hub, and
// HTTP transport, and owns their lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	snapshots *cache.SnapshotCache
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scraper.NewRegistry()
	registry.Register(scraper.NewHTMLScanner(nil))
	registry.Register(scraper.NewRSSScanner())
	source := scraper.NewMultiSource(registry, cfg.Sites, baseLogger.With("component", "source"))

	enricher := llm.NewClient(cfg.LLM)

	snapshots := cache.New()
	subscribers := hub.New(snapshots, baseLogger.With("component", "hub"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Enricher: enricher,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	scheduler := usecase.NewScheduler(usecase.SchedulerDeps{
		Runner:        pipeline,
		Cache:         snapshots,
		Hub:           subscribers,
		Enricher:      enricher,
		Interval:      cfg.Scheduler.IntervalDuration(),
		RetryInterval: cfg.Scheduler.RetryDuration(),
		Logger:        baseLogger.With("component", "scheduler"),
	})

	api := httpapi.NewServer(snapshots, subscribers, scheduler, enricher, baseLogger.With("component", "http"))
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Routes(),
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		snapshots: snapshots,
		pipeline:  pipeline,
		scheduler: scheduler,
		server:    server,
	}
}

// Run starts the scheduler as a managed background task and serves HTTP until
// ctx is cancelled, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}

	wg.Wait()
	a.logger.Info("stopped")
	return runErr
}

// RunCycle executes a single pipeline pass and publishes the result, for
// one-shot invocations.
func (a *Application) RunCycle(ctx context.Context) (domain.Snapshot, error) {
	snap, err := a.pipeline.RunCycle(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return a.snapshots.Publish(snap), nil
}
