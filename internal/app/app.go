// Package app provides the unified application lifecycle management for tabshift.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	httpapi "github.com/tabshift/tabshift/internal/api/http"
	"github.com/tabshift/tabshift/internal/config"
	"github.com/tabshift/tabshift/internal/observability"
	"github.com/tabshift/tabshift/internal/server"
	"github.com/tabshift/tabshift/internal/transform"
)

// App manages the tabshift service lifecycle.
type App struct {
	cfg     *config.Config
	version string

	stats    *observability.UsageStats
	shutdown *server.ShutdownManager
	httpSrv  *server.GracefulHTTPServer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &App{
		cfg:     cfg,
		version: version,
	}, nil
}

// Start initializes shared resources and starts the HTTP service.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.stats = observability.NewUsageStats(a.cfg.Stats.Window)
	a.shutdown = server.NewShutdownManager(server.ShutdownConfig{})
	a.shutdown.RegisterCloser(server.CloserFunc(func() error {
		snap := a.stats.Snapshot(a.cfg.Stats.TopColumns)
		for _, ts := range snap.Types {
			log.Printf("usage on shutdown: type=%s requests=%d total_ms=%.2f",
				ts.Type, ts.Count, ts.TotalMS)
		}
		return nil
	}))

	runner := transform.NewRunner(a.cfg.Engine.BatchConcurrency)

	mux := http.NewServeMux()
	mux.Handle("/v1/transform", httpapi.NewTransformHandler(a.stats, a.cfg.Engine.MaxRows))
	mux.Handle("/v1/transform/batch", httpapi.NewBatchHandler(runner, a.stats, a.cfg.Engine.MaxRows))
	mux.Handle("/v1/pipeline", httpapi.NewPipelineHandler(a.cfg.Engine.MaxRows))
	mux.Handle("/v1/health", httpapi.NewHealthHandler(a.version))
	mux.Handle("/v1/types", &httpapi.TypesHandler{})
	mux.Handle("/v1/stats", httpapi.NewStatsHandler(a.stats, a.cfg.Stats.TopColumns))

	handler := httpapi.RequestIDMiddleware(
		httpapi.RecoveryMiddleware(
			server.ShutdownMiddleware(a.shutdown)(mux)))

	srv := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}
	a.httpSrv = server.NewGracefulHTTPServer(srv, a.shutdown)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpSrv.ListenAndServe(); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	a.wg.Add(1)
	go a.pruneLoop(ctx)

	log.Printf("tabshift %s listening on %s (max_rows=%d batch_concurrency=%d)",
		a.version, a.cfg.HTTP.Addr, a.cfg.Engine.MaxRows, a.cfg.Engine.BatchConcurrency)
	return nil
}

// pruneLoop periodically drops usage entries older than the stats window.
func (a *App) pruneLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.Stats.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.stats.Prune()
		case <-ctx.Done():
			return
		case <-a.shutdown.ShutdownCh():
			return
		}
	}
}

// Run starts the app and blocks until a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	err := a.shutdown.ListenForSignals(ctx)
	a.Stop()
	return err
}

// Stop shuts the app down and waits for background work to finish.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false

	if a.cancel != nil {
		a.cancel()
	}
	if err := a.shutdown.Shutdown(context.Background(), "stop requested"); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	a.wg.Wait()
	log.Printf("tabshift stopped")
}
