package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfman30/realestate-concierge/cmd/mainconfig"
	"github.com/wolfman30/realestate-concierge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting realestate-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
		"async", cfg.AsyncMessaging,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.Build(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.StartBackground(ctx)
	var stopWorkers func()
	if runEmbeddedWorkers(cfg) {
		worker := app.NewWorker()
		worker.Start(ctx)
		stopWorkers = worker.Wait
		logger.Info("embedded conversation workers started", "count", cfg.WorkerCount)
	}

	srv := newServer(cfg.Port, app.Router())

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	cancel()
	if stopWorkers != nil {
		stopWorkers()
	}
	logger.Info("server stopped")
}

// runEmbeddedWorkers reports whether this process must drain the queue
// itself. An in-memory queue is invisible to other processes.
func runEmbeddedWorkers(cfg *appconfig.Config) bool {
	return cfg.AsyncMessaging && cfg.UseMemoryQueue
}

func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
