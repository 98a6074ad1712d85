package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentiview/config"
	"github.com/spacesedan/sentiview/internal/clients"
	"github.com/spacesedan/sentiview/internal/logging"
	"github.com/spacesedan/sentiview/internal/monitoring"
	"github.com/spacesedan/sentiview/internal/web"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv(config.AppEnv())
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logging.InitLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := clients.NewAnalysisClient(cfg)

	var healthy *atomic.Bool
	if cfg.HealthInterval > 0 {
		healthy = &atomic.Bool{}
		go monitoring.MonitorAnalyzerHealth(ctx, client, healthy, cfg.HealthInterval)
	} else {
		slog.Info("[Main] Backend health monitor disabled")
	}

	router, err := web.SetupRouter(client, healthy, cfg.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("[Main] HTTP server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("[Main] Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	slog.Info("[Main] HTTP server stopped")
	return nil
}
