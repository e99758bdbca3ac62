package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/karantza/scrumpoker/internal/app"
	"github.com/karantza/scrumpoker/internal/config"
	"github.com/karantza/scrumpoker/internal/logging"
	"github.com/karantza/scrumpoker/internal/room"
	"github.com/karantza/scrumpoker/internal/server"
	"github.com/karantza/scrumpoker/internal/stream"
	"github.com/karantza/scrumpoker/internal/version"
)

func runGracefulShutdown(srv *server.Server, stopJanitor func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if stopJanitor != nil {
			stopJanitor()
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	build := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", build.Version, "commit", build.Commit)

	index := room.NewIndex()
	registry := room.NewRegistry(index, clock)

	streamer := stream.NewStreamer(registry, index, clock, stream.Config{
		KeepaliveInterval:      cfg.KeepaliveInterval,
		LivenessTimeout:        cfg.LivenessTimeout,
		IndexKeepaliveInterval: cfg.IndexKeepaliveInterval,
	})

	appSvc := app.NewService(registry, streamer)

	// Empty rooms are only evicted when a grace period is configured.
	var stopJanitor func()
	if cfg.RoomEvictionGrace > 0 {
		stopCh := make(chan struct{})
		go registry.RunJanitor(cfg.RoomEvictionGrace, stopCh)
		stopJanitor = func() { close(stopCh) }
		slog.Info("Room eviction janitor started", "grace", cfg.RoomEvictionGrace)
	}

	srv := server.NewServer(cfg, appSvc, clock)

	done := runGracefulShutdown(srv, stopJanitor)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
