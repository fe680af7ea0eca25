package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Start boots the modules, runs the feed subscription and the HTTP server,
// and blocks until an interrupt arrives, then shuts everything down with a
// timeout.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.bootModules(ctx); err != nil {
		slog.Error("Module boot failed", "error", err)
		cancel()
		return
	}

	go func() {
		if err := s.voices.Watch(ctx); err != nil {
			slog.Warn("Voice library watch unavailable", "error", err)
		}
	}()

	go func() {
		if err := s.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Feed service stopped", "error", err)
		}
	}()

	go func() {
		if err := s.E.Start(s.Cfg.BindAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("Shutting down the server", "error", err)
		}
	}()

	waitForShutdown()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	s.Shutdown(shutdownCtx)
}
