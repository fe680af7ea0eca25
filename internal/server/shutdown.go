package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// waitForShutdown blocks until an interrupt or terminate signal is received.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}

// Shutdown stops the pipeline in dependency order: modules first, then the
// alert scheduler, the HTTP server, the message bus, and finally the span
// exporter.
func (s *Server) Shutdown(ctx context.Context) {
	slog.Info("Shutting down")

	if s.cancel != nil {
		s.cancel()
	}

	s.shutdownModules(ctx)
	s.scheduler.Stop()

	if err := s.E.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	if err := s.bus.Close(); err != nil {
		slog.Error("Message bus close failed", "error", err)
	}
	if s.tracingCleanup != nil {
		s.tracingCleanup()
	}
}
