package server

import (
	"context"
	"fmt"
	"log/slog"
)

// bootModules runs the two-phase module lifecycle: every module registers
// its services first, then every module boots with the full registry
// available. Each module's routes are mounted under /api/<name>.
func (s *Server) bootModules(ctx context.Context) error {
	for _, m := range s.modules {
		if err := m.Register(s.Reg); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}

	for _, m := range s.modules {
		g := s.E.Group("/api/" + m.Name())
		if err := m.Boot(ctx, g, s.Reg); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		slog.Info("Module booted", "module", m.Name())
	}
	return nil
}

// shutdownModules gives each module a chance to stop cleanly, in reverse
// boot order.
func (s *Server) shutdownModules(ctx context.Context) {
	for i := len(s.modules) - 1; i >= 0; i-- {
		m := s.modules[i]
		if err := m.Shutdown(ctx); err != nil {
			slog.Error("Module shutdown failed", "module", m.Name(), "error", err)
		}
	}
}
