package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolznz/zap.stream/internal/middleware"
	"github.com/rolznz/zap.stream/internal/websocket"
)

// RegisterRoutes sets up the application routes that live outside the
// module groups: the two websocket endpoints and the health check.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter()

	// The overlay connection is receive-only; the browser source renders
	// what it is sent. The control connection additionally accepts
	// dashboard commands, so its upgrade attempts are throttled.
	s.E.GET("/ws/overlay", s.bridge.Handler(websocket.ConnectionTypeOverlay))
	s.E.GET("/ws/control", s.bridge.Handler(websocket.ConnectionTypeControl), rateLimiter)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
