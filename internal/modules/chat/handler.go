package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/feed"
)

// Handler serves the chat module's HTTP endpoints. The overlay fetches the
// initial timeline state here before switching to websocket pushes.
type Handler struct {
	store *feed.Store
}

// NewHandler creates a new chat handler.
func NewHandler(store *feed.Store) *Handler {
	return &Handler{store: store}
}

// TimelineGet returns the current timeline view.
func (h *Handler) TimelineGet(c echo.Context) error {
	return c.JSON(http.StatusOK, BuildView(h.store))
}

// StreamGet returns the live stream's metadata, or 404 before the live
// event has arrived.
func (h *Handler) StreamGet(c echo.Context) error {
	live := h.store.LiveEvent()
	if live == nil {
		return echo.NewHTTPError(http.StatusNotFound, "stream not yet known")
	}

	info := event.InfoFromEvent(live)
	return c.JSON(http.StatusOK, map[string]any{
		"host":         event.Host(live),
		"title":        info.Title,
		"summary":      info.Summary,
		"image":        info.Image,
		"status":       info.Status,
		"starts":       info.Starts,
		"participants": info.Participants,
	})
}
