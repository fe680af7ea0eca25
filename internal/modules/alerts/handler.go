package alerts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	alertqueue "github.com/rolznz/zap.stream/internal/alerts"
	"github.com/rolznz/zap.stream/internal/timeline"
	"github.com/rolznz/zap.stream/internal/websocket"
	"github.com/rolznz/zap.stream/internal/zaps"
)

// AlertView is the wire form of the zap currently holding the alert slot.
type AlertView struct {
	EventID string `json:"event_id"`
	Sender  string `json:"sender"`
	Amount  int64  `json:"amount"`
	Content string `json:"content,omitempty"`
	BigZap  bool   `json:"big_zap"`
}

// ViewOf converts a parsed zap into its wire form.
func ViewOf(z zaps.ParsedZap) AlertView {
	return AlertView{
		EventID: z.ID,
		Sender:  z.Sender,
		Amount:  z.Amount,
		Content: z.Content,
		BigZap:  z.Amount >= timeline.BigZapThreshold,
	}
}

// Broadcaster returns a scheduler change callback that pushes the current
// alert to all connected clients. A nil current clears the alert box.
func Broadcaster(bridge *websocket.Bridge) func(*zaps.ParsedZap) {
	return func(current *zaps.ParsedZap) {
		var body interface{}
		if current != nil {
			body = ViewOf(*current)
		}
		payload, err := json.Marshal(websocket.NewAlertMessage(body))
		if err != nil {
			slog.Error("Failed to marshal alert message", "error", err)
			return
		}
		bridge.Broadcast(payload, websocket.ConnectionTypeOverlay, websocket.ConnectionTypeControl)
	}
}

// Handler serves the alerts module's HTTP endpoints.
type Handler struct {
	scheduler *alertqueue.Scheduler
}

// NewHandler creates a new alerts handler.
func NewHandler(scheduler *alertqueue.Scheduler) *Handler {
	return &Handler{scheduler: scheduler}
}

// CurrentGet returns the zap currently holding the alert slot, or 204 when
// the queue is idle.
func (h *Handler) CurrentGet(c echo.Context) error {
	current, ok := h.scheduler.Current()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, ViewOf(current))
}
