package websocket

import "encoding/json"

// Message is the envelope for everything sent to overlay and control
// clients over the wire.
type Message struct {
	Type    string      `json:"type"` // e.g. "timeline", "alert", "command"
	Target  string      `json:"target,omitempty"`
	Payload interface{} `json:"payload"`
}

// MarshalJSON customizes JSON marshaling to handle both string and []byte payloads
func (m Message) MarshalJSON() ([]byte, error) {
	// Alias avoids recursing into this method
	type Alias Message
	msg := struct {
		*Alias
		Payload interface{} `json:"payload"`
	}{
		Alias: (*Alias)(&m),
	}

	if b, ok := m.Payload.([]byte); ok {
		msg.Payload = string(b)
	} else {
		msg.Payload = m.Payload
	}

	return json.Marshal(msg)
}

// Command represents a control instruction sent by the dashboard.
type Command struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload,omitempty"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType string, payload interface{}, target ...string) *Message {
	msg := &Message{
		Type:    msgType,
		Payload: payload,
	}
	if len(target) > 0 {
		msg.Target = target[0]
	}
	return msg
}

// NewTimelineMessage wraps a rendered timeline view for the overlay.
func NewTimelineMessage(view interface{}) *Message {
	return NewMessage("timeline", view)
}

// NewAlertMessage wraps the currently showing zap alert, or nil when the
// alert box should clear.
func NewAlertMessage(alert interface{}) *Message {
	return NewMessage("alert", alert)
}

// NewCommand creates a new command message
func NewCommand(name string, payload ...interface{}) *Message {
	var p interface{} = nil
	if len(payload) > 0 {
		p = payload[0]
	}
	return NewMessage("command", Command{
		Name:    name,
		Payload: p,
	})
}

// Commands accepted from control clients.
const (
	CmdMuteAlerts   = "alerts_mute"
	CmdUnmuteAlerts = "alerts_unmute"
	CmdSkipAlert    = "alerts_skip"
	CmdResetAlerts  = "alerts_reset"
	CmdReload       = "reload"
)
