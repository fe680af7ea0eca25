package websocket

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/topicmgr"
)

// ConnectionType defines the kind of WebSocket connection.
type ConnectionType int

const (
	// ConnectionTypeOverlay is the browser source rendered inside the
	// streaming software. It only receives updates.
	ConnectionTypeOverlay ConnectionType = iota
	// ConnectionTypeControl is the streamer's dashboard. It receives
	// updates and can send commands (mute alerts, skip, reset).
	ConnectionTypeControl
)

// Client represents a single connected WebSocket client.
type Client struct {
	// ID is a per-connection identifier.
	ID string
	// conn is the underlying WebSocket connection.
	conn *websocket.Conn
	// send is a buffered channel of outbound messages for this client.
	send chan []byte
	// connType is the kind of connection (overlay or control).
	connType ConnectionType
	// bridge is a reference back to the bridge that manages this client.
	bridge *Bridge
}

// IncomingMessage represents a message received from a control client,
// destined for the pub/sub system.
type IncomingMessage struct {
	ClientID string
	Payload  []byte
}

// BroadcastMessage represents a message to be fanned out to clients.
type BroadcastMessage struct {
	payload []byte
	// targetTypes specifies which connection types should receive the message.
	targetTypes map[ConnectionType]bool
}

// DirectMessage represents a message addressed to a single connection.
type DirectMessage struct {
	TargetID string
	Payload  []byte
}

// ControlTopic is the bus topic carrying commands from control clients.
const ControlTopic = "control.command.received"

var _ = topicmgr.Default().MustRegister(topicmgr.DefineFramework(topicmgr.TopicConfig{
	Name:        ControlTopic,
	Description: "Raw command payloads received from dashboard control connections",
	Metadata: map[string]interface{}{
		"payload": "websocket.Command",
	},
}))

// Bridge manages all WebSocket connections and routes messages between
// connected clients and the Pub/Sub message bus.
type Bridge struct {
	publisher pubsub.Publisher

	// clients maps connection IDs to their client. Every connection gets
	// its own ID; a streamer typically has one overlay and one dashboard.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	direct     chan *DirectMessage

	// incoming carries command messages received from control clients.
	incoming chan *IncomingMessage

	mu sync.RWMutex
}

// NewBridge initializes a new Bridge, ready to handle connections.
func NewBridge(pub pubsub.Publisher) *Bridge {
	return &Bridge{
		publisher:  pub,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage),
		direct:     make(chan *DirectMessage),
		incoming:   make(chan *IncomingMessage, 256),
	}
}

// Run starts the main bridge goroutine for managing client lifecycle and
// message routing. It must be run in a separate goroutine.
func (b *Bridge) Run() {
	slog.Info("WebSocket bridge runner started")
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.ID] = client
			b.mu.Unlock()
			slog.Info("Client registered", "clientID", client.ID, "type", client.connType)

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client.ID]; ok {
				delete(b.clients, client.ID)
				close(client.send)
				slog.Info("Client unregistered", "clientID", client.ID, "type", client.connType)
			}
			b.mu.Unlock()

		case message := <-b.broadcast:
			b.mu.RLock()
			for _, client := range b.clients {
				if !message.targetTypes[client.connType] {
					continue
				}
				select {
				case client.send <- message.payload:
				default:
					// Drop the message if the client's send buffer is full.
					slog.Warn("Client send channel full, dropping message", "clientID", client.ID)
				}
			}
			b.mu.RUnlock()

		case message := <-b.direct:
			b.mu.RLock()
			if client, ok := b.clients[message.TargetID]; ok {
				select {
				case client.send <- message.Payload:
				default:
					slog.Warn("Client send channel full, dropping direct message", "clientID", client.ID)
				}
			}
			b.mu.RUnlock()

		case msg := <-b.incoming:
			pubsubMsg := pubsub.Message{
				Topic:   ControlTopic,
				Payload: msg.Payload,
				Metadata: map[string]string{
					"client_id": msg.ClientID,
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			if err := b.publisher.Publish(context.Background(), pubsubMsg); err != nil {
				slog.Error("Bridge failed to publish control command", "clientID", msg.ClientID, "error", err)
			}
		}
	}
}

// Handler returns an echo.HandlerFunc that handles WebSocket upgrade
// requests for a given connection type.
func (b *Bridge) Handler(connType ConnectionType) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			// The overlay server binds to localhost; the browser source
			// connects with a file:// or app-internal origin.
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			ID:       uuid.NewString(),
			conn:     conn,
			send:     make(chan []byte, 256),
			connType: connType,
			bridge:   b,
		}
		b.register <- client

		go client.writePump()
		go client.readPump()

		return nil
	}
}

// readPump pumps messages from the WebSocket connection to the bridge's
// incoming channel. Only control clients may send; overlay input is dropped.
func (c *Client) readPump() {
	defer func() {
		c.bridge.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, message, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "clientID", c.ID)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "clientID", c.ID, "error", err)
			}
			break
		}

		if c.connType != ConnectionTypeControl {
			slog.Warn("Ignoring message from overlay connection", "clientID", c.ID)
			continue
		}

		c.bridge.incoming <- &IncomingMessage{
			ClientID: c.ID,
			Payload:  message,
		}
	}
}

// writePump pumps messages from the client's send channel to the WebSocket
// connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		message, ok := <-c.send
		if !ok {
			// The bridge closed the channel.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "clientID", c.ID, "error", err)
			return
		}
	}
}

// Incoming returns the channel for messages received from control clients.
func (b *Bridge) Incoming() <-chan *IncomingMessage {
	return b.incoming
}

// Broadcast sends a message to all clients of the specified connection types.
func (b *Bridge) Broadcast(payload []byte, connTypes ...ConnectionType) {
	targets := make(map[ConnectionType]bool)
	for _, t := range connTypes {
		targets[t] = true
	}

	b.broadcast <- &BroadcastMessage{
		payload:     payload,
		targetTypes: targets,
	}
}

// SendDirect sends a message to a single connection by ID.
func (b *Bridge) SendDirect(clientID string, payload []byte) {
	b.direct <- &DirectMessage{
		TargetID: clientID,
		Payload:  payload,
	}
}
