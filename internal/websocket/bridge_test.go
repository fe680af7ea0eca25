package websocket_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolznz/zap.stream/internal/pubsub"
	ws "github.com/rolznz/zap.stream/internal/websocket"
)

// mockPubSub implements pubsub.Publisher for testing and records what the
// bridge publishes.
type mockPubSub struct {
	mu       sync.RWMutex
	messages map[string][]pubsub.Message
}

func newMockPubSub() *mockPubSub {
	return &mockPubSub{
		messages: make(map[string][]pubsub.Message),
	}
}

func (m *mockPubSub) Publish(ctx context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.Topic] = append(m.messages[msg.Topic], msg)
	return nil
}

func (m *mockPubSub) Close() error { return nil }

func (m *mockPubSub) getMessages(topic string) []pubsub.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := make([]pubsub.Message, len(m.messages[topic]))
	copy(msgs, m.messages[topic])
	return msgs
}

// testFixture holds the components needed for testing the bridge.
type testFixture struct {
	bridge *ws.Bridge
	ps     *mockPubSub
	server *httptest.Server
	ctx    context.Context
	cancel context.CancelFunc
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ps := newMockPubSub()
	bridge := ws.NewBridge(ps)
	go bridge.Run()

	e := echo.New()
	e.GET("/ws/overlay", bridge.Handler(ws.ConnectionTypeOverlay))
	e.GET("/ws/control", bridge.Handler(ws.ConnectionTypeControl))
	server := httptest.NewServer(e)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return &testFixture{bridge: bridge, ps: ps, server: server, ctx: ctx, cancel: cancel}
}

func (f *testFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, _, err := websocket.Dial(f.ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func TestBroadcastReachesOverlayClients(t *testing.T) {
	f := newTestFixture(t)

	overlay := f.dial(t, "/ws/overlay")
	control := f.dial(t, "/ws/control")

	// Registration races the broadcast without a short settle.
	time.Sleep(100 * time.Millisecond)

	payload, err := json.Marshal(ws.NewTimelineMessage(map[string]any{"items": []any{}}))
	require.NoError(t, err)
	f.bridge.Broadcast(payload, ws.ConnectionTypeOverlay, ws.ConnectionTypeControl)

	for _, conn := range []*websocket.Conn{overlay, control} {
		_, data, err := conn.Read(f.ctx)
		require.NoError(t, err)

		var msg ws.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "timeline", msg.Type)
	}
}

func TestBroadcastFiltersByConnectionType(t *testing.T) {
	f := newTestFixture(t)

	overlay := f.dial(t, "/ws/overlay")
	control := f.dial(t, "/ws/control")

	time.Sleep(100 * time.Millisecond)

	f.bridge.Broadcast([]byte(`{"type":"alert","payload":null}`), ws.ConnectionTypeOverlay)
	f.bridge.Broadcast([]byte(`{"type":"command","payload":{"name":"reload"}}`), ws.ConnectionTypeControl)

	_, data, err := overlay.Read(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alert"`)

	_, data, err = control.Read(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command"`)
}

func TestControlCommandReachesBus(t *testing.T) {
	f := newTestFixture(t)

	control := f.dial(t, "/ws/control")
	time.Sleep(100 * time.Millisecond)

	cmd, err := json.Marshal(ws.Command{Name: ws.CmdMuteAlerts})
	require.NoError(t, err)
	require.NoError(t, control.Write(f.ctx, websocket.MessageText, cmd))

	require.Eventually(t, func() bool {
		return len(f.ps.getMessages(ws.ControlTopic)) == 1
	}, 2*time.Second, 20*time.Millisecond)

	msg := f.ps.getMessages(ws.ControlTopic)[0]
	assert.JSONEq(t, string(cmd), string(msg.Payload))
	assert.NotEmpty(t, msg.Metadata["client_id"])
}

func TestOverlayInputIsIgnored(t *testing.T) {
	f := newTestFixture(t)

	overlay := f.dial(t, "/ws/overlay")
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, overlay.Write(f.ctx, websocket.MessageText, []byte(`{"name":"alerts_mute"}`)))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, f.ps.getMessages(ws.ControlTopic))
}

func TestMessageMarshalBytePayload(t *testing.T) {
	msg := ws.Message{Type: "alert", Payload: []byte("big zap")}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"alert","payload":"big zap"}`, string(data))
}
