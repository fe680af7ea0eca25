package chat_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coderws "github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/modules/chat"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/testutils"
	ws "github.com/rolznz/zap.stream/internal/websocket"
)

type nullPublisher struct{}

func (nullPublisher) Publish(ctx context.Context, msg pubsub.Message) error { return nil }
func (nullPublisher) Close() error                                          { return nil }

func TestReloadCommandRebroadcastsTimeline(t *testing.T) {
	host := testutils.NewIdentity(t)
	author := testutils.NewIdentity(t)
	store := feed.NewStore("")
	require.True(t, store.Ingest(testutils.LiveEvent(t, host, "s", event.StatusLive)))
	stream := "30311:" + host.PubKey + ":s"
	require.True(t, store.Ingest(testutils.ChatMessage(t, author, stream, "ping", nostr.Now())))

	bridge := ws.NewBridge(nullPublisher{})
	go bridge.Run()

	e := echo.New()
	e.GET("/ws/overlay", bridge.Handler(ws.ConnectionTypeOverlay))
	server := httptest.NewServer(e)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := coderws.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws/overlay", nil)
	require.NoError(t, err)
	defer conn.Close(coderws.StatusNormalClosure, "")

	// Registration races the broadcast without a short settle.
	time.Sleep(100 * time.Millisecond)

	sub := chat.NewTimelineSubscriber(nil, bridge, store)

	payload, err := json.Marshal(ws.Command{Name: ws.CmdReload})
	require.NoError(t, err)
	require.NoError(t, sub.HandleCommand(ctx, pubsub.Message{Topic: ws.ControlTopic, Payload: payload}))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timeline"`)
	assert.Contains(t, string(data), "ping")
}

func TestNonReloadCommandIsIgnored(t *testing.T) {
	store := feed.NewStore("")
	sub := chat.NewTimelineSubscriber(nil, nil, store)

	payload, err := json.Marshal(ws.Command{Name: ws.CmdSkipAlert})
	require.NoError(t, err)
	assert.NoError(t, sub.HandleCommand(t.Context(), pubsub.Message{Topic: ws.ControlTopic, Payload: payload}))
}

func TestMalformedCommandIsDropped(t *testing.T) {
	store := feed.NewStore("")
	sub := chat.NewTimelineSubscriber(nil, nil, store)

	assert.NoError(t, sub.HandleCommand(t.Context(), pubsub.Message{Topic: ws.ControlTopic, Payload: []byte("{")}))
}
