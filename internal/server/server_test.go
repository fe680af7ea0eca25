package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolznz/zap.stream/internal/config"
	"github.com/rolznz/zap.stream/internal/event"
	"github.com/rolznz/zap.stream/internal/testutils"
)

func testConfig(t *testing.T, host testutils.Identity) *config.Config {
	t.Helper()

	link, err := nip19.EncodeEntity(host.PubKey, event.KindLiveEvent, "test-stream", nil)
	require.NoError(t, err)

	return &config.Config{
		Relays:     []string{"wss://relay.example.com"},
		StreamLink: link,
		BindAddr:   "127.0.0.1:0",
		VoicesDir:  t.TempDir(),
		Volume:     1.0,
		AlertDwell: time.Hour,
	}
}

func newTestServer(t *testing.T) (*Server, testutils.Identity) {
	t.Helper()

	host := testutils.NewIdentity(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := build(ctx, testConfig(t, host), nil)
	require.NoError(t, err)
	require.NoError(t, s.bootModules(ctx))
	s.RegisterRoutes()

	t.Cleanup(func() {
		s.scheduler.Stop()
		_ = s.bus.Close()
	})
	return s, host
}

func TestHealthRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStreamRouteBeforeLiveEvent(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/stream", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimelineReflectsIngestedChat(t *testing.T) {
	s, _ := newTestServer(t)

	stream := s.feed.Link().Address()
	author := testutils.NewIdentity(t)
	s.feed.Ingest(context.Background(), testutils.ChatMessage(t, author, stream, "hello overlay", nostr.Now()))

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/timeline", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello overlay")
}

func TestAlertsCurrentIdle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts/current", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
