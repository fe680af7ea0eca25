// Package chat is the overlay module that renders the live chat timeline:
// messages with rich text content, zap receipts and badge awards, moderated
// and sorted, plus the top-payers ranking.
package chat

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/module"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/registry"
	"github.com/rolznz/zap.stream/internal/websocket"
)

// KeyStore exposes the feed store to other modules through the registry.
var KeyStore = registry.Key[*feed.Store]("chat.feed.Store")

// ChatModule implements the module.Module interface for the timeline feature.
type ChatModule struct {
	module.BaseModule
	subscriber pubsub.Subscriber
	bridge     *websocket.Bridge
	store      *feed.Store
}

// Dependencies holds all the services that the ChatModule requires to
// operate. This struct is used for constructor injection to make
// dependencies explicit.
type Dependencies struct {
	Subscriber pubsub.Subscriber
	Bridge     *websocket.Bridge
	Store      *feed.Store
}

// New creates a new instance of the ChatModule, injecting its dependencies.
func New(deps Dependencies) *ChatModule {
	return &ChatModule{
		subscriber: deps.Subscriber,
		bridge:     deps.Bridge,
		store:      deps.Store,
	}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// Register publishes the feed store for other modules.
func (m *ChatModule) Register(reg *registry.Registry) error {
	registry.Set(reg, KeyStore, m.store)
	return nil
}

// Boot sets up the routes and starts background services for the chat module.
func (m *ChatModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	timelineSubscriber := NewTimelineSubscriber(m.subscriber, m.bridge, m.store)
	go timelineSubscriber.Start(ctx)

	slog.Info("Booting ChatModule: Setting up routes...")
	handler := NewHandler(m.store)

	g.GET("/timeline", handler.TimelineGet)
	g.GET("/stream", handler.StreamGet)

	return nil
}

// Shutdown is called on application termination.
func (m *ChatModule) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down ChatModule...")
	return nil
}
