// Package alerts is the overlay module that runs the zap alert queue:
// incoming zaps hold the alert slot one at a time, with an optional spoken
// comment, and the dashboard can mute, skip or reset the queue.
package alerts

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	alertqueue "github.com/rolznz/zap.stream/internal/alerts"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/module"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/registry"
	"github.com/rolznz/zap.stream/internal/websocket"
)

// KeyScheduler exposes the alert scheduler to other modules through the
// registry.
var KeyScheduler = registry.Key[*alertqueue.Scheduler]("alerts.Scheduler")

// AlertsModule implements the module.Module interface for the zap alert
// feature.
type AlertsModule struct {
	module.BaseModule
	subscriber pubsub.Subscriber
	bridge     *websocket.Bridge
	store      *feed.Store
	scheduler  *alertqueue.Scheduler
}

// Dependencies holds all the services that the AlertsModule requires to
// operate.
type Dependencies struct {
	Subscriber pubsub.Subscriber
	Bridge     *websocket.Bridge
	Store      *feed.Store
	Scheduler  *alertqueue.Scheduler
}

// New creates a new instance of the AlertsModule, injecting its dependencies.
func New(deps Dependencies) *AlertsModule {
	return &AlertsModule{
		subscriber: deps.Subscriber,
		bridge:     deps.Bridge,
		store:      deps.Store,
		scheduler:  deps.Scheduler,
	}
}

// Name returns the module name.
func (m *AlertsModule) Name() string {
	return "alerts"
}

// Register publishes the scheduler for other modules.
func (m *AlertsModule) Register(reg *registry.Registry) error {
	registry.Set(reg, KeyScheduler, m.scheduler)
	return nil
}

// Boot sets up the routes and starts background services for the alerts
// module.
func (m *AlertsModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	queueSubscriber := NewQueueSubscriber(m.subscriber, m.store, m.scheduler)
	go queueSubscriber.Start(ctx)

	slog.Info("Booting AlertsModule: Setting up routes...")
	handler := NewHandler(m.scheduler)

	g.GET("/current", handler.CurrentGet)

	return nil
}

// Shutdown stops the scheduler so no dwell timer outlives the module.
func (m *AlertsModule) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down AlertsModule...")
	m.scheduler.Stop()
	return nil
}
