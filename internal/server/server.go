// Package server assembles the overlay pipeline: relay subscriptions feed
// the event store, modules react over the message bus, and connected
// overlay and dashboard clients receive updates over websockets.
package server

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"

	alertqueue "github.com/rolznz/zap.stream/internal/alerts"
	"github.com/rolznz/zap.stream/internal/config"
	"github.com/rolznz/zap.stream/internal/feed"
	"github.com/rolznz/zap.stream/internal/logging"
	"github.com/rolznz/zap.stream/internal/middleware"
	"github.com/rolznz/zap.stream/internal/module"
	"github.com/rolznz/zap.stream/internal/modules/alerts"
	"github.com/rolznz/zap.stream/internal/modules/chat"
	"github.com/rolznz/zap.stream/internal/pubsub"
	"github.com/rolznz/zap.stream/internal/registry"
	"github.com/rolznz/zap.stream/internal/speech"
	"github.com/rolznz/zap.stream/internal/websocket"
)

// Server holds the dependencies for the overlay HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config
	Reg *registry.Registry

	bus       *pubsub.WatermillBridge
	bridge    *websocket.Bridge
	store     *feed.Store
	feed      *feed.Service
	scheduler *alertqueue.Scheduler
	voices    *speech.Library
	modules   []module.Module

	// cancel tears down the feed subscription and all module background
	// goroutines.
	cancel context.CancelFunc
	// tracingCleanup flushes the span exporter; a no-op when tracing is
	// disabled.
	tracingCleanup func()
}

// New creates a fully wired Server instance.
func New() *Server {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		// We don't have slog configured yet, so we use the standard logger here.
		// This is acceptable as it's only for the initial setup.
		log.Println("No .env file found, relying on environment variables")
	}

	logging.New() // Initialize the structured logger

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	s, err := build(context.Background(), cfg, feed.NewClient(context.Background(), cfg.Relays))
	if err != nil {
		slog.Error("Failed to assemble server", "error", err)
		os.Exit(1)
	}
	return s
}

// build wires the pipeline from an already-loaded configuration. Tests use
// it directly with a nil relay client.
func build(ctx context.Context, cfg *config.Config, client *feed.Client) (*Server, error) {
	tracing := pubsub.DefaultTracingConfig()
	tracing.Enabled = cfg.TracingEnabled
	tracing.ZipkinURL = cfg.ZipkinURL
	_, tracingCleanup, err := pubsub.SetupOTel(ctx, tracing)
	if err != nil {
		return nil, err
	}

	bus := pubsub.NewWatermillBridge()

	bridge := websocket.NewBridge(bus)
	go bridge.Run()

	store := feed.NewStore(cfg.Viewer)
	feedService, err := feed.NewService(feed.Dependencies{
		Client:     client,
		Store:      store,
		Publisher:  bus,
		StreamLink: cfg.StreamLink,
		Viewer:     cfg.Viewer,
	})
	if err != nil {
		tracingCleanup()
		return nil, err
	}

	voices := speech.NewLibrary(afero.NewOsFs(), cfg.VoicesDir)
	scheduler := alertqueue.New(
		alertqueue.Dependencies{Voices: voices},
		alertqueue.WithDwell(cfg.AlertDwell),
		alertqueue.WithVoice(cfg.VoiceURI),
		alertqueue.WithMinSats(cfg.MinSats),
		alertqueue.WithVolume(cfg.Volume),
		alertqueue.WithOnChange(alerts.Broadcaster(bridge)),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.Logger)

	return &Server{
		E:              e,
		Cfg:            cfg,
		Reg:            registry.New(cfg),
		bus:            bus,
		bridge:         bridge,
		store:          store,
		feed:           feedService,
		scheduler:      scheduler,
		voices:         voices,
		tracingCleanup: tracingCleanup,
		modules: []module.Module{
			chat.New(chat.Dependencies{
				Subscriber: bus,
				Bridge:     bridge,
				Store:      store,
			}),
			alerts.New(alerts.Dependencies{
				Subscriber: bus,
				Bridge:     bridge,
				Store:      store,
				Scheduler:  scheduler,
			}),
		},
	}, nil
}

// Store is a getter for the server's event store, useful for testing.
func (s *Server) Store() *feed.Store {
	return s.store
}

// Feed is a getter for the server's feed service, useful for testing.
func (s *Server) Feed() *feed.Service {
	return s.feed
}

// Scheduler is a getter for the server's alert scheduler, useful for
// testing.
func (s *Server) Scheduler() *alertqueue.Scheduler {
	return s.scheduler
}
