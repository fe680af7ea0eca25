// Package config loads the overlay client's configuration from the
// environment, with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the overlay pipeline.
type Config struct {
	// Relays are the websocket URLs the subscription layer connects to.
	Relays []string `validate:"required,min=1,dive,url"`
	// StreamLink is the naddr of the stream to follow.
	StreamLink string `validate:"required"`
	// BindAddr is the overlay server's listen address.
	BindAddr string `validate:"required,hostname_port"`
	// Viewer is the logged-in user's hex pubkey; empty for an anonymous
	// overlay. It selects whose mute list moderates the timeline alongside
	// the host's.
	Viewer string `validate:"omitempty,len=64,hexadecimal"`

	// VoiceURI selects the alert voice; empty disables speech.
	VoiceURI string
	// VoicesDir is scanned for installed voice models.
	VoicesDir string
	// MinSats is the minimum zap amount whose comment is read aloud.
	MinSats int64 `validate:"gte=0"`
	// Volume is the speech volume in [0,1].
	Volume float64 `validate:"gte=0,lte=1"`
	// AlertDwell is how long each zap alert stays on screen.
	AlertDwell time.Duration `validate:"gt=0"`

	// TracingEnabled turns on the pubsub tracing middleware.
	TracingEnabled bool
	// ZipkinURL receives spans when tracing is enabled.
	ZipkinURL string
}

// New loads configuration from the environment. A missing .env file is
// fine; missing required values are not.
func New() (*Config, error) {
	// Environment-only operation is the normal production mode, so the
	// load error is deliberately ignored.
	_ = godotenv.Load()

	cfg := &Config{
		StreamLink:     os.Getenv("STREAM_LINK"),
		BindAddr:       getenv("BIND_ADDR", "127.0.0.1:8080"),
		Viewer:         os.Getenv("VIEWER_PUBKEY"),
		VoiceURI:       os.Getenv("TTS_VOICE"),
		VoicesDir:      getenv("TTS_VOICES_DIR", "voices"),
		Volume:         1.0,
		AlertDwell:     10 * time.Second,
		TracingEnabled: os.Getenv("TRACING_ENABLED") == "true",
		ZipkinURL:      getenv("ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}

	if relays := os.Getenv("RELAYS"); relays != "" {
		for _, r := range strings.Split(relays, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.Relays = append(cfg.Relays, r)
			}
		}
	}

	if v := os.Getenv("TTS_MIN_SATS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: TTS_MIN_SATS: %w", err)
		}
		cfg.MinSats = n
	}
	if v := os.Getenv("TTS_VOLUME"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: TTS_VOLUME: %w", err)
		}
		cfg.Volume = f
	}
	if v := os.Getenv("ALERT_DWELL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: ALERT_DWELL_MS: %w", err)
		}
		cfg.AlertDwell = time.Duration(ms) * time.Millisecond
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
