// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), maps to the Config
// struct via go-simpler/env struct tags, and validates the timing
// policy at startup.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"9991"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	StaticDir string `env:"STATIC_DIR" default:"web/static"`

	SessionSecret string `env:"SESSION_SECRET"`

	// Stream timing policy.
	KeepaliveInterval      time.Duration `env:"KEEPALIVE_INTERVAL" default:"1s"`
	LivenessTimeout        time.Duration `env:"LIVENESS_TIMEOUT" default:"60s"`
	IndexKeepaliveInterval time.Duration `env:"INDEX_KEEPALIVE_INTERVAL" default:"0s"`

	// RoomEvictionGrace removes rooms left empty for this long; zero
	// keeps empty rooms forever.
	RoomEvictionGrace time.Duration `env:"ROOM_EVICTION_GRACE" default:"0s"`

	// Connection limits on stream opens.
	MaxConcurrentStreams int64   `env:"MAX_CONCURRENT_STREAMS" default:"10000"`
	StreamOpensPerSecond float64 `env:"STREAM_OPENS_PER_SECOND" default:"10"`
	StreamOpenBurst      int     `env:"STREAM_OPEN_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if cfg.KeepaliveInterval <= 0 {
		return errors.New("KEEPALIVE_INTERVAL must be positive")
	}
	if cfg.LivenessTimeout <= cfg.KeepaliveInterval {
		return errors.New("LIVENESS_TIMEOUT must exceed KEEPALIVE_INTERVAL")
	}
	if cfg.IndexKeepaliveInterval < 0 {
		return errors.New("INDEX_KEEPALIVE_INTERVAL must not be negative")
	}
	if cfg.RoomEvictionGrace < 0 {
		return errors.New("ROOM_EVICTION_GRACE must not be negative")
	}
	if cfg.MaxConcurrentStreams <= 0 {
		return errors.New("MAX_CONCURRENT_STREAMS must be positive")
	}
	if cfg.StreamOpensPerSecond <= 0 || cfg.StreamOpenBurst <= 0 {
		return errors.New("stream open rate limit must be positive")
	}
	return nil
}
