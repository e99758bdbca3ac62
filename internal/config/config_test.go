package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SessionSecret:        "test-secret",
		KeepaliveInterval:    time.Second,
		LivenessTimeout:      60 * time.Second,
		MaxConcurrentStreams: 100,
		StreamOpensPerSecond: 10,
		StreamOpenBurst:      20,
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validate(validConfig()))
}

func TestValidate_RequiresSessionSecret(t *testing.T) {
	cfg := validConfig()
	cfg.SessionSecret = ""
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate_TimingPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.KeepaliveInterval = 0
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.LivenessTimeout = cfg.KeepaliveInterval
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.IndexKeepaliveInterval = -time.Second
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.RoomEvictionGrace = -time.Minute
	assert.Error(t, validate(cfg))
}

func TestValidate_Limits(t *testing.T) {
	cfg := validConfig()
	cfg.MaxConcurrentStreams = 0
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.StreamOpensPerSecond = 0
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.StreamOpenBurst = 0
	assert.Error(t, validate(cfg))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9991", cfg.Port)
	assert.Equal(t, time.Second, cfg.KeepaliveInterval)
	assert.Equal(t, 60*time.Second, cfg.LivenessTimeout)
	assert.Equal(t, time.Duration(0), cfg.IndexKeepaliveInterval)
	assert.Equal(t, time.Duration(0), cfg.RoomEvictionGrace)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("LIVENESS_TIMEOUT", "2m")
	t.Setenv("ROOM_EVICTION_GRACE", "10m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.LivenessTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RoomEvictionGrace)
}
