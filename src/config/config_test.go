package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/models"
)

const validYAML = `
name: "market-sync"
host: "127.0.0.1"
port: 8200
log_level: "INFO"
remote:
  ws_url: "ws://127.0.0.1:8100/ws"
  api_base_url: "http://127.0.0.1:8100/api"
connection:
  reconnect_attempts: 3
  reconnect_interval_ms: 2000
sync:
  symbols:
    - "BTC-USD"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	// Explicit values kept
	assert.Equal(t, 3, cfg.Connection.ReconnectAttempts)
	assert.Equal(t, 2000, cfg.Connection.ReconnectIntervalMs)

	// Unset values filled in
	assert.Equal(t, 30000, cfg.Connection.HeartbeatIntervalMs)
	assert.Equal(t, 1000, cfg.Connection.MaxQueueSize)
	assert.Equal(t, 1024, cfg.Connection.CompressionThresholdBytes)
	assert.Equal(t, 10000, cfg.Request.TimeoutMs)
	assert.Equal(t, 300000, cfg.Request.CacheTTLMs)
	assert.Equal(t, 5, cfg.Request.CircuitBreakerThreshold)
	assert.Equal(t, 30000, cfg.Request.CircuitBreakerResetMs)
	assert.Equal(t, 60000, cfg.Sync.AccuracyIntervalMs)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestNewConfigBadYAML(t *testing.T) {
	_, err := NewConfig(writeTempConfig(t, "name: [unclosed"))
	require.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		return &Config{MConfig: &models.MConfig{
			Name:     "test",
			Host:     "127.0.0.1",
			Port:     8200,
			LogLevel: "INFO",
			Remote: models.MRemoteConfig{
				WSURL:      "ws://remote/ws",
				APIBaseURL: "http://remote/api",
			},
			Connection: models.MConnectionConfig{
				ReconnectAttempts:   5,
				ReconnectIntervalMs: 5000,
				HeartbeatIntervalMs: 30000,
				MaxQueueSize:        1000,
			},
			Request: models.MRequestConfig{
				TimeoutMs:               10000,
				CacheTTLMs:              300000,
				CircuitBreakerThreshold: 5,
				CircuitBreakerResetMs:   30000,
			},
			Sync: models.MSyncConfig{
				Symbols:            []string{"BTC-USD"},
				AccuracyIntervalMs: 60000,
			},
		}}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"empty host", func(c *Config) { c.Host = "" }},
		{"privileged port", func(c *Config) { c.Port = 80 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"missing ws url", func(c *Config) { c.Remote.WSURL = "" }},
		{"http scheme on ws url", func(c *Config) { c.Remote.WSURL = "http://remote/ws" }},
		{"missing api base", func(c *Config) { c.Remote.APIBaseURL = "" }},
		{"negative attempts", func(c *Config) { c.Connection.ReconnectAttempts = -1 }},
		{"zero reconnect interval", func(c *Config) { c.Connection.ReconnectIntervalMs = 0 }},
		{"zero heartbeat", func(c *Config) { c.Connection.HeartbeatIntervalMs = 0 }},
		{"zero queue", func(c *Config) { c.Connection.MaxQueueSize = 0 }},
		{"zero timeout", func(c *Config) { c.Request.TimeoutMs = 0 }},
		{"zero breaker threshold", func(c *Config) { c.Request.CircuitBreakerThreshold = 0 }},
		{"negative cache ttl", func(c *Config) { c.Request.CacheTTLMs = -1 }},
		{"no symbols", func(c *Config) { c.Sync.Symbols = nil }},
		{"empty symbol", func(c *Config) { c.Sync.Symbols = []string{""} }},
		{"negative refresh", func(c *Config) { c.Sync.RefreshIntervalMs = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			require.NoError(t, cfg.Validate())
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWSSSchemeAccepted(t *testing.T) {
	cfg, err := NewConfig(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	cfg.Remote.WSURL = "wss://secure-remote/ws"
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(out))

	reloaded, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}
