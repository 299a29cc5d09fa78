package config

import (
	"fmt"
	"os"
	"strings"

	"market-sync/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills unset numeric options with their documented defaults.
func (c *Config) ApplyDefaults() {
	conn := &c.Connection
	if conn.ReconnectAttempts == 0 {
		conn.ReconnectAttempts = 5
	}
	if conn.ReconnectIntervalMs == 0 {
		conn.ReconnectIntervalMs = 5000
	}
	if conn.HeartbeatIntervalMs == 0 {
		conn.HeartbeatIntervalMs = 30000
	}
	if conn.MaxQueueSize == 0 {
		conn.MaxQueueSize = 1000
	}
	if conn.CompressionThresholdBytes == 0 {
		conn.CompressionThresholdBytes = 1024
	}

	req := &c.Request
	if req.TimeoutMs == 0 {
		req.TimeoutMs = 10000
	}
	if req.CacheTTLMs == 0 {
		req.CacheTTLMs = 300000 // 5 minute cache window
	}
	if req.CircuitBreakerThreshold == 0 {
		req.CircuitBreakerThreshold = 5
	}
	if req.CircuitBreakerResetMs == 0 {
		req.CircuitBreakerResetMs = 30000
	}

	if c.Sync.AccuracyIntervalMs == 0 {
		c.Sync.AccuracyIntervalMs = 60000
	}
	if c.Sync.CacheSweepIntervalMs == 0 {
		c.Sync.CacheSweepIntervalMs = 60000
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Remote configuration
	if c.Remote.WSURL == "" {
		return fmt.Errorf("remote websocket URL cannot be empty")
	}
	if !strings.HasPrefix(c.Remote.WSURL, "ws://") && !strings.HasPrefix(c.Remote.WSURL, "wss://") {
		return fmt.Errorf("remote websocket URL must use ws:// or wss:// scheme")
	}
	if c.Remote.APIBaseURL == "" {
		return fmt.Errorf("remote API base URL cannot be empty")
	}

	// Validate Connection configuration
	if c.Connection.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}
	if c.Connection.ReconnectIntervalMs <= 0 {
		return fmt.Errorf("reconnect interval must be greater than 0")
	}
	if c.Connection.HeartbeatIntervalMs <= 0 {
		return fmt.Errorf("heartbeat interval must be greater than 0")
	}
	if c.Connection.MaxQueueSize <= 0 {
		return fmt.Errorf("max queue size must be greater than 0")
	}

	// Validate Request configuration
	if c.Request.TimeoutMs <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Request.CircuitBreakerThreshold <= 0 {
		return fmt.Errorf("circuit breaker threshold must be greater than 0")
	}
	if c.Request.CircuitBreakerResetMs <= 0 {
		return fmt.Errorf("circuit breaker reset must be greater than 0")
	}
	if c.Request.CacheTTLMs < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}

	// Validate Sync configuration
	if len(c.Sync.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	for i, sym := range c.Sync.Symbols {
		if sym == "" {
			return fmt.Errorf("symbol %d cannot be empty", i)
		}
	}
	if c.Sync.AccuracyIntervalMs <= 0 {
		return fmt.Errorf("accuracy interval must be greater than 0")
	}
	if c.Sync.RefreshIntervalMs < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
