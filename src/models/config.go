package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Remote     MRemoteConfig     `yaml:"remote"`
	Connection MConnectionConfig `yaml:"connection"`
	Request    MRequestConfig    `yaml:"request"`
	Sync       MSyncConfig       `yaml:"sync"`
}

type MRemoteConfig struct {
	WSURL      string `yaml:"ws_url"`
	APIBaseURL string `yaml:"api_base_url"`
	AuthToken  string `yaml:"auth_token"` // Optional
}

type MConnectionConfig struct {
	ReconnectAttempts         int `yaml:"reconnect_attempts"`
	ReconnectIntervalMs       int `yaml:"reconnect_interval_ms"`
	HeartbeatIntervalMs       int `yaml:"heartbeat_interval_ms"`
	MaxQueueSize              int `yaml:"max_queue_size"`
	CompressionThresholdBytes int `yaml:"compression_threshold_bytes"`
}

type MRequestConfig struct {
	TimeoutMs               int `yaml:"timeout_ms"`
	CacheTTLMs              int `yaml:"cache_ttl_ms"`
	CircuitBreakerThreshold int `yaml:"circuit_breaker_threshold"`
	CircuitBreakerResetMs   int `yaml:"circuit_breaker_reset_ms"`
}

type MSyncConfig struct {
	Symbols              []string `yaml:"symbols"`
	PredictionsEnabled   bool     `yaml:"predictions_enabled"`
	AccuracyIntervalMs   int      `yaml:"accuracy_interval_ms"`
	RefreshIntervalMs    int      `yaml:"refresh_interval_ms"` // 0 disables scheduled refresh
	CacheSweepIntervalMs int      `yaml:"cache_sweep_interval_ms"`
}
