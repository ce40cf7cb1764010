// Package appconfig loads and validates the codec CLI's JSON
// configuration file, the same load-defaults-then-overlay-file pattern
// the original server used for its server/client config, scaled down to
// the settings this tool actually has: worker pool size, rate limits,
// registry data directory, metrics port, log level.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WorkerConfig bounds the concurrency of a batch decode/encode run.
type WorkerConfig struct {
	MaxWorkers int `json:"max_workers"`
}

// RateLimitConfig bounds a batch key's submission budget per minute; each
// job is charged its descriptor's structural complexity against it.
type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
}

// FlowControlConfig bounds how many jobs a batch key may have
// outstanding at once.
type FlowControlConfig struct {
	MaxOutstanding int           `json:"max_outstanding"`
	WindowSize     time.Duration `json:"-"`
	MaxRetries     int           `json:"max_retries"`
}

// RegistryConfig selects where descriptor definitions are persisted.
type RegistryConfig struct {
	Type    string `json:"type"` // "memory" or "file"
	DataDir string `json:"data_dir"`
}

// LoggingConfig selects the obslog level. Output is loaded and saved with
// the rest of the file, but the CLI's logger always writes to stdout
// whatever Output says.
type LoggingConfig struct {
	Level  string `json:"level"`
	Output string `json:"output"` // "stdout" or "stderr"
}

// MetricsConfig selects whether and where Prometheus metrics are served.
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// Config is the codec CLI's full configuration surface.
type Config struct {
	Worker      WorkerConfig      `json:"worker"`
	RateLimit   RateLimitConfig   `json:"rate_limit"`
	FlowControl FlowControlConfig `json:"flow_control"`
	Registry    RegistryConfig    `json:"registry"`
	Logging     LoggingConfig     `json:"logging"`
	Metrics     MetricsConfig     `json:"metrics"`
}

// configJSON mirrors Config but with a string field for the duration
// that Config.FlowControl.WindowSize carries as time.Duration, since
// that field is excluded from Config's own JSON tags.
type configJSON struct {
	Worker      WorkerConfig    `json:"worker"`
	RateLimit   RateLimitConfig `json:"rate_limit"`
	FlowControl struct {
		MaxOutstanding int    `json:"max_outstanding"`
		WindowSize     string `json:"window_size"`
		MaxRetries     int    `json:"max_retries"`
	} `json:"flow_control"`
	Registry RegistryConfig `json:"registry"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// Manager loads, validates and persists a Config.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager builds a Manager that reads from and writes to configPath.
// An empty configPath means "defaults only, no file".
func NewManager(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// LoadConfig returns the default configuration, overlaid with
// configPath's contents if that file exists.
func (m *Manager) LoadConfig() (*Config, error) {
	config := defaultConfig()

	if m.configPath != "" && fileExists(m.configPath) {
		data, err := os.ReadFile(m.configPath)
		if err != nil {
			return nil, fmt.Errorf("appconfig: read config file: %w", err)
		}

		var jc configJSON
		if err := json.Unmarshal(data, &jc); err != nil {
			return nil, fmt.Errorf("appconfig: parse config file: %w", err)
		}
		if err := convertJSONConfig(&jc, config); err != nil {
			return nil, fmt.Errorf("appconfig: convert config: %w", err)
		}
	}

	m.config = config

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("appconfig: invalid configuration: %w", err)
	}

	return config, nil
}

func convertJSONConfig(jc *configJSON, config *Config) error {
	config.Worker = jc.Worker
	config.RateLimit = jc.RateLimit
	config.Registry = jc.Registry
	config.Logging = jc.Logging
	config.Metrics = jc.Metrics

	config.FlowControl.MaxOutstanding = jc.FlowControl.MaxOutstanding
	config.FlowControl.MaxRetries = jc.FlowControl.MaxRetries
	if jc.FlowControl.WindowSize != "" {
		d, err := time.ParseDuration(jc.FlowControl.WindowSize)
		if err != nil {
			return fmt.Errorf("invalid flow_control.window_size: %w", err)
		}
		config.FlowControl.WindowSize = d
	}
	return nil
}

// SaveConfig writes the current configuration to configPath.
func (m *Manager) SaveConfig() error {
	if m.config == nil {
		return fmt.Errorf("appconfig: no configuration to save")
	}
	if m.configPath == "" {
		return fmt.Errorf("appconfig: no config path specified")
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("appconfig: create config directory: %w", err)
	}

	jc := configJSON{
		Worker:    m.config.Worker,
		RateLimit: m.config.RateLimit,
		Registry:  m.config.Registry,
		Logging:   m.config.Logging,
		Metrics:   m.config.Metrics,
	}
	jc.FlowControl.MaxOutstanding = m.config.FlowControl.MaxOutstanding
	jc.FlowControl.MaxRetries = m.config.FlowControl.MaxRetries
	jc.FlowControl.WindowSize = m.config.FlowControl.WindowSize.String()

	data, err := json.MarshalIndent(jc, "", "  ")
	if err != nil {
		return fmt.Errorf("appconfig: marshal configuration: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("appconfig: write config file: %w", err)
	}
	return nil
}

// Validate checks the loaded configuration for internally consistent
// values.
func (m *Manager) Validate() error {
	if m.config == nil {
		return fmt.Errorf("configuration is nil")
	}

	if m.config.Worker.MaxWorkers <= 0 {
		return fmt.Errorf("worker.max_workers must be positive: %d", m.config.Worker.MaxWorkers)
	}

	if m.config.RateLimit.Enabled && m.config.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive when enabled: %d", m.config.RateLimit.RequestsPerMinute)
	}

	if m.config.FlowControl.MaxOutstanding <= 0 {
		return fmt.Errorf("flow_control.max_outstanding must be positive: %d", m.config.FlowControl.MaxOutstanding)
	}
	if m.config.FlowControl.WindowSize <= 0 {
		return fmt.Errorf("flow_control.window_size must be positive: %v", m.config.FlowControl.WindowSize)
	}

	validRegistryTypes := map[string]bool{"memory": true, "file": true}
	if !validRegistryTypes[m.config.Registry.Type] {
		return fmt.Errorf("invalid registry.type: %s", m.config.Registry.Type)
	}
	if m.config.Registry.Type == "file" && m.config.Registry.DataDir == "" {
		return fmt.Errorf("registry.data_dir required when registry.type is file")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if !validLevels[m.config.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", m.config.Logging.Level)
	}

	if m.config.Metrics.Enabled && (m.config.Metrics.Port <= 0 || m.config.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics.port: %d", m.config.Metrics.Port)
	}

	return nil
}

// GetConfig returns the most recently loaded configuration, or nil if
// LoadConfig has not yet been called.
func (m *Manager) GetConfig() *Config {
	return m.config
}

func defaultConfig() *Config {
	return &Config{
		Worker: WorkerConfig{MaxWorkers: 8},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 600,
		},
		FlowControl: FlowControlConfig{
			MaxOutstanding: 100,
			WindowSize:     time.Minute,
			MaxRetries:     3,
		},
		Registry: RegistryConfig{
			Type:    "memory",
			DataDir: "./data/descriptors",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// CreateDefaultConfigFile writes the default configuration to path,
// creating parent directories as needed.
func CreateDefaultConfigFile(path string) error {
	m := NewManager("")
	config := defaultConfig()
	m.config = config
	m.configPath = path
	return m.SaveConfig()
}
