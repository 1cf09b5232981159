// Package config provides unified configuration for the tabshift service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the tabshift service.
type Config struct {
	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Engine configuration
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Stats configuration
	Stats StatsConfig `json:"stats" yaml:"stats"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the HTTP listen address
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// EngineConfig holds transformation engine configuration.
type EngineConfig struct {
	// MaxRows caps the number of records accepted per request
	MaxRows int `json:"max_rows" yaml:"max_rows"`

	// BatchConcurrency is the number of batch items processed in parallel
	BatchConcurrency int `json:"batch_concurrency" yaml:"batch_concurrency"`
}

// StatsConfig holds usage statistics configuration.
type StatsConfig struct {
	// Window is how long usage entries live before being pruned
	Window time.Duration `json:"window" yaml:"window"`

	// TopColumns is how many columns the stats endpoint reports
	TopColumns int `json:"top_columns" yaml:"top_columns"`

	// PruneInterval is how often stale usage entries are pruned
	PruneInterval time.Duration `json:"prune_interval" yaml:"prune_interval"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Engine: EngineConfig{
			MaxRows:          10000,
			BatchConcurrency: 8,
		},
		Stats: StatsConfig{
			Window:        time.Hour,
			TopColumns:    10,
			PruneInterval: 5 * time.Minute,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.Engine.MaxRows <= 0 {
		return fmt.Errorf("engine.max_rows must be positive, got %d", c.Engine.MaxRows)
	}
	if c.Engine.BatchConcurrency <= 0 {
		return fmt.Errorf("engine.batch_concurrency must be positive, got %d", c.Engine.BatchConcurrency)
	}
	if c.Stats.Window <= 0 {
		return fmt.Errorf("stats.window must be positive, got %s", c.Stats.Window)
	}
	if c.Stats.PruneInterval <= 0 {
		return fmt.Errorf("stats.prune_interval must be positive, got %s", c.Stats.PruneInterval)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, starting
// from defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies TABSHIFT_* environment variable overrides.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TABSHIFT_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TABSHIFT_MAX_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Engine.MaxRows)
	}
	if v := os.Getenv("TABSHIFT_BATCH_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Engine.BatchConcurrency)
	}
	if v := os.Getenv("TABSHIFT_STATS_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Stats.Window = d
		}
	}
}
