package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Provider  ProviderConfig  `json:"provider" yaml:"provider"`
	Broadcast BroadcastConfig `json:"broadcast" yaml:"broadcast"`
}

// ServerConfig contains the HTTP/websocket listener parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// StoreConfig contains the price-history database parameters
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ProviderConfig contains the upstream quote API parameters
type ProviderConfig struct {
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	CacheTTL string `json:"cache_ttl" yaml:"cache_ttl"` // e.g. "5m"
}

// BroadcastConfig contains the scheduler parameters
type BroadcastConfig struct {
	Interval  string  `json:"interval" yaml:"interval"` // e.g. "5s"
	MaxChange float64 `json:"max_change" yaml:"max_change"`
}

// ParseCacheTTL converts the cache_ttl string to time.Duration
func (p ProviderConfig) ParseCacheTTL() (time.Duration, error) {
	if p.CacheTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(p.CacheTTL)
}

// ParseInterval converts the interval string to time.Duration
func (b BroadcastConfig) ParseInterval() (time.Duration, error) {
	if b.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(b.Interval)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// API keys belong in the environment, not in config files
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("STOCKFEED_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if ttl, err := c.Provider.ParseCacheTTL(); err != nil || ttl < 0 {
		return fmt.Errorf("provider.cache_ttl must be a non-negative duration")
	}
	if iv, err := c.Broadcast.ParseInterval(); err != nil || iv < 0 {
		return fmt.Errorf("broadcast.interval must be a non-negative duration")
	}
	if c.Broadcast.MaxChange < 0 || c.Broadcast.MaxChange > 1 {
		return fmt.Errorf("broadcast.max_change must be between 0 and 1")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			DBPath: "./stockfeed.db",
		},
		Provider: ProviderConfig{
			BaseURL:  "https://www.alphavantage.co/query",
			CacheTTL: "5m",
		},
		Broadcast: BroadcastConfig{
			Interval:  "5s",
			MaxChange: 0.02,
		},
	}
}
