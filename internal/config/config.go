// Package config holds all attestry configuration, loaded from a YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all attestry configuration.
type Config struct {
	// UserAddress is the default requesting-user address substituted into
	// query placeholders when no --address flag is given.
	UserAddress string `yaml:"user_address"`

	Fetch   FetchConfig   `yaml:"fetch"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Logging LoggingConfig `yaml:"logging"`
}

// FetchConfig configures the query fetch adapter.
type FetchConfig struct {
	Timeout  string      `yaml:"timeout"`
	RelayURL string      `yaml:"relay_url"`
	CacheKey string      `yaml:"cache_key"`
	Cache    CacheConfig `yaml:"cache"`
}

// CacheConfig configures the local response cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	TTL     string `yaml:"ttl"`
}

// SandboxConfig configures the script executor.
type SandboxConfig struct {
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout: "30s",
			Cache: CacheConfig{
				Path: defaultCachePath(),
				TTL:  "10m",
			},
		},
		Sandbox: SandboxConfig{
			Timeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".attestry", "cache.db")
	}
	return filepath.Join(home, ".attestry", "cache.db")
}

// Load reads configuration from path. A missing file yields the defaults;
// a malformed file is an error. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies ATTESTRY_* environment variables on top of
// whatever the file provided.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("ATTESTRY_USER_ADDRESS"); addr != "" {
		c.UserAddress = addr
	}
	if url := os.Getenv("ATTESTRY_RELAY_URL"); url != "" {
		c.Fetch.RelayURL = url
	}
	if path := os.Getenv("ATTESTRY_CACHE_PATH"); path != "" {
		c.Fetch.Cache.Path = path
	}
	if level := os.Getenv("ATTESTRY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// FetchTimeout returns the parsed fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return parseDuration(c.Fetch.Timeout, 30*time.Second)
}

// SandboxTimeout returns the parsed script execution deadline.
func (c *Config) SandboxTimeout() time.Duration {
	return parseDuration(c.Sandbox.Timeout, 10*time.Second)
}

// CacheTTL returns the parsed local cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Fetch.Cache.TTL, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
