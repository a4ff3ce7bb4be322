// Package config provides the configuration structure for the
// text-to-audio service.
package config

import (
	"fmt"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the TOML omits a value.
const (
	defaultTimeoutSeconds  = 60
	defaultCatalogTTLHours = 24
	defaultListenAddress   = ":8080"
)

// HTTPConfig holds the configuration for the HTTP API.
type HTTPConfig struct {
	ListenAddress string `toml:"listen_address"`
}

// TTSConfig holds the configuration for the external synthesis provider.
type TTSConfig struct {
	BaseURL         string `toml:"base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	DefaultLanguage string `toml:"default_language"`
	PreferFemale    bool   `toml:"prefer_female"`
	CatalogTTLHours int    `toml:"catalog_ttl_hours"`
}

// NATSConfig holds the configuration for NATS. An empty URL disables the
// worker and object store.
type NATSConfig struct {
	URL                    string `toml:"url"`
	AudioRequestedSubject  string `toml:"audio_requested_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	HTTP  HTTPConfig  `toml:"http"`
	TTS   TTSConfig   `toml:"tts"`
	NATS  NATSConfig  `toml:"nats"`
	Paths PathsConfig `toml:"paths"`
}

// Load loads the configuration for the service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}

// Address returns the configured HTTP listen address or the default.
func (c *HTTPConfig) Address() string {
	if c.ListenAddress == "" {
		return defaultListenAddress
	}

	return c.ListenAddress
}

// Timeout returns the provider request timeout.
func (c *TTSConfig) Timeout() time.Duration {
	seconds := c.TimeoutSeconds
	if seconds <= 0 {
		seconds = defaultTimeoutSeconds
	}

	return time.Duration(seconds) * time.Second
}

// CatalogTTL returns how long a fetched voice catalog stays valid.
func (c *TTSConfig) CatalogTTL() time.Duration {
	hours := c.CatalogTTLHours
	if hours <= 0 {
		hours = defaultCatalogTTLHours
	}

	return time.Duration(hours) * time.Hour
}

// WorkerEnabled reports whether the NATS worker should be started.
func (c *NATSConfig) WorkerEnabled() bool {
	return c.URL != ""
}
