// Package config provides configuration loading for the pothole
// reporting client.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete client configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
}

// ServerConfig configures the reporting service connection.
type ServerConfig struct {
	// URL is the service base URL.
	URL string `yaml:"url"`
	// LookupTimeout bounds list/detail/search requests (default: 15s).
	LookupTimeout string `yaml:"lookup_timeout"`
	// UploadTimeout bounds image upload requests (default: 30s).
	UploadTimeout string `yaml:"upload_timeout"`
}

// GeocoderConfig configures the third-party location search.
type GeocoderConfig struct {
	// URL is the geocoder base URL (default: public Nominatim).
	URL string `yaml:"url"`
	// Country restricts results to one country code (default: in).
	Country string `yaml:"country"`
	// UserAgent is the descriptive client identifier the geocoder
	// requires.
	UserAgent string `yaml:"user_agent"`
	// Debounce is the search quiet period (default: 500ms).
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:           "http://localhost:8000",
			LookupTimeout: "15s",
			UploadTimeout: "30s",
		},
		Geocoder: GeocoderConfig{
			URL:       "https://nominatim.openstreetmap.org",
			Country:   "in",
			UserAgent: "SmartPotholeClient/1.0",
			Debounce:  "500ms",
		},
	}
}

// GetLookupTimeout returns the lookup timeout as a duration.
func (c *ServerConfig) GetLookupTimeout() time.Duration {
	return parseDuration(c.LookupTimeout, 15*time.Second)
}

// GetUploadTimeout returns the upload timeout as a duration.
func (c *ServerConfig) GetUploadTimeout() time.Duration {
	return parseDuration(c.UploadTimeout, 30*time.Second)
}

// GetDebounce returns the search quiet period as a duration.
func (c *GeocoderConfig) GetDebounce() time.Duration {
	return parseDuration(c.Debounce, 500*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Geocoder.UserAgent == "" {
		return fmt.Errorf("geocoder.user_agent is required")
	}
	if c.Server.LookupTimeout != "" {
		if _, err := time.ParseDuration(c.Server.LookupTimeout); err != nil {
			return fmt.Errorf("server.lookup_timeout: %w", err)
		}
	}
	if c.Server.UploadTimeout != "" {
		if _, err := time.ParseDuration(c.Server.UploadTimeout); err != nil {
			return fmt.Errorf("server.upload_timeout: %w", err)
		}
	}
	return nil
}

// Merge overlays non-empty fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Server.URL != "" {
		c.Server.URL = other.Server.URL
	}
	if other.Server.LookupTimeout != "" {
		c.Server.LookupTimeout = other.Server.LookupTimeout
	}
	if other.Server.UploadTimeout != "" {
		c.Server.UploadTimeout = other.Server.UploadTimeout
	}
	if other.Geocoder.URL != "" {
		c.Geocoder.URL = other.Geocoder.URL
	}
	if other.Geocoder.Country != "" {
		c.Geocoder.Country = other.Geocoder.Country
	}
	if other.Geocoder.UserAgent != "" {
		c.Geocoder.UserAgent = other.Geocoder.UserAgent
	}
	if other.Geocoder.Debounce != "" {
		c.Geocoder.Debounce = other.Geocoder.Debounce
	}
}

// LoadFromFile reads a config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &config, nil
}
