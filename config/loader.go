package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/potholectl"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Environment variable overrides.
const (
	EnvServerURL   = "POTHOLE_SERVER_URL"
	EnvGeocoderURL = "POTHOLE_GEOCODER_URL"
	EnvCountry     = "POTHOLE_COUNTRY"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/potholectl/config.yaml)
// 3. Explicit config file (--config), when given
// 4. Environment variables (a local .env file is honored first)
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !os.IsNotExist(err) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	// Load explicit config
	if explicitPath != "" {
		explicitConfig, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config file", slog.String("path", explicitPath))
		config.Merge(explicitConfig)
	}

	// A .env file in the working directory seeds the environment; a
	// missing file is not an error.
	if err := godotenv.Load(); err == nil {
		l.logger.Debug("Loaded .env file")
	}

	if url := os.Getenv(EnvServerURL); url != "" {
		config.Server.URL = url
	}
	if url := os.Getenv(EnvGeocoderURL); url != "" {
		config.Geocoder.URL = url
	}
	if cc := os.Getenv(EnvCountry); cc != "" {
		config.Geocoder.Country = cc
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
