// Package main provides the potholectl binary entry point.
// Potholectl drives both sides of the road-damage reporting system:
// the citizen flow (analyze an image, raise a geotagged complaint) and
// the authority flow (login, dashboard, case updates).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ompisal63/smart-pothole-system/api"
	"github.com/ompisal63/smart-pothole-system/config"
	"github.com/ompisal63/smart-pothole-system/metrics"
	"github.com/ompisal63/smart-pothole-system/session"
)

const (
	Version = "0.1.0"
	appName = "potholectl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles the shared collaborators every command needs.
type env struct {
	cfg    *config.Config
	store  session.Store
	client *api.Client
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Road damage reporting client",
		Long: `Potholectl is the command line client for the smart pothole
reporting service.

Citizen commands:
  analyze   Score a road image with the remote classifier
  report    Raise a geotagged complaint for a verified pothole
  locate    Look up location candidates for a free-text query

Authority commands:
  login, logout, list, show, update`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "Service base URL override")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	newEnv := func() (*env, error) {
		return buildEnv(configPath, serverURL, logLevel)
	}

	cmd.AddCommand(
		analyzeCmd(newEnv),
		reportCmd(newEnv),
		locateCmd(newEnv),
		loginCmd(newEnv),
		logoutCmd(newEnv),
		listCmd(newEnv),
		showCmd(newEnv),
		updateCmd(newEnv),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func buildEnv(configPath, serverURL, logLevel string) (*env, error) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}

	store, err := session.NewFileStore(session.DefaultPath())
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Server.URL,
		api.WithGeocoder(cfg.Geocoder.URL, cfg.Geocoder.Country),
		api.WithUserAgent(cfg.Geocoder.UserAgent),
		api.WithTimeouts(cfg.Server.GetLookupTimeout(), cfg.Server.GetUploadTimeout()),
		api.WithTokenSource(store),
		api.WithLogger(logger),
		api.WithRecorder(metrics.Default()),
	)

	return &env{cfg: cfg, store: store, client: client, logger: logger}, nil
}
