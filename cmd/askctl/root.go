package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
)

var (
	envFile  string
	logLevel string
	verbose  bool
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "askctl",
	Short: "Operate the e-commerce question service from the terminal",
	Long: `askctl loads the spreadsheet exports into the configured store, answers
questions with the same pipeline as the HTTP API and reports row counts.

Configuration is read from the environment (ECOMAGENT_* variables), after
loading the .env file when present.`,
	SilenceUsage: true,
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write logs to stderr")
}

// session bundles what every subcommand needs.
type session struct {
	cfg  *config.Config
	logg *logger.Logger
	db   *db.Client
}

func openSession(ctx context.Context) (*session, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	logg := logger.New(logger.Options{
		ServiceName: "askctl",
		Level:       level,
		Output:      out,
		Format:      "console",
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &session{cfg: cfg, logg: logg, db: client}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}
