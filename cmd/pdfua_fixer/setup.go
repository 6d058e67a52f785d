package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/config"
	"github.com/jonathan/pdfua-remediator/internal/db"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/validation"
)

// resolveConfig builds the effective configuration.
// Precedence: explicitly set flags, then the config file, then the environment, then defaults.
func resolveConfig(cmd *cobra.Command, override func(cfg *config.Config)) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("validator") {
		cfg.ValidatorCommand = validatorCommand
		cfg.ValidatorJar = ""
	}
	if flags.Changed("validator-jar") {
		cfg.ValidatorJar = validatorJar
		cfg.ValidatorCommand = ""
	}
	if flags.Changed("flavour") {
		cfg.Flavour = flavour
	}
	if flags.Changed("timeout") {
		cfg.ValidatorTimeout = validatorTimeout
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	if override != nil {
		override(&cfg)
	}

	cfg.ApplyEnv()
	merged := cfg.MergeWithDefaults(config.Defaults())
	return &merged, nil
}

// checkConfig validates cfg. Commands that do not read cfg.Input skip its existence check.
func checkConfig(cfg *config.Config, needsInput bool) error {
	check := *cfg
	if !needsInput {
		check.Input = ""
	}
	return check.Validate()
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return observability.NewLogger(cmd.ErrOrStderr(), level, cfg.LogFormat)
}

func newRunner(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*validation.Runner, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return &validation.Runner{
		Command: cfg.ValidatorArgs(),
		Jar:     cfg.ValidatorJar,
		Flavour: cfg.Flavour,
		Timeout: timeout,
		Logger:  logger,
		Metrics: metrics,
	}, nil
}

// connectStore opens the run ledger. A connection failure is only a warning: the
// command continues without persistence.
func connectStore(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *db.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to connect to database: %v\n", err)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Continuing without database persistence...\n")
		return nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to prepare database schema: %v\n", err)
		database.Close()
		return nil
	}
	logger.Debug("connected to database")
	return database
}

func writeMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics file", "path", cfg.MetricsFile, "error", err)
	}
}
