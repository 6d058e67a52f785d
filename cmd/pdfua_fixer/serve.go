package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/engine/pdfcpu"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/pipeline"
	"github.com/jonathan/pdfua-remediator/internal/server"
)

var (
	servePort          int
	serveRoot          string
	serveRunsPerMinute int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that runs remediations with streamed progress and exposes
the run ledger. Request paths are resolved under --root and may not leave it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "Directory request paths are resolved against")
	serveCmd.Flags().IntVar(&serveRunsPerMinute, "runs-per-minute", 10, "Runs each client may start per minute (0 disables the limit)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := checkConfig(cfg, false); err != nil {
		return err
	}
	if info, err := os.Stat(serveRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("root directory not found: %s", serveRoot)
	}
	if serveRunsPerMinute < 0 {
		return fmt.Errorf("--runs-per-minute must not be negative")
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	defer writeMetrics(cfg, metrics, logger)

	runner, err := newRunner(cfg, logger, metrics)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
	}
	var runs server.RunReader
	if database := connectStore(ctx, cmd, cfg, logger); database != nil {
		defer database.Close()
		opts = append(opts, pipeline.WithStore(database))
		runs = database
	}

	srv := server.New(server.Config{
		Port:          servePort,
		Root:          serveRoot,
		RunsPerMinute: serveRunsPerMinute,
	}, pipeline.New(pdfcpu.New(), runner, opts...), runs, metrics, logger)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening on :%d (root %s)\n", servePort, serveRoot)
	return srv.Start(ctx)
}
