package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/config"
	"github.com/jonathan/pdfua-remediator/internal/engine/pdfcpu"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full remediation pipeline end-to-end",
	Long: `Opens the input PDF, auto-tags it and saves an intermediate copy, validates it,
applies fixes for the violated clauses, saves the output and validates it again.

Configuration can be loaded from a JSON or YAML file using --config. Command-line
arguments override config file values.`,
	Args: cobra.NoArgs,
	RunE: runPipelineCmd,
}

var (
	runInput        string
	runValidatePath string
	runOutput       string
	runActions      string
	runPassword     string
)

func init() {
	runCommand.Flags().StringVarP(&runInput, "in", "i", "", "Input PDF (default pdf/example.pdf)")
	runCommand.Flags().StringVar(&runValidatePath, "validate-path", "", "Tagged copy checked by the first validation (default pdf/validate.pdf)")
	runCommand.Flags().StringVarP(&runOutput, "out", "o", "", "Remediated PDF (default pdf/tagged.pdf)")
	runCommand.Flags().StringVar(&runActions, "actions", "", "Audit copy of the submitted action plan (default pdf/actions.json)")
	runCommand.Flags().StringVar(&runPassword, "password", "", "Password of an encrypted input")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := resolveConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("in") {
			cfg.Input = runInput
		}
		if cmd.Flags().Changed("validate-path") {
			cfg.ValidatePath = runValidatePath
		}
		if cmd.Flags().Changed("out") {
			cfg.Output = runOutput
		}
		if cmd.Flags().Changed("actions") {
			cfg.ActionsPath = runActions
		}
		if cmd.Flags().Changed("password") {
			cfg.Password = runPassword
		}
	})
	if err != nil {
		return err
	}
	if err := checkConfig(cfg, true); err != nil {
		return err
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
	if cfg.Verbose {
		opts = append(opts, pipeline.WithPrinter(observability.NewPrinter(cmd.OutOrStdout())))
	}
	if database := connectStore(ctx, cmd, cfg, logger); database != nil {
		defer database.Close()
		opts = append(opts, pipeline.WithStore(database))
	}

	out := cmd.OutOrStdout()
	res, err := pipeline.New(pdfcpu.New(), runner, opts...).Run(ctx, pipeline.RunOptions{
		InputPath:    cfg.Input,
		ValidatePath: cfg.ValidatePath,
		OutputPath:   cfg.Output,
		ActionsPath:  cfg.ActionsPath,
		Password:     cfg.Password,
		OnProgress: func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "%s: %s\n", e.Step, e.Message)
		},
	})
	if err != nil {
		return err
	}

	if res.Compliant() {
		_, _ = fmt.Fprintf(out, "✅ %s is PDF/UA compliant.\n", cfg.Output)
	} else {
		_, _ = fmt.Fprintf(out, "⚠️ Warning: %d violation(s) remain in %s.\n", len(res.FinalViolations), cfg.Output)
	}
	_, _ = fmt.Fprintln(out, "All done!")
	return nil
}
