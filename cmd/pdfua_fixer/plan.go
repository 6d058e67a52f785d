package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/report"
	"github.com/jonathan/pdfua-remediator/internal/repair"
	"github.com/jonathan/pdfua-remediator/internal/schemas"
	schemafiles "github.com/jonathan/pdfua-remediator/schemas"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan fix actions from a saved validator XML report",
	Long:  "Reads a validator XML report and prints the action plan that would be applied. No PDF is touched.",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

var (
	planReport string
	planOutput string
)

func init() {
	planCmd.Flags().StringVarP(&planReport, "report", "r", "", "Path to validator XML report (required)")
	planCmd.Flags().StringVarP(&planOutput, "out", "o", "", "Path to output action plan JSON (defaults to stdout)")

	if err := planCmd.MarkFlagRequired("report"); err != nil {
		panic(fmt.Sprintf("failed to mark report flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := checkConfig(cfg, false); err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	if _, err := os.Stat(planReport); os.IsNotExist(err) {
		return fmt.Errorf("report file not found: %s", planReport)
	}
	records, err := report.ParseFile(planReport)
	if err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}
	logger.Debug("parsed report", "path", planReport, "violations", len(records))

	plan := repair.ProposeFixes(records)
	if err := schemas.ValidateValue(schemafiles.FixActions, plan); err != nil {
		return fmt.Errorf("action plan does not match schema: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintActionPlan(plan)
	}

	if planOutput == "" {
		jsonBytes, err := json.MarshalIndent(plan, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to marshal action plan: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	if err := repair.SavePlan(planOutput, plan); err != nil {
		return fmt.Errorf("failed to write action plan: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Planned %d action(s) from %d violation(s)\n", len(plan.Actions), len(records))
	_, _ = fmt.Fprintf(out, "Output: %s\n", planOutput)
	return nil
}
