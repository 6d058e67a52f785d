package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/config"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/schemas"
	"github.com/jonathan/pdfua-remediator/internal/types"
	"github.com/jonathan/pdfua-remediator/internal/validation"
	schemafiles "github.com/jonathan/pdfua-remediator/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <pdf>...",
	Short: "Validate PDFs against PDF/UA without modifying them",
	Long: `Runs the external validator on every file and prints a verdict per file.
Exits with status 1 when any file is not compliant or the validator fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var (
	validateJobs   int
	validateOutput string
)

func init() {
	validateCmd.Flags().IntVarP(&validateJobs, "jobs", "j", 0, "Concurrent validator processes (default 1)")
	validateCmd.Flags().StringVarP(&validateOutput, "out", "o", "", "Path to output Violations JSON file (optional)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("jobs") {
			cfg.Jobs = validateJobs
		}
	})
	if err != nil {
		return err
	}
	if err := checkConfig(cfg, false); err != nil {
		return err
	}

	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("PDF file not found: %s", path)
		}
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

	outcomes, err := validation.ValidateAll(cmd.Context(), runner, args, cfg.Jobs)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	result := types.ViolationsReport{Files: make([]types.Violations, 0, len(outcomes))}
	failing := 0
	for _, outcome := range outcomes {
		summary := outcome.Summary()
		result.Files = append(result.Files, summary)

		if outcome.Compliant {
			_, _ = fmt.Fprintf(out, "PASS %s\n", outcome.Path)
		} else {
			failing++
			_, _ = fmt.Fprintf(out, "FAIL %s (%d violation(s))\n", outcome.Path, len(outcome.Violations))
		}
		if cfg.Verbose {
			printer.PrintViolations(&summary)
		}
	}

	if validateOutput != "" {
		if err := writeViolations(cmd, validateOutput, &result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Output: %s\n", validateOutput)
	}

	if failing > 0 {
		// Return error to indicate violations were found (exit code 1)
		return fmt.Errorf("%d of %d file(s) are not PDF/UA compliant", failing, len(outcomes))
	}
	return nil
}

func writeViolations(cmd *cobra.Command, path string, result *types.ViolationsReport) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal violations to JSON: %w", err)
	}

	// Validate output against schema (non-fatal)
	if err := schemas.ValidateJSONString(schemafiles.Violations, string(jsonBytes)); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Generated violations do not validate against schema: %v\n", err)
		} else {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not validate output against schema: %v\n", err)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write violations to output file: %w", err)
	}
	return nil
}
