package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/config"
	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/engine/pdfcpu"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/repair"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply an action plan JSON file to a PDF",
	Long: `Opens a PDF, submits the actions of a plan file to the document engine and saves
the result. The plan uses the same format as the plan command output.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

var (
	applyInput    string
	applyActions  string
	applyOutput   string
	applyPassword string
)

func init() {
	applyCmd.Flags().StringVarP(&applyInput, "in", "i", "", "Input PDF (default pdf/example.pdf)")
	applyCmd.Flags().StringVarP(&applyActions, "actions", "a", "", "Path to action plan JSON file (required)")
	applyCmd.Flags().StringVarP(&applyOutput, "out", "o", "", "Path to output PDF (required)")
	applyCmd.Flags().StringVar(&applyPassword, "password", "", "Password of an encrypted input")

	if err := applyCmd.MarkFlagRequired("actions"); err != nil {
		panic(fmt.Sprintf("failed to mark actions flag as required: %v", err))
	}
	if err := applyCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("in") {
			cfg.Input = applyInput
		}
		if cmd.Flags().Changed("password") {
			cfg.Password = applyPassword
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

	plan, err := repair.LoadPlan(applyActions)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Verbose {
		observability.NewPrinter(out).PrintActionPlan(plan)
	}

	eng := pdfcpu.New()
	doc, err := eng.OpenDoc(cfg.Input, cfg.Password)
	if err != nil {
		return err
	}
	defer func() { _ = doc.Close() }()

	if err := repair.ApplyFixes(cmd.Context(), eng, doc, plan, repair.ApplyOptions{Logger: logger}); err != nil {
		return err
	}

	if dir := filepath.Dir(applyOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := doc.Save(applyOutput, engine.SaveFull); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Applied %d action(s) to %s\n", len(plan.Actions), cfg.Input)
	_, _ = fmt.Fprintf(out, "Output: %s\n", applyOutput)
	return nil
}
