package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/pdfua-remediator/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect remediation runs stored in the database",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its steps and action plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var runsLimit int

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "Maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// openDatabase connects to the run ledger; unlike the run command a database is required here
func openDatabase(ctx context.Context, cmd *cobra.Command) (*db.DB, error) {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	database, err := openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs found")
		return nil
	}
	for _, run := range runs {
		_, _ = fmt.Fprintf(out, "%s  %-13s  %s  %s\n",
			run.ID, run.Status, run.CreatedAt.Format(time.RFC3339), run.InputPath)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	ctx := cmd.Context()
	database, err := openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}
	steps, err := database.ListRunSteps(ctx, runID)
	if err != nil {
		return err
	}
	plan, err := database.GetArtifact(ctx, runID, db.StepActionPlan)
	if err != nil {
		return err
	}

	printRun(cmd.OutOrStdout(), run, steps, plan)
	return nil
}

func printRun(out io.Writer, run *db.Run, steps []db.RunStep, plan []byte) {
	_, _ = fmt.Fprintf(out, "Run:     %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Status:  %s\n", run.Status)
	_, _ = fmt.Fprintf(out, "Input:   %s\n", run.InputPath)
	_, _ = fmt.Fprintf(out, "Output:  %s\n", run.OutputPath)
	if run.InitialViolations != nil && run.FinalViolations != nil {
		_, _ = fmt.Fprintf(out, "Violations: %d before, %d after\n", *run.InitialViolations, *run.FinalViolations)
	}
	if run.ErrorMessage != nil {
		_, _ = fmt.Fprintf(out, "Error:   %s\n", *run.ErrorMessage)
	}
	for _, step := range steps {
		line := fmt.Sprintf("  %-10s %-9s %dms", step.State, step.Status, step.DurationMs)
		if step.ErrorMessage != nil {
			line += "  " + *step.ErrorMessage
		}
		_, _ = fmt.Fprintln(out, line)
	}
	if len(plan) > 0 {
		_, _ = fmt.Fprintf(out, "Plan:    %s\n", plan)
	}
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	ctx := cmd.Context()
	database, err := openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteRun(ctx, runID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", runID)
	return nil
}
