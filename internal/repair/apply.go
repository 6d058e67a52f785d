package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/schemas"
	"github.com/jonathan/pdfua-remediator/internal/types"
	schemafiles "github.com/jonathan/pdfua-remediator/schemas"
)

// ApplyOptions controls side effects of ApplyFixes
type ApplyOptions struct {
	// AuditPath receives an indented copy of the submitted plan. Empty disables it.
	AuditPath string
	Logger    *slog.Logger
}

// ApplyFixes submits the plan to the engine as one JSON command batch and runs it
// against doc. An empty plan is a no-op: no stream is created and the document is
// untouched. Any failure is returned as *SubmissionError; the document may then be
// partially modified.
func ApplyFixes(ctx context.Context, eng engine.Engine, doc engine.Document, plan *types.ActionPlan, opts ApplyOptions) error {
	logger := observability.OrDiscard(opts.Logger)

	if plan.Empty() {
		logger.Info("no fix needed")
		return nil
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return &SubmissionError{Step: StepSerialize, Message: "failed to marshal action plan", Cause: err}
	}
	if err := schemas.ValidateJSONString(schemafiles.FixActions, string(payload)); err != nil {
		return &SubmissionError{Step: StepSerialize, Message: "action plan does not match schema", Cause: err}
	}

	if opts.AuditPath != "" {
		if err := SavePlan(opts.AuditPath, plan); err != nil {
			logger.Warn("failed to write audit plan", "path", opts.AuditPath, "error", err)
		}
	}

	stm := eng.CreateMemStream()
	defer stm.Destroy()

	if err := stm.Write(0, payload); err != nil {
		return &SubmissionError{Step: StepWrite, Message: "failed to write payload stream", Cause: err}
	}

	cmd := doc.Command()
	if err := cmd.LoadParamsFromStream(stm, engine.DataFormatJSON); err != nil {
		return &SubmissionError{Step: StepLoad, Message: "engine rejected action plan", Cause: err}
	}
	if err := cmd.Run(ctx); err != nil {
		return &SubmissionError{Step: StepRun, Message: "engine failed to run action plan", Cause: err}
	}

	for _, name := range plan.Names() {
		logger.Debug("applied fix", "action", name)
	}
	logger.Info("applied action plan", "actions", len(plan.Actions))
	return nil
}

// SavePlan writes the plan as JSON indented with four spaces
func SavePlan(path string, plan *types.ActionPlan) error {
	if plan == nil {
		plan = &types.ActionPlan{}
	}
	if plan.Actions == nil {
		plan = &types.ActionPlan{Actions: []types.FixAction{}}
	}

	data, err := json.MarshalIndent(plan, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal action plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write action plan %s: %w", path, err)
	}
	return nil
}

// LoadPlan reads an action plan file and checks it against the fix actions schema
func LoadPlan(path string) (*types.ActionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PlanFileError{Path: path, Message: "failed to read file", Cause: err}
	}
	if err := schemas.ValidateJSONString(schemafiles.FixActions, string(data)); err != nil {
		return nil, &PlanFileError{Path: path, Message: "does not match schema", Cause: err}
	}

	var plan types.ActionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, &PlanFileError{Path: path, Message: "failed to decode", Cause: err}
	}
	if dup := duplicateName(&plan); dup != "" {
		return nil, &PlanFileError{Path: path, Message: fmt.Sprintf("action %q appears more than once", dup)}
	}
	return &plan, nil
}

func duplicateName(plan *types.ActionPlan) string {
	seen := make(map[string]bool, len(plan.Actions))
	for _, a := range plan.Actions {
		if seen[a.Name] {
			return a.Name
		}
		seen[a.Name] = true
	}
	return ""
}
