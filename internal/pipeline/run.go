// Package pipeline provides the high-level orchestration of a remediation run:
// tag, validate, fix, and validate again.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/pdfua-remediator/internal/db"
	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/repair"
	"github.com/jonathan/pdfua-remediator/internal/types"
	"github.com/jonathan/pdfua-remediator/internal/validation"
)

// DefaultTagsStandard is passed to auto-tagging when RunOptions leaves it empty
const DefaultTagsStandard = "PDF/UA-1"

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunStore persists run records and artifacts. *db.DB satisfies it.
type RunStore interface {
	CreateRun(ctx context.Context, runID uuid.UUID, inputPath, outputPath string) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error
	RecordStep(ctx context.Context, runID uuid.UUID, input db.RunStepInput) error
	CompleteRun(ctx context.Context, runID uuid.UUID, c db.RunCompletion) error
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	InputPath string
	// ValidatePath receives the tagged document before fixes are applied
	ValidatePath string
	OutputPath   string
	// ActionsPath receives an audit copy of the submitted plan. Empty disables it.
	ActionsPath  string
	Password     string
	TagsStandard string
	OnProgress   ProgressCallback
}

func (o RunOptions) check() error {
	switch {
	case o.InputPath == "":
		return errors.New("input path is required")
	case o.ValidatePath == "":
		return errors.New("validate path is required")
	case o.OutputPath == "":
		return errors.New("output path is required")
	}
	return nil
}

// Result describes how far a run got and what it found
type Result struct {
	RunID             uuid.UUID
	Input             string
	Output            string
	State             State
	InitialViolations []types.ViolationRecord
	Plan              *types.ActionPlan
	FinalViolations   []types.ViolationRecord
	Stages            []types.StageTiming
	Duration          time.Duration

	err error
}

// Compliant reports whether the run finished and the final pass found nothing
func (r *Result) Compliant() bool {
	return r.State == StateDone && len(r.FinalViolations) == 0
}

// Summary converts the result into its printable form
func (r *Result) Summary() *types.RunSummary {
	summary := &types.RunSummary{
		RunID:             r.RunID.String(),
		Input:             r.Input,
		Output:            r.Output,
		InitialViolations: len(r.InitialViolations),
		FinalViolations:   len(r.FinalViolations),
		Actions:           r.Plan.Names(),
		Stages:            r.Stages,
		Duration:          r.Duration,
	}
	if r.err != nil {
		summary.Error = r.err.Error()
	}
	return summary
}

// Orchestrator drives one document through the remediation states.
// It owns the opened document for the duration of Run.
type Orchestrator struct {
	engine    engine.Engine
	validator validation.Validator
	logger    *slog.Logger
	store     RunStore
	metrics   *observability.Metrics
	printer   *observability.Printer
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithStore persists runs, steps and artifacts. Store failures never abort a run.
func WithStore(store RunStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithMetrics records run metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithPrinter prints boxed violation, plan and summary reports
func WithPrinter(p *observability.Printer) Option {
	return func(o *Orchestrator) {
		o.printer = p
	}
}

// New creates an orchestrator around an engine and a validator
func New(eng engine.Engine, v validation.Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{engine: eng, validator: v}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = observability.OrDiscard(o.logger)
	return o
}

// run carries the per-call state of Orchestrator.Run
type run struct {
	*Orchestrator
	opts   RunOptions
	result *Result
	store  RunStore
	doc    engine.Document
}

// Run executes Opened → Tagged → Validated1 → Fixed → Validated2 → Done and stops
// at the first failure, which is returned as *StageError. The returned Result is
// never nil so callers can report partial progress.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.TagsStandard == "" {
		opts.TagsStandard = DefaultTagsStandard
	}
	r := &run{
		Orchestrator: o,
		opts:         opts,
		store:        o.store,
		result: &Result{
			RunID:  uuid.New(),
			Input:  opts.InputPath,
			Output: opts.OutputPath,
			State:  StateInit,
		},
	}
	if err := opts.check(); err != nil {
		r.result.err = err
		return r.result, err
	}

	start := time.Now()
	err := r.execute(ctx)
	r.result.Duration = time.Since(start)
	r.result.err = err
	r.finish(ctx, err)

	return r.result, err
}

func (r *run) execute(ctx context.Context) error {
	r.logger.Info("starting remediation run",
		"run_id", r.result.RunID, "path", r.opts.InputPath)

	if r.store != nil {
		if err := r.store.CreateRun(ctx, r.result.RunID, r.opts.InputPath, r.opts.OutputPath); err != nil {
			r.logger.Warn("failed to create run record, continuing without persistence",
				"run_id", r.result.RunID, "error", err)
			r.store = nil
		}
	}

	defer func() {
		if r.doc == nil {
			return
		}
		if err := r.doc.Close(); err != nil {
			r.logger.Warn("failed to close document", "path", r.opts.InputPath, "error", err)
		}
	}()

	if err := r.enter(ctx, StateOpened, db.CategoryDocument, r.open); err != nil {
		return err
	}
	if err := r.enter(ctx, StateTagged, db.CategoryDocument, r.tag); err != nil {
		return err
	}
	if err := r.enter(ctx, StateValidated1, db.CategoryValidation, r.validateInitial); err != nil {
		return err
	}
	if err := r.enter(ctx, StateFixed, db.CategoryRepair, r.fix); err != nil {
		return err
	}
	if err := r.enter(ctx, StateValidated2, db.CategoryValidation, r.validateFinal); err != nil {
		return err
	}

	r.result.State = StateDone
	r.emit(StateDone, db.CategoryValidation,
		fmt.Sprintf("%d violations remain", len(r.result.FinalViolations)), nil)
	return nil
}

// enter times one transition and records it everywhere it is observed
func (r *run) enter(ctx context.Context, state State, category string, fn func(ctx context.Context) (string, any, error)) error {
	start := time.Now()
	message, content, err := fn(ctx)
	elapsed := time.Since(start)

	r.result.Stages = append(r.result.Stages, types.StageTiming{State: state.String(), Duration: elapsed})
	r.metrics.ObserveStage(state.String(), elapsed)

	step := db.RunStepInput{State: state.String(), Status: db.StepStatusCompleted, Duration: elapsed}
	if err != nil {
		step.Status = db.StepStatusFailed
		step.Error = err.Error()
	}
	r.recordStep(ctx, step)

	if err != nil {
		r.logger.Error("transition failed",
			"run_id", r.result.RunID, "state", state.String(), "duration", elapsed, "error", err)
		return &StageError{State: state, Cause: err}
	}

	r.result.State = state
	r.logger.Info(message, "run_id", r.result.RunID, "state", state.String(), "duration", elapsed)
	r.emit(state, category, message, content)
	return nil
}

func (r *run) open(_ context.Context) (string, any, error) {
	doc, err := r.engine.OpenDoc(r.opts.InputPath, r.opts.Password)
	if err != nil {
		return "", nil, err
	}
	r.doc = doc
	return fmt.Sprintf("opened %s", r.opts.InputPath), nil, nil
}

func (r *run) tag(_ context.Context) (string, any, error) {
	if err := r.doc.AddTags(engine.TagsParams{Standard: r.opts.TagsStandard}); err != nil {
		return "", nil, err
	}
	return "tagged document", nil, nil
}

func (r *run) validateInitial(ctx context.Context) (string, any, error) {
	if err := saveDocument(r.doc, r.opts.ValidatePath); err != nil {
		return "", nil, err
	}
	outcome, err := r.validator.Run(ctx, r.opts.ValidatePath)
	if err != nil {
		return "", nil, err
	}

	r.result.InitialViolations = outcome.Violations
	summary := outcome.Summary()
	r.metrics.ObserveViolations("initial", len(outcome.Violations))
	r.saveText(ctx, db.StepInitialReport, db.CategoryValidation, outcome.Report)
	r.saveArtifact(ctx, db.StepInitialViolations, db.CategoryValidation, summary)
	if r.printer != nil {
		r.printer.PrintViolations(&summary)
	}

	return fmt.Sprintf("found %d violations", len(outcome.Violations)), summary, nil
}

func (r *run) fix(ctx context.Context) (string, any, error) {
	plan := repair.ProposeFixes(r.result.InitialViolations)
	r.result.Plan = plan
	r.saveArtifact(ctx, db.StepActionPlan, db.CategoryRepair, plan)
	if r.printer != nil {
		r.printer.PrintActionPlan(plan)
	}

	err := repair.ApplyFixes(ctx, r.engine, r.doc, plan, repair.ApplyOptions{
		AuditPath: r.opts.ActionsPath,
		Logger:    r.logger,
	})
	if err != nil {
		return "", nil, err
	}
	for _, name := range plan.Names() {
		r.metrics.IncrementAction(name)
	}

	if err := saveDocument(r.doc, r.opts.OutputPath); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("applied %d actions", len(plan.Actions)), plan, nil
}

func (r *run) validateFinal(ctx context.Context) (string, any, error) {
	outcome, err := r.validator.Run(ctx, r.opts.OutputPath)
	if err != nil {
		return "", nil, err
	}

	r.result.FinalViolations = outcome.Violations
	summary := outcome.Summary()
	r.metrics.ObserveViolations("final", len(outcome.Violations))
	r.saveText(ctx, db.StepFinalReport, db.CategoryValidation, outcome.Report)
	r.saveArtifact(ctx, db.StepFinalViolations, db.CategoryValidation, summary)
	if r.printer != nil {
		r.printer.PrintViolations(&summary)
	}

	return fmt.Sprintf("found %d violations after fixes", len(outcome.Violations)), summary, nil
}

func (r *run) finish(ctx context.Context, err error) {
	status := db.StatusFor(len(r.result.FinalViolations), err)
	r.metrics.IncrementRun(status)

	if r.store != nil {
		completion := db.RunCompletion{
			Status:            status,
			InitialViolations: len(r.result.InitialViolations),
			FinalViolations:   len(r.result.FinalViolations),
		}
		if err != nil {
			completion.ErrorMessage = err.Error()
		}
		if storeErr := r.store.CompleteRun(ctx, r.result.RunID, completion); storeErr != nil {
			r.logger.Warn("failed to complete run record", "run_id", r.result.RunID, "error", storeErr)
		}
	}

	if r.printer != nil {
		r.printer.PrintRunSummary(r.result.Summary())
	}
	r.logger.Info("remediation run finished",
		"run_id", r.result.RunID, "state", r.result.State.String(), "status", status,
		"duration", r.result.Duration)
}

func (r *run) emit(state State, category, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(ProgressEvent{
		Step:     state.String(),
		Category: category,
		Message:  message,
		RunID:    r.result.RunID.String(),
		Content:  content,
	})
}

func (r *run) recordStep(ctx context.Context, step db.RunStepInput) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordStep(ctx, r.result.RunID, step); err != nil {
		r.logger.Warn("failed to record run step", "run_id", r.result.RunID, "state", step.State, "error", err)
	}
}

func (r *run) saveArtifact(ctx context.Context, step, category string, content any) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveArtifact(ctx, r.result.RunID, step, category, content); err != nil {
		r.logger.Warn("failed to save artifact", "run_id", r.result.RunID, "step", step, "error", err)
	}
}

func (r *run) saveText(ctx context.Context, step, category, text string) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveTextArtifact(ctx, r.result.RunID, step, category, text); err != nil {
		r.logger.Warn("failed to save artifact", "run_id", r.result.RunID, "step", step, "error", err)
	}
}

// saveDocument writes a full copy of doc, creating the parent directory first
func saveDocument(doc engine.Document, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &engine.SaveError{Path: path, Mode: engine.SaveFull, Cause: err}
		}
	}
	return doc.Save(path, engine.SaveFull)
}
