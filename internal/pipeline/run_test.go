package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/jonathan/pdfua-remediator/internal/db"
	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/engine/mocks"
	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/repair"
	"github.com/jonathan/pdfua-remediator/internal/types"
	"github.com/jonathan/pdfua-remediator/internal/validation"
)

type validatorFunc func(ctx context.Context, path string) (*validation.Outcome, error)

func (f validatorFunc) Run(ctx context.Context, path string) (*validation.Outcome, error) {
	return f(ctx, path)
}

// scriptedValidator answers with the next outcome on every call
func scriptedValidator(outcomes ...*validation.Outcome) (validatorFunc, *[]string) {
	var calls []string
	return func(_ context.Context, path string) (*validation.Outcome, error) {
		i := len(calls)
		calls = append(calls, path)
		if i >= len(outcomes) {
			return nil, errors.New("unexpected validator call")
		}
		out := *outcomes[i]
		out.Path = path
		return &out, nil
	}, &calls
}

func violation(clause string) types.ViolationRecord {
	return types.NewViolationRecord(map[string]string{
		types.AttrSpecification: repair.SupportedSpecification,
		types.AttrClause:        clause,
	})
}

func nonCompliant(records ...types.ViolationRecord) *validation.Outcome {
	return &validation.Outcome{Violations: records, Report: "<report/>"}
}

func compliant() *validation.Outcome {
	return &validation.Outcome{Compliant: true, Violations: []types.ViolationRecord{}}
}

type fakeStore struct {
	mu         sync.Mutex
	created    []uuid.UUID
	createErr  error
	steps      []db.RunStepInput
	artifacts  map[string]any
	completion *db.RunCompletion
}

func newFakeStore() *fakeStore {
	return &fakeStore{artifacts: map[string]any{}}
}

func (f *fakeStore) CreateRun(_ context.Context, runID uuid.UUID, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, runID)
	return nil
}

func (f *fakeStore) SaveArtifact(_ context.Context, _ uuid.UUID, step, _ string, content any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[step] = content
	return nil
}

func (f *fakeStore) SaveTextArtifact(_ context.Context, _ uuid.UUID, step, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[step] = text
	return nil
}

func (f *fakeStore) RecordStep(_ context.Context, _ uuid.UUID, input db.RunStepInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, input)
	return nil
}

func (f *fakeStore) CompleteRun(_ context.Context, _ uuid.UUID, c db.RunCompletion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completion = &c
	return nil
}

type OrchestratorSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	eng  *mocks.MockEngine
	doc  *mocks.MockDocument
	cmd  *mocks.MockCommand
	opts RunOptions
}

func (s *OrchestratorSuite) newHarness() *harness {
	ctrl := gomock.NewController(s.T())
	dir := s.T().TempDir()
	return &harness{
		eng: mocks.NewMockEngine(ctrl),
		doc: mocks.NewMockDocument(ctrl),
		cmd: mocks.NewMockCommand(ctrl),
		opts: RunOptions{
			InputPath:    filepath.Join(dir, "example.pdf"),
			ValidatePath: filepath.Join(dir, "out", "validate.pdf"),
			OutputPath:   filepath.Join(dir, "out", "tagged.pdf"),
			ActionsPath:  filepath.Join(dir, "out", "actions.json"),
		},
	}
}

func (h *harness) expectOpenAndTag() {
	h.eng.EXPECT().OpenDoc(h.opts.InputPath, "").Return(h.doc, nil)
	h.doc.EXPECT().AddTags(engine.TagsParams{Standard: DefaultTagsStandard}).Return(nil)
	h.doc.EXPECT().Close().Return(nil)
}

func (h *harness) expectSubmission(runErr error) *[]byte {
	var payload []byte
	h.eng.EXPECT().CreateMemStream().Return(engine.NewMemStream())
	h.doc.EXPECT().Command().Return(h.cmd)
	h.cmd.EXPECT().LoadParamsFromStream(gomock.Any(), engine.DataFormatJSON).
		DoAndReturn(func(stm engine.MemStream, _ engine.DataFormat) error {
			var err error
			payload, err = engine.ReadAll(stm)
			return err
		})
	h.cmd.EXPECT().Run(gomock.Any()).Return(runErr)
	return &payload
}

func (s *OrchestratorSuite) TestRun() {
	s.Run("fixes violations and reaches Done", func() {
		h := s.newHarness()
		h.expectOpenAndTag()
		gomock.InOrder(
			h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil),
			h.doc.EXPECT().Save(h.opts.OutputPath, engine.SaveFull).Return(nil),
		)
		payload := h.expectSubmission(nil)

		v, calls := scriptedValidator(
			nonCompliant(violation("5"), violation("7.1"), violation("7.1"), violation("7.2")),
			compliant(),
		)
		store := newFakeStore()
		metrics := observability.NewMetrics()
		var events []ProgressEvent
		h.opts.OnProgress = func(e ProgressEvent) { events = append(events, e) }

		o := New(h.eng, v, WithLogger(s.logger), WithStore(store), WithMetrics(metrics))
		res, err := o.Run(context.Background(), h.opts)
		s.Require().NoError(err)

		s.Equal(StateDone, res.State)
		s.True(res.Compliant())
		s.Len(res.InitialViolations, 4)
		s.Empty(res.FinalViolations)
		s.Equal([]string{repair.ActionSetPDFUAStandard, repair.ActionSetDisplayDocTitle, repair.ActionSetLanguage}, res.Plan.Names())
		s.Equal([]string{h.opts.ValidatePath, h.opts.OutputPath}, *calls)
		s.JSONEq(`{"actions":[
			{"name":"set_pdf_ua_standard","params":[{"name":"part_number","value":1}]},
			{"name":"set_display_doc_title"},
			{"name":"set_language","params":[{"name":"lang","value":"en-US"},{"name":"apply_lang_to","value":0}]}
		]}`, string(*payload))
		s.FileExists(h.opts.ActionsPath)

		var stages []string
		for _, st := range res.Stages {
			stages = append(stages, st.State)
		}
		s.Equal([]string{"Opened", "Tagged", "Validated1", "Fixed", "Validated2"}, stages)

		var steps []string
		for _, e := range events {
			steps = append(steps, e.Step)
			s.Equal(res.RunID.String(), e.RunID)
		}
		s.Equal([]string{"Opened", "Tagged", "Validated1", "Fixed", "Validated2", "Done"}, steps)

		s.Require().Len(store.created, 1)
		s.Equal(res.RunID, store.created[0])
		s.Len(store.steps, 5)
		for _, st := range store.steps {
			s.Equal(db.StepStatusCompleted, st.Status)
		}
		s.Contains(store.artifacts, db.StepInitialReport)
		s.Contains(store.artifacts, db.StepInitialViolations)
		s.Contains(store.artifacts, db.StepActionPlan)
		s.Contains(store.artifacts, db.StepFinalViolations)
		s.Require().NotNil(store.completion)
		s.Equal(db.RunStatusCompliant, store.completion.Status)
		s.Equal(4, store.completion.InitialViolations)
		s.Equal(0, store.completion.FinalViolations)

		s.Equal(1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(db.RunStatusCompliant)))
		s.Equal(1.0, testutil.ToFloat64(metrics.ActionsApplied.WithLabelValues(repair.ActionSetLanguage)))
	})

	s.Run("compliant input never submits a plan", func() {
		h := s.newHarness()
		h.expectOpenAndTag()
		h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil)
		h.doc.EXPECT().Save(h.opts.OutputPath, engine.SaveFull).Return(nil)
		// no CreateMemStream or Command expectations: any call fails the test

		v, _ := scriptedValidator(compliant(), compliant())
		res, err := New(h.eng, v, WithLogger(s.logger)).Run(context.Background(), h.opts)
		s.Require().NoError(err)
		s.Equal(StateDone, res.State)
		s.True(res.Plan.Empty())
		s.NoFileExists(h.opts.ActionsPath)
	})

	s.Run("unmapped violations leave the run non-compliant", func() {
		h := s.newHarness()
		h.expectOpenAndTag()
		h.doc.EXPECT().Save(gomock.Any(), engine.SaveFull).Return(nil).Times(2)

		other := types.NewViolationRecord(map[string]string{
			types.AttrSpecification: repair.SupportedSpecification,
			types.AttrClause:        "7.18.1",
		})
		v, _ := scriptedValidator(nonCompliant(other), nonCompliant(other))
		store := newFakeStore()
		res, err := New(h.eng, v, WithLogger(s.logger), WithStore(store)).Run(context.Background(), h.opts)
		s.Require().NoError(err)
		s.Equal(StateDone, res.State)
		s.False(res.Compliant())
		s.Len(res.FinalViolations, 1)
		s.Equal(db.RunStatusNonCompliant, store.completion.Status)
	})
}

func (s *OrchestratorSuite) TestRunFailures() {
	openErr := &engine.OpenError{Path: "example.pdf", Cause: os.ErrNotExist}
	tagErr := &engine.TaggingError{Message: "document has no pages"}
	saveErr := &engine.SaveError{Path: "validate.pdf", Cause: os.ErrPermission}
	toolErr := &validation.ToolInvocationError{Path: "validate.pdf", ExitCode: 2, Stderr: "boom"}
	cmdErr := &engine.CommandError{Action: repair.ActionSetLanguage, Message: "action failed"}

	tests := []struct {
		name      string
		setup     func(h *harness)
		validator func() validation.Validator
		failed    State
		reached   State
		cause     error
	}{
		{
			name: "open",
			setup: func(h *harness) {
				h.eng.EXPECT().OpenDoc(gomock.Any(), gomock.Any()).Return(nil, openErr)
			},
			failed:  StateOpened,
			reached: StateInit,
			cause:   openErr,
		},
		{
			name: "tag",
			setup: func(h *harness) {
				h.eng.EXPECT().OpenDoc(gomock.Any(), gomock.Any()).Return(h.doc, nil)
				h.doc.EXPECT().AddTags(gomock.Any()).Return(tagErr)
				h.doc.EXPECT().Close().Return(nil)
			},
			failed:  StateTagged,
			reached: StateOpened,
			cause:   tagErr,
		},
		{
			name: "intermediate save",
			setup: func(h *harness) {
				h.expectOpenAndTag()
				h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(saveErr)
			},
			failed:  StateValidated1,
			reached: StateTagged,
			cause:   saveErr,
		},
		{
			name: "first validation",
			setup: func(h *harness) {
				h.expectOpenAndTag()
				h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil)
			},
			validator: func() validation.Validator {
				return validatorFunc(func(context.Context, string) (*validation.Outcome, error) {
					return nil, toolErr
				})
			},
			failed:  StateValidated1,
			reached: StateTagged,
			cause:   toolErr,
		},
		{
			name: "submission",
			setup: func(h *harness) {
				h.expectOpenAndTag()
				h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil)
				h.expectSubmission(cmdErr)
			},
			failed:  StateFixed,
			reached: StateValidated1,
			cause:   cmdErr,
		},
		{
			name: "final save",
			setup: func(h *harness) {
				h.expectOpenAndTag()
				h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil)
				h.expectSubmission(nil)
				h.doc.EXPECT().Save(h.opts.OutputPath, engine.SaveFull).Return(saveErr)
			},
			failed:  StateFixed,
			reached: StateValidated1,
			cause:   saveErr,
		},
		{
			name: "second validation",
			setup: func(h *harness) {
				h.expectOpenAndTag()
				h.doc.EXPECT().Save(gomock.Any(), engine.SaveFull).Return(nil).Times(2)
				h.expectSubmission(nil)
			},
			validator: func() validation.Validator {
				calls := 0
				return validatorFunc(func(_ context.Context, path string) (*validation.Outcome, error) {
					calls++
					if calls == 1 {
						return nonCompliant(violation("7.2")), nil
					}
					return nil, toolErr
				})
			},
			failed:  StateValidated2,
			reached: StateFixed,
			cause:   toolErr,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			h := s.newHarness()
			tt.setup(h)

			var v validation.Validator
			if tt.validator != nil {
				v = tt.validator()
			} else {
				v, _ = scriptedValidator(nonCompliant(violation("7.2")), compliant())
			}
			store := newFakeStore()
			metrics := observability.NewMetrics()

			res, err := New(h.eng, v, WithLogger(s.logger), WithStore(store), WithMetrics(metrics)).
				Run(context.Background(), h.opts)
			s.Require().Error(err)

			var stageErr *StageError
			s.Require().ErrorAs(err, &stageErr)
			s.Equal(tt.failed, stageErr.State)
			s.ErrorIs(err, tt.cause)
			s.Equal(tt.reached, res.State)
			s.False(res.Compliant())

			s.Require().NotEmpty(store.steps)
			last := store.steps[len(store.steps)-1]
			s.Equal(tt.failed.String(), last.State)
			s.Equal(db.StepStatusFailed, last.Status)
			s.Require().NotNil(store.completion)
			s.Equal(db.RunStatusFailed, store.completion.Status)
			s.Equal(err.Error(), store.completion.ErrorMessage)
			s.Equal(1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(db.RunStatusFailed)))
			s.Equal(err.Error(), res.Summary().Error)
		})
	}
}

func (s *OrchestratorSuite) TestSubmissionErrorKeepsStep() {
	h := s.newHarness()
	h.expectOpenAndTag()
	h.doc.EXPECT().Save(h.opts.ValidatePath, engine.SaveFull).Return(nil)
	h.expectSubmission(errors.New("engine crashed"))

	v, _ := scriptedValidator(nonCompliant(violation("5")))
	_, err := New(h.eng, v, WithLogger(s.logger)).Run(context.Background(), h.opts)

	var subErr *repair.SubmissionError
	s.Require().ErrorAs(err, &subErr)
	s.Equal(repair.StepRun, subErr.Step)
	s.Contains(err.Error(), "failed entering Fixed")
}

func (s *OrchestratorSuite) TestStoreFailureIsNotFatal() {
	h := s.newHarness()
	h.expectOpenAndTag()
	h.doc.EXPECT().Save(gomock.Any(), engine.SaveFull).Return(nil).Times(2)

	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	v, _ := scriptedValidator(compliant(), compliant())

	res, err := New(h.eng, v, WithLogger(s.logger), WithStore(store)).Run(context.Background(), h.opts)
	s.Require().NoError(err)
	s.Equal(StateDone, res.State)
	s.Empty(store.steps)
	s.Empty(store.artifacts)
	s.Nil(store.completion)
}

func (s *OrchestratorSuite) TestMissingPaths() {
	h := s.newHarness()
	v, _ := scriptedValidator()

	res, err := New(h.eng, v).Run(context.Background(), RunOptions{InputPath: "in.pdf"})
	s.Require().Error(err)
	s.Equal(StateInit, res.State)
	s.Contains(err.Error(), "validate path")
}

func (s *OrchestratorSuite) TestPrinterOutput() {
	h := s.newHarness()
	h.expectOpenAndTag()
	h.doc.EXPECT().Save(gomock.Any(), engine.SaveFull).Return(nil).Times(2)
	h.expectSubmission(nil)

	var out bytes.Buffer
	v, _ := scriptedValidator(nonCompliant(violation("7.1")), compliant())
	_, err := New(h.eng, v, WithLogger(s.logger), WithPrinter(observability.NewPrinter(&out))).
		Run(context.Background(), h.opts)
	s.Require().NoError(err)

	s.Contains(out.String(), "PDF/UA VIOLATIONS")
	s.Contains(out.String(), "ACTION PLAN")
	s.Contains(out.String(), "NO VIOLATIONS FOUND")
	s.Contains(out.String(), "RUN SUMMARY (COMPLIANT)")
}

func (s *OrchestratorSuite) TestStateNames() {
	s.Equal("Validated1", StateValidated1.String())
	s.Equal("Done", StateDone.String())
	s.Equal("State(42)", State(42).String())

	err := &StageError{State: StateTagged, Cause: errors.New("no pages")}
	s.Equal("failed entering Tagged: no pages", err.Error())
}
