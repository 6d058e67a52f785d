package repair

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonathan/pdfua-remediator/internal/engine"
	"github.com/jonathan/pdfua-remediator/internal/engine/mocks"
	"github.com/jonathan/pdfua-remediator/internal/types"
)

func samplePlan() *types.ActionPlan {
	return ProposeFixes([]types.ViolationRecord{
		rec(SupportedSpecification, "5"),
		rec(SupportedSpecification, "7.1"),
	})
}

type engineMocks struct {
	eng    *mocks.MockEngine
	doc    *mocks.MockDocument
	cmd    *mocks.MockCommand
	stream *mocks.MockMemStream
}

func newEngineMocks(t *testing.T) engineMocks {
	ctrl := gomock.NewController(t)
	return engineMocks{
		eng:    mocks.NewMockEngine(ctrl),
		doc:    mocks.NewMockDocument(ctrl),
		cmd:    mocks.NewMockCommand(ctrl),
		stream: mocks.NewMockMemStream(ctrl),
	}
}

func TestApplyFixes_Success(t *testing.T) {
	m := newEngineMocks(t)
	plan := samplePlan()
	audit := filepath.Join(t.TempDir(), "pdf", "actions.json")

	var written []byte
	gomock.InOrder(
		m.eng.EXPECT().CreateMemStream().Return(m.stream),
		m.stream.EXPECT().Write(0, gomock.Any()).DoAndReturn(func(_ int, data []byte) error {
			written = append([]byte(nil), data...)
			return nil
		}),
		m.doc.EXPECT().Command().Return(m.cmd),
		m.cmd.EXPECT().LoadParamsFromStream(m.stream, engine.DataFormatJSON).Return(nil),
		m.cmd.EXPECT().Run(gomock.Any()).Return(nil),
		m.stream.EXPECT().Destroy(),
	)

	err := ApplyFixes(context.Background(), m.eng, m.doc, plan, ApplyOptions{AuditPath: audit})
	require.NoError(t, err)

	var submitted types.ActionPlan
	require.NoError(t, json.Unmarshal(written, &submitted))
	assert.Equal(t, plan.Actions, submitted.Actions)

	saved, err := os.ReadFile(audit)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(saved), "{\n    \"actions\": ["), "audit copy should be indented with four spaces")
}

func TestApplyFixes_EmptyPlanIsNoop(t *testing.T) {
	m := newEngineMocks(t)
	audit := filepath.Join(t.TempDir(), "actions.json")

	// no expectations: any engine call fails the test
	require.NoError(t, ApplyFixes(context.Background(), m.eng, m.doc, &types.ActionPlan{}, ApplyOptions{AuditPath: audit}))
	require.NoError(t, ApplyFixes(context.Background(), m.eng, m.doc, nil, ApplyOptions{AuditPath: audit}))

	_, err := os.Stat(audit)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyFixes_FailureSteps(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(m engineMocks)
		step  string
	}{
		{
			name: "write",
			setup: func(m engineMocks) {
				m.eng.EXPECT().CreateMemStream().Return(m.stream)
				m.stream.EXPECT().Write(0, gomock.Any()).Return(boom)
				m.stream.EXPECT().Destroy()
			},
			step: StepWrite,
		},
		{
			name: "load",
			setup: func(m engineMocks) {
				m.eng.EXPECT().CreateMemStream().Return(m.stream)
				m.stream.EXPECT().Write(0, gomock.Any()).Return(nil)
				m.doc.EXPECT().Command().Return(m.cmd)
				m.cmd.EXPECT().LoadParamsFromStream(m.stream, engine.DataFormatJSON).Return(boom)
				m.stream.EXPECT().Destroy()
			},
			step: StepLoad,
		},
		{
			name: "run",
			setup: func(m engineMocks) {
				m.eng.EXPECT().CreateMemStream().Return(m.stream)
				m.stream.EXPECT().Write(0, gomock.Any()).Return(nil)
				m.doc.EXPECT().Command().Return(m.cmd)
				m.cmd.EXPECT().LoadParamsFromStream(m.stream, engine.DataFormatJSON).Return(nil)
				m.cmd.EXPECT().Run(gomock.Any()).Return(boom)
				m.stream.EXPECT().Destroy()
			},
			step: StepRun,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newEngineMocks(t)
			tt.setup(m)

			err := ApplyFixes(context.Background(), m.eng, m.doc, samplePlan(), ApplyOptions{})
			require.Error(t, err)

			var subErr *SubmissionError
			require.True(t, errors.As(err, &subErr))
			assert.Equal(t, tt.step, subErr.Step)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestApplyFixes_InvalidPlanNeverReachesEngine(t *testing.T) {
	m := newEngineMocks(t)
	plan := &types.ActionPlan{Actions: []types.FixAction{types.NewFixAction("")}}

	err := ApplyFixes(context.Background(), m.eng, m.doc, plan, ApplyOptions{})

	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, StepSerialize, subErr.Step)
}

func TestApplyFixes_AuditFailureIsNotFatal(t *testing.T) {
	m := newEngineMocks(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	m.eng.EXPECT().CreateMemStream().Return(engine.NewMemStream())
	m.doc.EXPECT().Command().Return(m.cmd)
	m.cmd.EXPECT().LoadParamsFromStream(gomock.Any(), engine.DataFormatJSON).Return(nil)
	m.cmd.EXPECT().Run(gomock.Any()).Return(nil)

	err := ApplyFixes(context.Background(), m.eng, m.doc, samplePlan(), ApplyOptions{
		AuditPath: filepath.Join(blocker, "actions.json"),
	})
	assert.NoError(t, err)
}

func TestSavePlanAndLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.json")
	plan := ProposeFixes([]types.ViolationRecord{
		rec(SupportedSpecification, "7.2"),
		rec(SupportedSpecification, "5"),
	})

	require.NoError(t, SavePlan(path, plan))

	loaded, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, plan.Actions, loaded.Actions)
}

func TestSavePlan_NilWritesEmptyEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.json")
	require.NoError(t, SavePlan(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actions":[]}`, string(data))
}

func TestLoadPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: "{"},
		{name: "wrong shape", content: `{"fixes":[]}`},
		{name: "float value", content: `{"actions":[{"name":"a","params":[{"name":"n","value":1.5}]}]}`},
		{name: "duplicate names", content: `{"actions":[{"name":"set_display_doc_title"},{"name":"set_display_doc_title"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "actions.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadPlan(path)
			var fileErr *PlanFileError
			require.True(t, errors.As(err, &fileErr), "got %v", err)
			assert.Equal(t, path, fileErr.Path)
		})
	}

	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.json"))
	var fileErr *PlanFileError
	assert.True(t, errors.As(err, &fileErr))
}

func TestSubmissionError_Message(t *testing.T) {
	err := &SubmissionError{Step: StepLoad, Message: "engine rejected action plan", Cause: errors.New("bad")}
	assert.Equal(t, "plan submission error (load): engine rejected action plan: bad", err.Error())

	err = &SubmissionError{Step: StepRun, Message: "x"}
	assert.Equal(t, "plan submission error (run): x", err.Error())
}
