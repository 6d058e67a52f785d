package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/pdfua-remediator/internal/types"
	"github.com/stretchr/testify/assert"
)

func record(spec, clause string) types.ViolationRecord {
	return types.NewViolationRecord(map[string]string{"specification": spec, "clause": clause})
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintViolations(&types.Violations{
		Path: "pdf/validate.pdf",
		Violations: []types.ViolationRecord{
			record("ISO 14289-1:2014", "7.1"),
			record("ISO 14289-1:2014", "7.2"),
			record("ISO 14289-1:2014", "7.1"),
		},
	})
	output := buf.String()

	assert.Contains(t, output, "PDF/UA VIOLATIONS")
	assert.Contains(t, output, "pdf/validate.pdf")
	assert.Contains(t, output, "Found 3 violations in 2 clauses")
	assert.Contains(t, output, "clause 7.1  x2")
	assert.Contains(t, output, "clause 7.2  x1")
	assert.Less(t, strings.Index(output, "clause 7.1"), strings.Index(output, "clause 7.2"))
}

func TestPrintViolations_NoViolations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintViolations(nil)
	assert.Contains(t, buf.String(), "NO VIOLATIONS FOUND")

	buf.Reset()
	p.PrintViolations(&types.Violations{Compliant: true})
	assert.Contains(t, buf.String(), "NO VIOLATIONS FOUND")
}

func TestPrintViolations_TruncatesClauseList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	v := &types.Violations{}
	for _, c := range []string{"5", "6.1", "6.2", "7.1", "7.2", "7.3", "7.4"} {
		v.Violations = append(v.Violations, record("ISO 14289-1:2014", c))
	}
	p.PrintViolations(v)

	assert.Contains(t, buf.String(), "... and 2 more clauses")
	assert.NotContains(t, buf.String(), "clause 7.4")
}

func TestPrintViolations_MissingSpecification(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintViolations(&types.Violations{Violations: []types.ViolationRecord{types.NewViolationRecord(nil)}})
	assert.Contains(t, buf.String(), "(unknown standard)")
}

func TestPrintActionPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintActionPlan(&types.ActionPlan{Actions: []types.FixAction{
		types.NewFixAction("set_display_doc_title"),
		types.NewFixAction("set_language",
			types.ActionParam{Name: "lang", Value: types.StringValue("en-US")},
			types.ActionParam{Name: "apply_lang_to", Value: types.IntValue(0)},
		),
	}})
	output := buf.String()

	assert.Contains(t, output, "ACTION PLAN")
	assert.Contains(t, output, "Planned 2 actions")
	assert.Contains(t, output, "• set_display_doc_title")
	assert.Contains(t, output, `lang = "en-US"`)
	assert.Contains(t, output, "apply_lang_to = 0")
}

func TestPrintActionPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintActionPlan(&types.ActionPlan{})
	assert.Contains(t, buf.String(), "NO FIX NEEDED")
}

func TestPrintRunSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary *types.RunSummary
		title   string
	}{
		{
			name:    "compliant",
			summary: &types.RunSummary{RunID: "r1", InitialViolations: 3, Actions: []string{"set_language"}},
			title:   "RUN SUMMARY (COMPLIANT)",
		},
		{
			name:    "remaining violations",
			summary: &types.RunSummary{RunID: "r2", InitialViolations: 3, FinalViolations: 1},
			title:   "RUN SUMMARY",
		},
		{
			name:    "failed",
			summary: &types.RunSummary{RunID: "r3", Error: "boom"},
			title:   "RUN SUMMARY (FAILED)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintRunSummary(tt.summary)
			assert.Contains(t, buf.String(), tt.title)
			assert.Contains(t, buf.String(), tt.summary.RunID)
		})
	}
}

func TestPrintRunSummary_Details(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(&types.RunSummary{
		RunID:             "run-1",
		Input:             "pdf/example.pdf",
		Output:            "pdf/tagged.pdf",
		InitialViolations: 4,
		FinalViolations:   0,
		Actions:           []string{"set_pdf_ua_standard", "set_language"},
		Stages:            []types.StageTiming{{State: "Tagged", Duration: 1500 * time.Millisecond}},
		Duration:          2 * time.Second,
	})
	output := buf.String()

	assert.Contains(t, output, "Violations: 4 before, 0 after")
	assert.Contains(t, output, "set_pdf_ua_standard, set_language")
	assert.Contains(t, output, "Tagged")
	assert.Contains(t, output, "1.5s")
	assert.Contains(t, output, "Total:    2s")
}

func TestPrintRunSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 60))
}
