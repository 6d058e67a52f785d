// Package observability provides logging, metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/pdfua-remediator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, text)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// PrintViolations outputs the failed rules of one validation pass, grouped by clause.
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations == nil || len(violations.Violations) == 0 {
		p.printBanner("✅ NO VIOLATIONS FOUND")
		return
	}

	type clauseKey struct{ spec, clause string }
	counts := make(map[clauseKey]int)
	order := make([]clauseKey, 0)
	for _, v := range violations.Violations {
		k := clauseKey{v.Specification, v.Clause}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var sb strings.Builder
	if violations.Path != "" {
		sb.WriteString(fmt.Sprintf("File: %s\n", violations.Path))
	}
	sb.WriteString(fmt.Sprintf("Found %d violations in %d clauses:\n\n", len(violations.Violations), len(order)))

	count := min(len(order), maxItemsToShow)
	for i := 0; i < count; i++ {
		k := order[i]
		spec := k.spec
		if spec == "" {
			spec = "(unknown standard)"
		}
		sb.WriteString(fmt.Sprintf("⚠ clause %s  x%d\n", k.clause, counts[k]))
		sb.WriteString(fmt.Sprintf("  %s\n", spec))
	}
	if len(order) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more clauses", len(order)-maxItemsToShow))
	}

	p.printBox("PDF/UA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintActionPlan outputs the planned fixes and their parameters.
func (p *Printer) PrintActionPlan(plan *types.ActionPlan) {
	if plan.Empty() {
		p.printBanner("NO FIX NEEDED")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Planned %d actions:\n\n", len(plan.Actions)))
	for _, a := range plan.Actions {
		sb.WriteString(fmt.Sprintf("• %s\n", a.Name))
		for _, param := range a.Params {
			sb.WriteString(fmt.Sprintf("    %s = %s\n", param.Name, formatParam(param.Value)))
		}
	}

	p.printBox("ACTION PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the outcome of a remediation run.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Input:    %s\n", summary.Input))
	sb.WriteString(fmt.Sprintf("Output:   %s\n", summary.Output))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Violations: %d before, %d after\n", summary.InitialViolations, summary.FinalViolations))
	if len(summary.Actions) > 0 {
		sb.WriteString(fmt.Sprintf("Actions:    %s\n", strings.Join(summary.Actions, ", ")))
	}
	if len(summary.Stages) > 0 {
		sb.WriteString("\n")
		for _, st := range summary.Stages {
			sb.WriteString(fmt.Sprintf("  %-12s %s\n", st.State, st.Duration.Round(time.Millisecond)))
		}
	}
	sb.WriteString(fmt.Sprintf("\nTotal:    %s", summary.Duration.Round(time.Millisecond)))
	if summary.Error != "" {
		sb.WriteString(fmt.Sprintf("\nError:    %s", summary.Error))
	}

	title := "RUN SUMMARY"
	switch {
	case summary.Error != "":
		title = "RUN SUMMARY (FAILED)"
	case summary.FinalViolations == 0:
		title = "RUN SUMMARY (COMPLIANT)"
	}
	p.printBox(title, sb.String())
}

func formatParam(v types.ParamValue) string {
	if n, ok := v.Int(); ok {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%q", v.String())
}
