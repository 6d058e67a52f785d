package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jonathan/pdfua-remediator/internal/observability"
	"github.com/jonathan/pdfua-remediator/internal/report"
	"github.com/jonathan/pdfua-remediator/internal/types"
)

const (
	// DefaultCommand is the validator executable looked up in PATH
	DefaultCommand = "verapdf"
	// DefaultFlavour is the PDF/UA validation profile
	DefaultFlavour = "ua1"
	// DefaultTimeout bounds a single validator run
	DefaultTimeout = 5 * time.Minute

	// waitDelay bounds how long output pipes are drained after the process is killed
	waitDelay = 5 * time.Second
)

// Exit codes of the validator
const (
	exitCompliant  = 0
	exitViolations = 1
)

// Validator checks a PDF file and reports its violations
type Validator interface {
	Run(ctx context.Context, pdfPath string) (*Outcome, error)
}

// Outcome is the result of one successful validator run. A run that found
// violations is still successful.
type Outcome struct {
	Path       string
	Compliant  bool
	Violations []types.ViolationRecord
	Report     string
	Duration   time.Duration
}

// Summary converts the outcome into its serializable form
func (o *Outcome) Summary() types.Violations {
	violations := o.Violations
	if violations == nil {
		violations = []types.ViolationRecord{}
	}
	return types.Violations{Path: o.Path, Compliant: o.Compliant, Violations: violations}
}

// Runner invokes the validator as `<command> --flavour <flavour> --format xml <pdf>`.
// When Jar is set the command is `java -jar <jar>` instead of Command.
type Runner struct {
	Command []string
	Jar     string
	Flavour string
	// Timeout of zero disables the limit
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// NewRunner returns a runner for the default validator command
func NewRunner() *Runner {
	return &Runner{
		Command: []string{DefaultCommand},
		Flavour: DefaultFlavour,
		Timeout: DefaultTimeout,
	}
}

// argv resolves the executable and its leading arguments
func (r *Runner) argv() (string, []string, error) {
	if r.Jar != "" {
		if _, err := os.Stat(r.Jar); err != nil {
			return "", nil, &ToolNotFoundError{Tool: r.Jar, Cause: err}
		}
		java, err := exec.LookPath("java")
		if err != nil {
			return "", nil, &ToolNotFoundError{Tool: "java", Cause: err}
		}
		return java, []string{"-jar", r.Jar}, nil
	}

	command := r.Command
	if len(command) == 0 {
		command = []string{DefaultCommand}
	}
	bin, err := exec.LookPath(command[0])
	if err != nil {
		return "", nil, &ToolNotFoundError{Tool: command[0], Cause: err}
	}
	return bin, append([]string(nil), command[1:]...), nil
}

// Run validates pdfPath. Exit code 0 means compliant, 1 means violations were
// found and stdout carries the XML report; anything else is a tool failure.
func (r *Runner) Run(ctx context.Context, pdfPath string) (*Outcome, error) {
	logger := observability.OrDiscard(r.Logger)

	bin, args, err := r.argv()
	if err != nil {
		r.Metrics.IncrementValidatorCall("error")
		return nil, err
	}

	flavour := r.Flavour
	if flavour == "" {
		flavour = DefaultFlavour
	}
	args = append(args, "--flavour", flavour, "--format", "xml", pdfPath)

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, bin, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	logger.Debug("running validator", "path", pdfPath, "command", bin, "args", strings.Join(args, " "))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	logger.Debug("validator stdout", "path", pdfPath, "stdout", stdout.String())
	logger.Debug("validator stderr", "path", pdfPath, "stderr", stderr.String())

	exitCode, err := r.exitCode(ctx, runCtx, bin, pdfPath, runErr, stderr.String())
	if err != nil {
		r.Metrics.IncrementValidatorCall("error")
		return nil, err
	}

	outcome := &Outcome{Path: pdfPath, Report: stdout.String(), Duration: elapsed}
	switch exitCode {
	case exitCompliant:
		outcome.Compliant = true
		outcome.Violations = []types.ViolationRecord{}
		r.Metrics.IncrementValidatorCall("compliant")
	case exitViolations:
		records, err := report.Parse(stdout.String())
		if err != nil {
			r.Metrics.IncrementValidatorCall("error")
			return nil, &ReportError{Path: pdfPath, Cause: err}
		}
		outcome.Violations = records
		r.Metrics.IncrementValidatorCall("violations")
		for _, rec := range records {
			logger.Debug("violation", "path", pdfPath, "specification", rec.Specification, "clause", rec.Clause)
		}
	default:
		r.Metrics.IncrementValidatorCall("error")
		return nil, &ToolInvocationError{Path: pdfPath, ExitCode: exitCode, Stderr: stderr.String()}
	}

	logger.Info("validated", "path", pdfPath, "violations", len(outcome.Violations), "duration", elapsed)
	return outcome, nil
}

// exitCode maps the process result to an exit code, or to an error when the
// process did not exit normally.
func (r *Runner) exitCode(parent, runCtx context.Context, bin, pdfPath string, runErr error, stderr string) (int, error) {
	if runErr == nil {
		return exitCompliant, nil
	}

	if parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return 0, &TimeoutError{Path: pdfPath, Timeout: r.Timeout.String()}
	}
	if err := parent.Err(); err != nil {
		return 0, &ToolInvocationError{Path: pdfPath, ExitCode: -1, Stderr: stderr, Cause: err}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return 0, &ToolInvocationError{Path: pdfPath, ExitCode: -1, Stderr: stderr, Cause: runErr}
	}
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, os.ErrNotExist) {
		return 0, &ToolNotFoundError{Tool: bin, Cause: runErr}
	}
	return 0, &ToolInvocationError{Path: pdfPath, ExitCode: -1, Stderr: stderr, Cause: runErr}
}

// Validate runs the validator and returns only the violation records
func (r *Runner) Validate(ctx context.Context, pdfPath string) ([]types.ViolationRecord, error) {
	outcome, err := r.Run(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return outcome.Violations, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// String describes the command line the runner will use
func (r *Runner) String() string {
	if r.Jar != "" {
		return fmt.Sprintf("java -jar %s", r.Jar)
	}
	if len(r.Command) == 0 {
		return DefaultCommand
	}
	return strings.Join(r.Command, " ")
}
