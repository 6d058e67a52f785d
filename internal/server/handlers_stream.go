package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/pdfua-remediator/internal/db"
	"github.com/jonathan/pdfua-remediator/internal/pipeline"
)

// RunRequest is the body of POST /runs/stream. Paths are relative to the server root.
type RunRequest struct {
	Input        string `json:"input" validate:"required"`
	ValidatePath string `json:"validate_path,omitempty"`
	Output       string `json:"output" validate:"required"`
	ActionsPath  string `json:"actions_path,omitempty"`
	Password     string `json:"password,omitempty"`
	TagsStandard string `json:"tags_standard,omitempty"`
}

// runComplete is the payload of the final "complete" event
type runComplete struct {
	RunID             string   `json:"run_id"`
	Status            string   `json:"status"`
	Output            string   `json:"output"`
	InitialViolations int      `json:"initial_violations"`
	FinalViolations   int      `json:"final_violations"`
	Actions           []string `json:"actions"`
	DurationMs        int64    `json:"duration_ms"`
}

// resolvePath joins a request path onto the server root, rejecting anything that leaves it,
// including through symlinks
func (s *Server) resolvePath(field, p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if !filepath.IsLocal(p) {
		return "", &ErrValidation{Field: field, Message: "path must be relative and stay inside the server root"}
	}
	joined := filepath.Join(s.root, p)
	if err := s.confined(joined); err != nil {
		return "", &ErrValidation{Field: field, Message: err.Error()}
	}
	return joined, nil
}

// confined resolves symlinks on the longest existing prefix of path and checks the
// result is still under the root. Components that do not exist yet cannot be links.
func (s *Server) confined(path string) error {
	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return errors.New("server root unavailable")
	}

	existing, rest := path, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return errors.New("path not found")
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return errors.New("path cannot be resolved")
	}
	rel, err := filepath.Rel(root, filepath.Join(resolved, rest))
	if err != nil || (rel != "." && !filepath.IsLocal(rel)) {
		return errors.New("path must stay inside the server root")
	}
	return nil
}

// options converts the request into pipeline options
func (s *Server) options(req RunRequest) (pipeline.RunOptions, error) {
	if err := validator.New().Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return pipeline.RunOptions{}, &ErrValidation{
				Field:   strings.ToLower(fieldErrs[0].Field()),
				Message: "is required",
			}
		}
		return pipeline.RunOptions{}, &ErrValidation{Field: "body", Message: err.Error()}
	}

	opts := pipeline.RunOptions{Password: req.Password, TagsStandard: req.TagsStandard}
	var err error
	if opts.InputPath, err = s.resolvePath("input", req.Input); err != nil {
		return opts, err
	}
	if opts.OutputPath, err = s.resolvePath("output", req.Output); err != nil {
		return opts, err
	}
	if req.ValidatePath == "" {
		req.ValidatePath = strings.TrimSuffix(req.Output, filepath.Ext(req.Output)) + ".validate.pdf"
	}
	if opts.ValidatePath, err = s.resolvePath("validate_path", req.ValidatePath); err != nil {
		return opts, err
	}
	if opts.ActionsPath, err = s.resolvePath("actions_path", req.ActionsPath); err != nil {
		return opts, err
	}

	if _, statErr := os.Stat(opts.InputPath); statErr != nil {
		return opts, &ErrValidation{Field: "input", Message: "file not found"}
	}
	return opts, nil
}

// handleRunStream runs the remediation pipeline and streams progress as SSE
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	stream, err := openRunStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if writeErr := stream.progress(event); writeErr != nil {
			s.logger.Debug("failed to write progress event", "error", writeErr)
		}
	}

	s.logger.Info("starting run", "input", opts.InputPath, "output", opts.OutputPath)
	result, err := s.remediator.Run(r.Context(), opts)
	if err != nil {
		s.logger.Warn("run failed", "run_id", result.RunID, "state", result.State, "error", err)
		if writeErr := stream.fail(result, err); writeErr != nil {
			s.logger.Debug("failed to write error event", "error", writeErr)
		}
		return
	}

	writeErr := stream.complete(runComplete{
		RunID:             result.RunID.String(),
		Status:            db.StatusFor(len(result.FinalViolations), nil),
		Output:            req.Output,
		InitialViolations: len(result.InitialViolations),
		FinalViolations:   len(result.FinalViolations),
		Actions:           result.Plan.Names(),
		DurationMs:        result.Duration.Milliseconds(),
	})
	if writeErr != nil {
		s.logger.Debug("failed to write complete event", "error", writeErr)
	}
}
