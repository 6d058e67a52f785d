package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/pdfua-remediator/internal/db"
)

// artifactSteps maps each stored step to whether it is kept as text
var artifactSteps = map[string]bool{
	db.StepInitialReport:     true,
	db.StepInitialViolations: false,
	db.StepActionPlan:        false,
	db.StepFinalReport:       true,
	db.StepFinalViolations:   false,
}

// requireRuns writes 503 when the server has no run ledger
func (s *Server) requireRuns(w http.ResponseWriter) bool {
	if s.runs == nil {
		s.errorResponse(w, HTTPStatus(errNoDatabase), errNoDatabase.Error())
		return false
	}
	return true
}

// parseRunID reads the {id} path value, writing 400 on failure
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return uuid.Nil, false
	}
	return runID, true
}

// handleListRuns returns recent runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns a run with its recorded steps
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to get run", "run_id", runID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	steps, err := s.runs.ListRunSteps(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to list run steps", "run_id", runID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get run steps")
		return
	}
	if steps == nil {
		steps = []db.RunStep{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run":   run,
		"steps": steps,
	})
}

// handleDeleteRun removes a run and everything recorded for it
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), runID)
	if err != nil {
		s.logger.Error("failed to get run", "run_id", runID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	if err := s.runs.DeleteRun(r.Context(), runID); err != nil {
		s.logger.Error("failed to delete run", "run_id", runID, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"run_id": runID.String(),
	})
}

// handleRunArtifact returns one stored artifact. Validator reports are served as XML.
func (s *Server) handleRunArtifact(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	step := r.PathValue("step")
	isText, known := artifactSteps[step]
	if !known {
		s.errorResponse(w, http.StatusNotFound, "Unknown artifact step: "+step)
		return
	}

	if isText {
		text, err := s.runs.GetTextArtifact(r.Context(), runID, step)
		if err != nil {
			s.logger.Error("failed to get artifact", "run_id", runID, "step", step, "error", err)
			s.errorResponse(w, http.StatusInternalServerError, "Failed to get artifact")
			return
		}
		if text == "" {
			s.errorResponse(w, http.StatusNotFound, "Artifact not found")
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}

	content, err := s.runs.GetArtifact(r.Context(), runID, step)
	if err != nil {
		s.logger.Error("failed to get artifact", "run_id", runID, "step", step, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get artifact")
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "Artifact not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
