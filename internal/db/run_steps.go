package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordStep stores the outcome of one state transition
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, input RunStepInput) error {
	var errMsg *string
	if input.Error != "" {
		errMsg = &input.Error
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pdfua_run_steps (run_id, state, status, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, input.State, input.Status, input.Duration.Milliseconds(), errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", input.State, err)
	}
	return nil
}

// ListRunSteps retrieves the steps of a run in execution order
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, state, status, duration_ms, error_message, created_at
		 FROM pdfua_run_steps
		 WHERE run_id = $1
		 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var s RunStep
		if err := rows.Scan(&s.ID, &s.RunID, &s.State, &s.Status, &s.DurationMs, &s.ErrorMessage, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	return steps, nil
}
