package db

import (
	"context"
	"fmt"
)

// schemaSQL creates the run ledger tables when missing
const schemaSQL = `
CREATE TABLE IF NOT EXISTS pdfua_runs (
    id                 UUID PRIMARY KEY,
    input_path         TEXT NOT NULL,
    output_path        TEXT NOT NULL,
    status             TEXT NOT NULL,
    initial_violations INTEGER,
    final_violations   INTEGER,
    error_message      TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS pdfua_artifacts (
    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    run_id       UUID NOT NULL REFERENCES pdfua_runs(id) ON DELETE CASCADE,
    step         TEXT NOT NULL,
    category     TEXT,
    content      JSONB,
    text_content TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (run_id, step)
);

CREATE TABLE IF NOT EXISTS pdfua_run_steps (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    run_id        UUID NOT NULL REFERENCES pdfua_runs(id) ON DELETE CASCADE,
    state         TEXT NOT NULL,
    status        TEXT NOT NULL,
    duration_ms   BIGINT NOT NULL,
    error_message TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS pdfua_run_steps_run_id_idx ON pdfua_run_steps (run_id);
`

// EnsureSchema creates the ledger tables if they do not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
