// Package audit persists a ledger of import runs in PostgreSQL, mirroring
// the summary returned to the caller so past ingestions can be reviewed
// after the fact. The ledger is optional: a nil Recorder no-ops.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is one recorded import run.
type Run struct {
	ID        uuid.UUID     `json:"id"`
	FileName  string        `json:"fileName"`
	RowsRead  int           `json:"rowsRead"`
	Created   int           `json:"created"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"startedAt"`
}

// Recorder writes and reads the import_runs ledger.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder wraps a connection pool. Pass nil for a disabled recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	if pool == nil {
		return nil
	}
	return &Recorder{pool: pool}
}

// EnsureSchema creates the ledger table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if r == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS import_runs (
			id          UUID PRIMARY KEY,
			file_name   TEXT NOT NULL,
			rows_read   INTEGER NOT NULL,
			created     INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensuring import_runs schema: %w", err)
	}
	return nil
}

// Record inserts one run into the ledger.
func (r *Recorder) Record(ctx context.Context, run Run) error {
	if r == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO import_runs (id, file_name, rows_read, created, skipped, failed, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.FileName, run.RowsRead, run.Created, run.Skipped, run.Failed,
		run.Duration.Milliseconds(), run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("recording import run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	if r == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, rows_read, created, skipped, failed, duration_ms, started_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		if err := rows.Scan(&run.ID, &run.FileName, &run.RowsRead, &run.Created,
			&run.Skipped, &run.Failed, &durationMs, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning import run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading import runs: %w", err)
	}

	return runs, nil
}
