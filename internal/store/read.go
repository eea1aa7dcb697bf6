package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/reactor/internal/trace"
)

const runColumns = `id, scenario, runtime, workers, input, result, instants, digest, pass, created_at`

// ReadRun retrieves a single run by id.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ReadEvents returns the trace of a run in canonical order.
//
// Returns an empty slice (not nil) if the run recorded no events. An
// unknown run id also yields an empty slice; use ReadRun to tell the two
// apart.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]trace.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instant, label, value
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var ev trace.Event
		if err := rows.Scan(&ev.Instant, &ev.Label, &ev.Value); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ListRuns returns recorded runs ordered by scenario, then id.
// An empty scenario lists every run. Returns an empty slice (not nil) when
// nothing matches.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY scenario ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		result    sql.NullInt64
		pass      int
		createdAt string
	)
	err := row.Scan(
		&run.ID,
		&run.Scenario,
		&run.Runtime,
		&run.Workers,
		&run.Input,
		&result,
		&run.Instants,
		&run.Digest,
		&pass,
		&createdAt,
	)
	if err != nil {
		return Run{}, err
	}

	if result.Valid {
		v := result.Int64
		run.Result = &v
	}
	run.Pass = pass != 0
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Run{}, fmt.Errorf("parse created_at of run %s: %w", run.ID, err)
	}
	return run, nil
}
