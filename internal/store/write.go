package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/reactor/internal/trace"
)

// WriteRun records a run and its trace in a single transaction.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing a run id that
// already exists is a no-op and its events are left untouched. Events are
// stored in canonical trace order. An empty run.Digest is computed from
// events; a non-empty one must match.
func (s *Store) WriteRun(ctx context.Context, run Run, events []trace.Event) error {
	if run.ID == "" {
		return fmt.Errorf("write run: empty id")
	}

	sorted := slices.Clone(events)
	trace.Sort(sorted)

	digest, err := trace.Digest(sorted)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	if run.Digest == "" {
		run.Digest = digest
	} else if run.Digest != digest {
		return fmt.Errorf("write run %s: digest %s does not match trace digest %s", run.ID, run.Digest, digest)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin tx: %w", run.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, runtime, workers, input, result, instants, digest, pass, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.Runtime,
		run.Workers,
		run.Input,
		run.Result,
		run.Instants,
		run.Digest,
		boolToInt(run.Pass),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run %s: insert: %w", run.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run %s: rows affected: %w", run.ID, err)
	}
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, instant, label, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: prepare events: %w", run.ID, err)
	}
	defer stmt.Close()

	for i, ev := range sorted {
		if _, err := stmt.ExecContext(ctx, run.ID, i, ev.Instant, ev.Label, ev.Value); err != nil {
			return fmt.Errorf("write run %s: event %d: %w", run.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
