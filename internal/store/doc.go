// Package store provides SQLite-backed storage for recorded scenario runs.
//
// A run row captures how a scenario was executed (runtime kind, workers,
// input) and what it produced (result, instant count, pass/fail and the
// trace digest). Its events are stored alongside in canonical trace order,
// so a stored trace re-digests to the recorded digest.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - A single open connection
//
// Schema changes are applied through PRAGMA user_version migrations.
//
// # Usage
//
//	s, err := store.Open("runs.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	run := store.Run{ID: store.UUIDv7Generator{}.Generate(), Scenario: "s1", ...}
//	if err := s.WriteRun(ctx, run, events); err != nil {
//	    return err
//	}
package store
