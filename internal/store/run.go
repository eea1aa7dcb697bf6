package store

import (
	"time"
)

// Runtime kinds recorded for a run.
const (
	RuntimeSequential = "sequential"
	RuntimeParallel   = "parallel"
)

// Run is one recorded execution of a scenario.
//
// Result is nil when the program never produced a value. Digest is the
// trace digest of the run's events; WriteRun fills it in when empty.
type Run struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	Runtime   string    `json:"runtime"`
	Workers   int       `json:"workers,omitempty"`
	Input     int64     `json:"input"`
	Result    *int64    `json:"result,omitempty"`
	Instants  int64     `json:"instants"`
	Digest    string    `json:"digest"`
	Pass      bool      `json:"pass"`
	CreatedAt time.Time `json:"created_at"`
}
