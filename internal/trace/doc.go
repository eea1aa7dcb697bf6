// Package trace records what a reactive program observed, instant by
// instant, and serializes it deterministically.
//
// Programs record events through a Recorder from any worker goroutine.
// Snapshot orders events by instant, then label, then value, so that two
// runs of the same program on different runtimes produce identical
// snapshots even though events within an instant arrive in scheduling
// order. MarshalCanonical renders snapshots as RFC 8785 canonical JSON,
// the form used by golden files and by the trace digest stored with runs.
package trace
