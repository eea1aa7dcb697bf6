// Package runtime implements the instant scheduler of the reactive runtime.
//
// A runtime owns three FIFO queues of continuations and drives logical time
// forward one instant at a time.
//
// ARCHITECTURE:
//
// Queues:
//   - current: work for the instant in progress
//   - next: work for the following instant
//   - endOfInstant: work that runs once current has drained, before promotion
//
// Instant algorithm:
//  1. Drain current. Work pushed onto current while draining runs in this phase.
//  2. Drain endOfInstant. Work pushed onto current during this phase lands in next.
//  3. Swap current and next, advance the logical clock.
//  4. Report whether current is non-empty.
//
// Step 2 is where signals decide absence and reset their per-instant state,
// so it must never extend the instant that is ending.
//
// Variants:
//   - Sequential: one owning goroutine, no locking.
//   - Parallel: N worker goroutines share the queues under one mutex. A worker
//     that observes an empty current queue while no worker is busy becomes the
//     coordinator for that barrier and runs steps 2 and 3 alone.
//
// INVARIANTS:
//   - Every queued continuation runs exactly once, in the phase of its queue.
//   - Work enqueued with OnNextInstant during instant i runs no earlier than i+1.
//   - End-of-instant work of instant i runs after all current work of i and
//     before any current work of i+1.
//
// Invariant violations anywhere in the runtime (or in the arrow and signal
// layers built on it) are fatal and surface as a panic carrying an
// *InvariantError.
package runtime
