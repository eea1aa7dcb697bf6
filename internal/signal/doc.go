// Package signal provides instant-scoped broadcast primitives for reactive
// programs: pure signals (presence only), valued signals (presence plus a
// value combined from every emission of the instant) and uniq signals
// (valued signals with a single consumer).
//
// # Presence
//
// A signal is present in an instant once any program emits it during that
// instant. Presence is observable immediately: AwaitImmediate and the then
// branch of Present resume in the same instant as the emission. Absence is
// only known once the instant's current work has drained, so the else branch
// of Present runs at the start of the following instant.
//
// # Values
//
// Emissions of a valued signal are folded with its combine function. The
// combined value is final at end of instant and is delivered to every Await
// registered during or before that instant, at the start of the next one.
// The combine function should be associative and commutative: on a parallel
// runtime emissions arrive in no particular order.
//
// # Concurrency
//
// Every signal guards its state with its own mutex and never invokes a
// continuation while holding it. Scheduling calls into the runtime happen
// after the mutex is released.
package signal
