// Package arrow implements the continuation-passing combinator algebra.
//
// An Arrow[A, B] is a reactive program node: given a runtime, an input of
// type A and a continuation expecting B, it arranges for the continuation to
// be invoked eventually. Nodes never return values directly; they enqueue
// work on the runtime, and logical time advances only when a node defers its
// continuation into the next instant (Pause) or parks it on a signal.
//
// Arrows are immutable after construction. Combinators hold their children by
// interface value, so bodies that are re-entered (Fixpoint, Fork, Product)
// are shared rather than copied, and any arrow may be called concurrently by
// the parallel runtime.
//
// Composition:
//
//	prog := arrow.Bind(
//	    arrow.Map(func(arrow.Unit) string { return "A" }),
//	    arrow.Bind(arrow.Pause[string](), arrow.Map(strings.ToLower)),
//	)
//	out := arrow.ExecuteSeq(prog, arrow.Unit{}) // "a", one instant later
package arrow
