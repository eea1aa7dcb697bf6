// Package harness runs reactive programs described by YAML scenarios and
// checks what they produce.
//
// # Scenario Format
//
//	name: s4_valued_sum
//	description: "Emissions of one instant are summed for the next"
//	runtime:
//	  kind: par        # seq (default) or par
//	  workers: 4
//	input: 0
//	signals:
//	  - {name: v, kind: value, combine: sum}
//	program:
//	  par:
//	    join: right
//	    left:  {seq: [{const: 32}, {emit: v}, {const: 10}, {emit: v}]}
//	    right: {seq: [{await: v}, {log: read}]}
//	expect:
//	  result: 42
//	  instants: 2
//	  trace:
//	    - {instant: 2, label: read, value: 42}
//	assertions:
//	  - type: trace_count
//	    label: read
//	    count: 1
//
// The program tree is documented in package program.
//
// Scenarios are validated twice: structurally after strict YAML decoding,
// and against an embedded CUE schema.
//
// # Expectations
//
//   - result: the value the program produces
//   - no_result: the program drains without producing a value
//   - instants: the number of instants until the runtime drains
//   - trace: the logged events; order within an instant is ignored
//
// # Assertion Types
//
//   - trace_contains: a logged event with the label (and instant or value, if given)
//   - trace_order: the labels are first logged in strictly increasing instants;
//     labels first logged in the same instant fail
//   - trace_count: a label is logged exactly N times
//
// # Deterministic Testing
//
// Traces are compared and stored in canonical order (instant, label,
// value), so sequential and parallel runs of one scenario produce the same
// snapshot. RunWithGolden compares that snapshot with a golden file in
// testdata/golden.
package harness
