package program

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactor/internal/arrow"
	"github.com/roach88/reactor/internal/runtime"
	"github.com/roach88/reactor/internal/trace"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type runResult struct {
	value   int64
	at      int64
	events  []trace.Event
	program *Program
}

func run(t *testing.T, src string, decls []SignalDecl, input int64) runResult {
	t.Helper()
	rec := trace.NewRecorder()
	p, err := Parse([]byte(src), decls, WithRecorder(rec), WithLogger(discard()))
	require.NoError(t, err)

	rt := runtime.NewSequential(runtime.WithLogger(discard()))
	out := arrow.Launch(rt, p.Arrow, input)
	rt.Execute()

	v, err := out.Result()
	require.NoError(t, err)
	return runResult{value: v, at: out.Instant(), events: rec.Snapshot(), program: p}
}

func TestCompile_Programs(t *testing.T) {
	pure := []SignalDecl{{Name: "s", Kind: KindPure}}
	valued := []SignalDecl{{Name: "v", Kind: KindValue, Combine: "sum"}}

	tests := []struct {
		name     string
		src      string
		decls    []SignalDecl
		input    int64
		expected int64
		at       int64
		events   []trace.Event
	}{
		{
			name: "map pause map",
			src: `
seq:
  - const: 1
  - log: A
  - pause: 1
  - const: 2
  - log: B
`,
			expected: 2,
			at:       2,
			events:   []trace.Event{{Instant: 1, Label: "A", Value: 1}, {Instant: 2, Label: "B", Value: 2}},
		},
		{
			name:     "arithmetic",
			src:      `seq: [{add: 3}, {mul: 4}]`,
			input:    2,
			expected: 20,
			at:       1,
		},
		{
			name:     "id shorthand",
			src:      `seq: [id, {id: ~}]`,
			input:    9,
			expected: 9,
			at:       1,
		},
		{
			name:     "multi-instant pause",
			src:      `pause: 3`,
			input:    1,
			expected: 1,
			at:       4,
		},
		{
			name: "par waits for the slower side",
			src: `
par:
  left: {add: 1}
  right:
    seq: [{pause: 2}, {mul: 10}]
`,
			input:    3,
			expected: 34,
			at:       3,
		},
		{
			name: "sync par keeps the left result",
			src: `
par:
  left: {seq: [{pause: 1}, {log: left}]}
  right: {log: right}
  join: left
  sync: true
`,
			input:    7,
			expected: 7,
			at:       2,
			events:   []trace.Event{{Instant: 2, Label: "left", Value: 7}, {Instant: 2, Label: "right", Value: 7}},
		},
		{
			name:     "synchronous loop stays in one instant",
			src:      `loop: {while: {lt: 10}, body: {add: 1}}`,
			expected: 10,
			at:       1,
		},
		{
			name: "pausing loop",
			src: `
loop:
  while: {ne: 3}
  body:
    seq: [{log: tick}, {add: 1}, {pause: 1}]
`,
			expected: 3,
			at:       4,
			events: []trace.Event{
				{Instant: 1, Label: "tick", Value: 0},
				{Instant: 2, Label: "tick", Value: 1},
				{Instant: 3, Label: "tick", Value: 2},
			},
		},
		{
			name:     "loop never entered",
			src:      `loop: {while: {gt: 100}, body: {pause: 1}}`,
			input:    5,
			expected: 5,
			at:       1,
		},
		{
			name: "fork does not block",
			src: `
seq:
  - fork:
      seq: [{pause: 1}, {log: child}]
  - log: parent
`,
			input:    5,
			expected: 5,
			at:       1,
			events:   []trace.Event{{Instant: 1, Label: "parent", Value: 5}, {Instant: 2, Label: "child", Value: 5}},
		},
		{
			name:     "present after emit",
			src:      `seq: [{emit: s}, {present: {signal: s, then: {const: 1}, else: {const: 0}}}]`,
			decls:    pure,
			expected: 1,
			at:       1,
		},
		{
			name:     "present without emit decides at end of instant",
			src:      `present: {signal: s, then: {const: 1}, else: {const: 0}}`,
			decls:    pure,
			input:    5,
			expected: 0,
			at:       2,
		},
		{
			name: "await immediate",
			src: `
par:
  left: {seq: [{pause: 2}, {emit: s}]}
  right: {seq: [{await_immediate: s}, {log: got}]}
  join: left
`,
			decls:    pure,
			input:    4,
			expected: 4,
			at:       3,
			events:   []trace.Event{{Instant: 3, Label: "got", Value: 4}},
		},
		{
			name: "valued await sees the combined value",
			src: `
par:
  left: {seq: [{const: 32}, {emit: v}, {const: 10}, {emit: v}]}
  right: {seq: [{await: v}, {log: read}]}
  join: right
`,
			decls:    valued,
			expected: 42,
			at:       2,
			events:   []trace.Event{{Instant: 2, Label: "read", Value: 42}},
		},
		{
			name: "uniq signal",
			src: `
par:
  left: {seq: [{const: 5}, {emit: u}, {const: 9}, {emit: u}]}
  right: {await: u}
  join: right
`,
			decls:    []SignalDecl{{Name: "u", Kind: KindUniq, Combine: "max"}},
			expected: 9,
			at:       2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.src, tt.decls, tt.input)
			assert.Equal(t, tt.expected, r.value)
			assert.Equal(t, tt.at, r.at)
			if tt.events == nil {
				assert.Empty(t, r.events)
			} else {
				assert.Equal(t, tt.events, r.events)
			}
		})
	}
}

func TestCompile_CountsNodes(t *testing.T) {
	r := run(t, `seq: [{add: 1}, {par: {left: id, right: {mul: 2}}}]`, nil, 1)
	assert.Equal(t, 5, r.program.Nodes)
	assert.Equal(t, int64(6), r.value)
}

func TestCompile_LongPauseIsOneNode(t *testing.T) {
	p, err := Parse([]byte(`pause: 2000000000`), nil, WithLogger(discard()))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Nodes)

	rt := runtime.NewSequential(runtime.WithLogger(discard()))
	out := arrow.Launch(rt, p.Arrow, 7)
	for range 3 {
		require.True(t, rt.Instant())
	}
	_, err = out.Result()
	assert.Error(t, err, "still waiting")
}

func TestCompile_Errors(t *testing.T) {
	pure := []SignalDecl{{Name: "s", Kind: KindPure}}

	tests := []struct {
		name  string
		src   string
		decls []SignalDecl
		path  string
		msg   string
	}{
		{"unknown node", `seq: [id, {frob: 1}]`, nil, "program.seq[1]", `unknown node "frob"`},
		{"nested path", `seq: [id, id, {loop: {while: {lt: 3}, body: {pause: 0}}}]`, nil, "program.seq[2].loop.body.pause", "at least 1 instant"},
		{"two keys", `{add: 1, mul: 2}`, nil, "program", "exactly one key"},
		{"bad integer", `add: one`, nil, "program.add", "expected an integer"},
		{"empty seq", `seq: []`, nil, "program.seq", "at least one node"},
		{"par missing side", `par: {left: id}`, nil, "program.par", `requires "right"`},
		{"par bad join", `par: {left: id, right: id, join: avg}`, nil, "program.par.join", `unknown join "avg"`},
		{"par unknown field", `par: {left: id, right: id, mode: x}`, nil, "program.par", `unknown field "mode"`},
		{"bad condition", `loop: {while: {between: 3}, body: id}`, nil, "program.loop.while", `unknown comparison "between"`},
		{"undeclared signal", `emit: nope`, nil, "program.emit", `undeclared signal "nope"`},
		{"await pure", `await: s`, pure, "program.await", "cannot await pure signal"},
		{"present missing signal", `present: {then: id}`, pure, "program.present", `requires "signal"`},
		{"scalar node", `hello`, nil, "program", `got scalar "hello"`},
		{"id with argument", `id: 3`, nil, "program.id", "no argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.decls, WithLogger(discard()))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.path, ce.Path)
			assert.Contains(t, ce.Message, tt.msg)
		})
	}
}

func TestCompile_SignalDeclErrors(t *testing.T) {
	tests := []struct {
		name  string
		decls []SignalDecl
		msg   string
	}{
		{"missing name", []SignalDecl{{Kind: KindPure}}, "name is required"},
		{"duplicate", []SignalDecl{{Name: "a", Kind: KindPure}, {Name: "a", Kind: KindValue}}, `duplicate signal "a"`},
		{"unknown kind", []SignalDecl{{Name: "a", Kind: "loud"}}, `unknown kind "loud"`},
		{"unknown combine", []SignalDecl{{Name: "a", Kind: KindValue, Combine: "avg"}}, `unknown combine "avg"`},
		{"pure with combine", []SignalDecl{{Name: "a", Kind: KindPure, Combine: "sum"}}, "cannot have a combine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte("id"), tt.decls, WithLogger(discard()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompile_ErrorIncludesLine(t *testing.T) {
	src := "seq:\n  - id\n  - frob: 1\n"
	_, err := Parse([]byte(src), nil, WithLogger(discard()))
	require.Error(t, err)
	assert.Equal(t, `program.seq[1] (line 3): unknown node "frob"`, err.Error())
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program is empty")
}
