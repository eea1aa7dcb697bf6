package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: s1_map_pause_map
description: "A before the pause, B after it"
program:
  seq:
    - const: 1
    - log: A
    - pause: 1
    - const: 2
    - log: B
expect:
  result: 2
  instants: 2
`

const failingScenario = `name: wrong_result
description: "Expects a result the program never produces"
input: 3
program:
  add: 1
expect:
  result: 5
`

const sumScenario = `name: valued_sum
description: "Two emissions in instant 1 are read as their sum in instant 2"
signals:
  - {name: v, kind: value, combine: sum}
program:
  par:
    join: right
    left:
      seq:
        - const: 32
        - emit: v
        - const: 10
        - emit: v
    right:
      seq:
        - await: v
        - log: read
expect:
  result: 42
  instants: 2
  trace:
    - {instant: 2, label: read, value: 42}
`

const unknownNodeScenario = `name: unknown_node
description: "Refers to a node kind that does not exist"
program:
  seq:
    - frob: 1
expect: {}
`

const badSchemaScenario = `name: bad schema
description: "Names may not contain spaces"
program: id
expect: {}
`

// writeScenario writes content to dir/file and returns the path.
func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// executeRoot runs the full command tree.
func executeRoot(args ...string) (string, error) {
	return execute(NewRootCommand(), args...)
}
