package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "s6_valued_sum_parallel.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "s6_valued_sum_parallel", s.Name)
	assert.Equal(t, 4, s.Workers())
	require.Len(t, s.Signals, 1)
	assert.Equal(t, "v", s.Signals[0].Name)
	require.NotNil(t, s.Expect.Result)
	assert.Equal(t, int64(42), *s.Expect.Result)
	assert.Len(t, s.Expect.Trace, 2)
	assert.Contains(t, s.Path, "s6_valued_sum_parallel.yaml")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestScenario_Workers(t *testing.T) {
	assert.Equal(t, 0, (&Scenario{}).Workers())
	assert.Equal(t, DefaultWorkers, (&Scenario{Runtime: RuntimeSpec{Kind: RuntimeParallel}}).Workers())
	assert.Equal(t, 2, (&Scenario{Runtime: RuntimeSpec{Kind: RuntimeParallel, Workers: 2}}).Workers())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{
			name: "unknown field",
			src:  "name: x\ndescription: d\nprogram: id\nexpectations: {}\n",
			msg:  "field expectations not found",
		},
		{
			name: "missing name",
			src:  "description: d\nprogram: id\n",
			msg:  "name is required",
		},
		{
			name: "missing description",
			src:  "name: x\nprogram: id\n",
			msg:  "description is required",
		},
		{
			name: "missing program",
			src:  "name: x\ndescription: d\n",
			msg:  "program is required",
		},
		{
			name: "unknown runtime",
			src:  "name: x\ndescription: d\nruntime: {kind: gpu}\nprogram: id\n",
			msg:  `unknown kind "gpu"`,
		},
		{
			name: "workers on sequential",
			src:  "name: x\ndescription: d\nruntime: {workers: 2}\nprogram: id\n",
			msg:  "workers only applies",
		},
		{
			name: "result and no_result",
			src:  "name: x\ndescription: d\nprogram: id\nexpect: {result: 1, no_result: true}\n",
			msg:  "mutually exclusive",
		},
		{
			name: "trace event in instant 0",
			src:  "name: x\ndescription: d\nprogram: id\nexpect: {trace: [{instant: 0, label: a, value: 1}]}\n",
			msg:  "instant must be at least 1",
		},
		{
			name: "unknown assertion",
			src:  "name: x\ndescription: d\nprogram: id\nassertions: [{type: trace_magic}]\n",
			msg:  `unknown assertion type "trace_magic"`,
		},
		{
			name: "trace_order without labels",
			src:  "name: x\ndescription: d\nprogram: id\nassertions: [{type: trace_order}]\n",
			msg:  "labels list is required",
		},
		{
			name: "schema: bad signal kind",
			src:  "name: x\ndescription: d\nprogram: id\nsignals: [{name: s, kind: loud}]\n",
			msg:  "schema: signals.0.kind",
		},
		{
			name: "schema: bad scenario name",
			src:  "name: \"has spaces\"\ndescription: d\nprogram: id\n",
			msg:  "schema: name",
		},
		{
			name: "schema: zero workers",
			src:  "name: x\ndescription: d\nruntime: {kind: par, workers: 0}\nprogram: id\n",
			msg:  "schema: runtime.workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateSchema_Valid(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "scenarios", "s3_present_loop.yaml"))
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(data))
}

func TestValidateSchema_ReportsSchemaError(t *testing.T) {
	err := ValidateSchema([]byte("name: x\ndescription: d\nprogram: id\nexpect: {instants: -1}\n"))
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "expect.instants", se.Path)
}

func TestLoadDir_Filter(t *testing.T) {
	dir := filepath.Join("testdata", "scenarios")

	all, err := LoadDir(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "await_never", all[0].Name, "sorted by file name")

	some, err := LoadDir(dir, "s[45]_*")
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "s4_valued_sum", some[0].Name)
	assert.Equal(t, "s5_synchronous_fixpoint", some[1].Name)

	_, err = LoadDir(dir, "[")
	require.Error(t, err)
}

func TestLoadDir_ReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	_, err := LoadDir(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}
