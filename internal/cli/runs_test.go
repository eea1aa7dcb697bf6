package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactor/internal/store"
)

func TestRuns_Text(t *testing.T) {
	dbPath := recordScenarios(t, passingScenario, failingScenario)

	out, err := executeRoot("runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "SCENARIO")
	assert.Regexp(t, `run-0001\s+s1_map_pause_map\s+sequential\s+2\s+2\s+true`, out)
	assert.Regexp(t, `run-0002\s+wrong_result\s+sequential\s+4\s+1\s+false`, out)
}

func TestRuns_JSONFiltered(t *testing.T) {
	dbPath := recordScenarios(t, passingScenario, failingScenario)

	out, err := executeRoot("--format", "json", "runs", "--db", dbPath, "--scenario", "wrong_result")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-0002", resp.Data[0].ID)
	assert.False(t, resp.Data[0].Pass)
}

func TestRuns_Empty(t *testing.T) {
	dbPath := recordScenarios(t, passingScenario)

	out, err := executeRoot("runs", "--db", dbPath, "--scenario", "other")
	require.NoError(t, err)
	assert.Equal(t, "No runs found.\n", out)
}

func TestRuns_MissingDatabase(t *testing.T) {
	_, err := executeRoot("runs", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
