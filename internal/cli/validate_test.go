package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingOutputCUE = `package broken

machine: toggle: {
	kind:   "moore"
	states: ["off", "on"]
	start:  "off"
	outputs: {off: "0"}
	transitions: [
		{from: "off", input: "t", to: "on"},
		{from: "on", input: "t", to: "off"},
	]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateMachinesDir(t *testing.T) {
	out, err := execute(t, "validate", machinesDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ mod3 (moore)")
	assert.Contains(t, out, "✓ even_as (tm)")
	assert.Contains(t, out, "✓ forever (tm)")
	assert.Contains(t, out, "W203")
	assert.Contains(t, out, "✓ All machines valid")
}

func TestValidateMachinesDirJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", machinesDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Machines, 3)
	assert.Equal(t, "mod3", resp.Data.Machines[0].Name)
}

func TestValidateJSONDocument(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join(machinesDir, "anbn.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ anbn (pda)")
}

func TestValidateReportsErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.cue", missingOutputCUE)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ toggle (moore)")
	assert.Contains(t, out, "E109")
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
}

func TestValidateUndecodableDocument(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", `{"kind": "fa", "states": 7}`)

	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E008")
}
