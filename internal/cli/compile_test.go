package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func TestCompileMachinesDir(t *testing.T) {
	out, err := execute(t, "compile", machinesDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 3 machine(s)")
	assert.Contains(t, out, "mod3 (moore):")
	assert.Contains(t, out, `"kind": "tm"`)
}

func TestCompileMachinesDirJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", machinesDir)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Machines []struct {
				Name string  `json:"name"`
				Kind ir.Kind `json:"kind"`
			} `json:"machines"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Machines, 3)
	assert.Equal(t, "mod3", resp.Data.Machines[0].Name)
	assert.Equal(t, ir.KindMoore, resp.Data.Machines[0].Kind)
}

func TestCompileWritesDocuments(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "compile", machinesDir, "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote documents to "+dir)

	for _, name := range []string{"mod3", "even_as", "forever"} {
		assert.FileExists(t, filepath.Join(dir, name+".json"))
	}

	data, err := os.ReadFile(filepath.Join(dir, "mod3.json"))
	require.NoError(t, err)
	eng, err := engine.LoadJSON("mod3", data)
	require.NoError(t, err)
	o := eng.Run("aab")
	assert.Equal(t, engine.OK, o.Verdict)
	assert.Equal(t, "0122", o.Output)
}

func TestCompileValidationErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.cue", missingOutputCUE)

	out, err := execute(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E109")
	assert.Contains(t, out, "machine.toggle")
}

func TestCompileValidationErrorsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.cue", missingOutputCUE)

	out, err := execute(t, "--format", "json", "compile", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E109", resp.Error.Code)
}

func TestCompileNonExistentPath(t *testing.T) {
	_, err := execute(t, "compile", "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestCompileSyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "syntax.cue", "package bad\n\nmachine: {\n")

	_, err := execute(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E006")
}
