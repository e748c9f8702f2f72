package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

func TestConvertToDFA(t *testing.T) {
	out, err := execute(t, "convert", filepath.Join(machinesDir, "ends_in_abb.json"))
	require.NoError(t, err)

	eng, err := engine.LoadJSON("dfa", []byte(out))
	require.NoError(t, err)
	assert.True(t, eng.Automaton().IsDFA())
	assert.Equal(t, engine.Accept, eng.Run("babb").Verdict)
	assert.Equal(t, engine.Reject, eng.Run("abba").Verdict)
}

func TestConvertMinimizeToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "min.json")

	out, err := execute(t, "convert", filepath.Join(machinesDir, "ends_in_abb.json"), "--minimize", "-o", dest)
	require.NoError(t, err)
	assert.Equal(t, "✓ ends_in_abb: 4 states → "+dest+"\n", out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	eng, err := engine.LoadJSON("min", data)
	require.NoError(t, err)
	assert.Len(t, eng.Automaton().States(), 4)
	assert.Equal(t, engine.Accept, eng.Run("aabb").Verdict)
}

func TestConvertJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "convert", filepath.Join(machinesDir, "even_zeros.json"), "--minimize")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Machine   string `json:"machine"`
			Minimized bool   `json:"minimized"`
			States    int    `json:"states"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "even_zeros", resp.Data.Machine)
	assert.True(t, resp.Data.Minimized)
	assert.Equal(t, 2, resp.Data.States)
}

func TestConvertUnsupportedKind(t *testing.T) {
	_, err := execute(t, "convert", filepath.Join(machinesDir, "parity.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E010")
}

func TestGrammarExtended(t *testing.T) {
	out, err := execute(t, "grammar", filepath.Join(machinesDir, "even_zeros.json"))
	require.NoError(t, err)

	assert.Contains(t, out, "# Regular grammar (extended)")
	assert.Contains(t, out, "S = even")
	assert.Contains(t, out, "even -> ε | 0 odd | 1 | 1 even")
	assert.Contains(t, out, "odd -> 0 | 0 even | 1 odd")
}

func TestGrammarStrictJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "grammar", filepath.Join(machinesDir, "ends_in_abb.json"), "--strict")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Strict bool   `json:"strict"`
			Start  string `json:"start"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Strict)
	assert.Equal(t, "0", resp.Data.Start)
}

func TestGrammarUnsupportedKind(t *testing.T) {
	_, err := execute(t, "grammar", machinesDir, "--name", "even_as")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E010")
}
