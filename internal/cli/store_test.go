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

func TestStoreSaveAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "automata.db")

	out, err := execute(t, "store", "--db", db, "save", filepath.Join(machinesDir, "parity.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved parity (mealy) revision ")

	out, err = execute(t, "store", "--db", db, "save", filepath.Join(machinesDir, "parity.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "= parity unchanged")

	_, err = execute(t, "store", "--db", db, "save", machinesDir, "--name", "mod3")
	require.NoError(t, err)

	out, err = execute(t, "store", "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t, "mod3\nparity\n", out)
}

func TestStoreSaveRenamesJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "automata.db")

	out, err := execute(t, "--format", "json", "store", "--db", db, "save", filepath.Join(machinesDir, "anbn.json"), "--name", "balanced")
	require.NoError(t, err)

	var resp struct {
		Data SaveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Created)
	assert.Equal(t, "balanced", resp.Data.Revision.Name)
	assert.Equal(t, "pda", resp.Data.Revision.Kind)
	assert.Equal(t, int64(1), resp.Data.Revision.Seq)
}

func TestStoreHistoryAndLoad(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "automata.db")

	_, err := execute(t, "store", "--db", db, "save", filepath.Join(machinesDir, "even_zeros.json"))
	require.NoError(t, err)

	// A second revision under the same name.
	_, err = execute(t, "store", "--db", db, "save", filepath.Join(machinesDir, "ends_in_abb.json"), "--name", "even_zeros")
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "store", "--db", db, "history", "even_zeros")
	require.NoError(t, err)
	var hist struct {
		Data []RevisionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	require.Len(t, hist.Data, 2)
	assert.Less(t, hist.Data[0].Seq, hist.Data[1].Seq)
	assert.NotEqual(t, hist.Data[0].ContentHash, hist.Data[1].ContentHash)

	// Latest is the ends_in_abb body.
	dest := filepath.Join(dir, "latest.json")
	_, err = execute(t, "store", "--db", db, "load", "even_zeros", "-o", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	eng, err := engine.LoadJSON("latest", data)
	require.NoError(t, err)
	assert.Equal(t, engine.Accept, eng.Run("abb").Verdict)

	// The first revision still answers by ID.
	out, err = execute(t, "store", "--db", db, "load", "even_zeros", "--revision", hist.Data[0].ID)
	require.NoError(t, err)
	eng, err = engine.LoadJSON("first", []byte(out))
	require.NoError(t, err)
	assert.Equal(t, engine.Accept, eng.Run("00").Verdict)
	assert.Equal(t, engine.Reject, eng.Run("abb").Verdict)
}

func TestStoreNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "automata.db")

	tests := []struct {
		name string
		args []string
	}{
		{"load", []string{"store", "--db", db, "load", "ghost"}},
		{"history", []string{"store", "--db", db, "history", "ghost"}},
		{"revision", []string{"store", "--db", db, "load", "ghost", "--revision", "0190a000-0000-7000-8000-000000000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, err.Error(), "E009")
		})
	}
}

func TestStoreListEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "automata.db")

	out, err := execute(t, "store", "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t, "No machines stored.\n", out)
}
