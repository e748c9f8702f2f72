package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

const twoMachines = `
machine: first: {
	kind:   "mealy"
	states: ["s"]
	start:  "s"
	transitions: [{from: "s", input: "a", to: "s", output: "b"}]
}
machine: second: {
	kind:   "fa"
	states: ["p"]
	start:  "p"
	final:  ["p"]
	transitions: [{from: "p", symbol: "x", to: "p"}]
}
`

func writeCUE(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machines.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileFile(t *testing.T) {
	machines, errs := CompileFile(writeCUE(t, twoMachines))
	require.Empty(t, errs)
	require.Len(t, machines, 2)
	assert.Equal(t, "first", machines[0].Name)
	assert.Equal(t, ir.KindMealy, machines[0].Kind())
	assert.Equal(t, "second", machines[1].Name)
	assert.Equal(t, ir.KindFA, machines[1].Kind())
}

func TestCompileFileCollectsErrors(t *testing.T) {
	machines, errs := CompileFile(writeCUE(t, `
machine: good: {kind: "fa", states: ["p"]}
machine: bad: {kind: "nope", states: ["p"]}
machine: worse: {kind: "fa"}
`))
	require.Len(t, machines, 1)
	assert.Equal(t, "good", machines[0].Name)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "machine.bad")
	assert.Contains(t, errs[1].Error(), "states is required")
}

func TestCompileFileMissing(t *testing.T) {
	_, errs := CompileFile(filepath.Join(t.TempDir(), "absent.cue"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "absent.cue")
}

func TestCompileFileWithoutMachines(t *testing.T) {
	machines, errs := CompileFile(writeCUE(t, `other: 1`))
	assert.Empty(t, machines)
	assert.Empty(t, errs)
}

func TestFind(t *testing.T) {
	machines, errs := CompileFile(writeCUE(t, twoMachines))
	require.Empty(t, errs)

	m, err := Find(machines, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", m.Name)

	_, err = Find(machines, "")
	assert.ErrorContains(t, err, "2 machines declared")

	_, err = Find(machines, "third")
	assert.ErrorContains(t, err, `"third"`)

	m, err = Find(machines[:1], "")
	require.NoError(t, err)
	assert.Equal(t, "first", m.Name)

	_, err = Find(nil, "")
	assert.Error(t, err)
}
