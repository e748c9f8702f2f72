package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/engine"
)

func TestRunWithGolden_Transducer(t *testing.T) {
	scenario := &Scenario{
		Name:        "parity_trace",
		Description: "Cumulative output of a Mealy machine",
		Machine:     filepath.Join(machinesDir, "parity.json"),
		Cases:       []Case{{Input: "10", Expect: engine.OK}},
	}

	// First run with -update to create golden file:
	//   go test ./internal/harness -run TestRunWithGolden_Transducer -update
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestRunWithGolden_Acceptor(t *testing.T) {
	scenario := &Scenario{
		Name:        "even_zeros_trace",
		Description: "Active sets of a finite automaton",
		Machine:     filepath.Join(machinesDir, "even_zeros.json"),
		Cases: []Case{
			{Input: "01", Expect: engine.Reject},
			{Input: "0", Expect: engine.Reject},
		},
	}
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/anbn.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), `"stack":["Z","a"]`)
	assert.Contains(t, string(a), `"kind":"pda"`)
}

func TestSnapshot_TuringTape(t *testing.T) {
	scenario := &Scenario{
		Name:        "tape",
		Description: "Tape cells appear in the snapshot",
		Machine:     filepath.Join(machinesDir, "machines.cue"),
		MachineName: "even_as",
		Cases:       []Case{{Input: "aa", Expect: engine.Accept}},
	}
	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := Snapshot(scenario.Name, result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tape":["a","a"`)
	assert.Contains(t, string(data), `"state":"accept"`)
}
