package mealy

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func TestToJSONGolden(t *testing.T) {
	data, err := parity(t).ToJSON()
	require.NoError(t, err)
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "parity", data)
}

func TestJSONRoundTrip(t *testing.T) {
	m := parity(t)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	n, warnings, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, m.States(), n.States())
	assert.Equal(t, m.InputAlphabet(), n.InputAlphabet())
	assert.Equal(t, m.OutputAlphabet(), n.OutputAlphabet())
	assert.Equal(t, m.Transitions(), n.Transitions())
	ms, _ := m.Start()
	ns, _ := n.Start()
	assert.Equal(t, ms, ns)
}

func TestJSONTranslatesEpsilonOutput(t *testing.T) {
	m := New(WithEpsilon("λ"))
	require.NoError(t, m.AddState("s"))
	require.NoError(t, m.AddTransition("s", "a", "s", "λ"))

	doc := m.ToDocument()
	require.Len(t, doc.Transitions, 1)
	assert.Equal(t, ir.Epsilon, doc.Transitions[0].Output)
	assert.Empty(t, doc.OutputAlphabet)

	data, err := m.ToJSON()
	require.NoError(t, err)
	n, warnings, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []Transition{{Src: "s", Input: "a", Dst: "s", Output: ir.Epsilon}}, n.Transitions())

	out, ok := n.Simulate("aa")
	require.True(t, ok)
	assert.Empty(t, out)
}

func TestFromJSONIsPermissive(t *testing.T) {
	data := []byte(`{
		"states": ["b", "a"],
		"start_state": "zz",
		"transitions": [
			{"src": "a", "input": "x", "dst": "b", "output": "1"},
			{"src": "a", "input": "&", "dst": "b", "output": "1"},
			{"src": "a", "input": "y", "dst": "c", "output": "1"},
			{"src": "a", "dst": "b", "output": "1"},
			{"src": "a", "input": "z", "dst": "b", "output": "1", "pop": "Z"}
		]
	}`)
	m, warnings, err := FromJSON(data)
	require.NoError(t, err)

	start, _ := m.Start()
	assert.Equal(t, "a", start)
	assert.Equal(t, []Transition{{Src: "a", Input: "x", Dst: "b", Output: "1"}}, m.Transitions())
	// two malformed records, unknown start, its fallback, epsilon input, unknown state
	assert.Len(t, warnings, 6)
}
