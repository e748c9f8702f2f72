package fa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func TestToJSONGolden(t *testing.T) {
	data, err := epsilonNFA(t).ToJSON()
	require.NoError(t, err)
	newGoldie(t).Assert(t, "epsilon_nfa", data)
}

func TestJSONRoundTrip(t *testing.T) {
	for name, build := range map[string]func(*testing.T) *Automaton{
		"abb":     endsInABB,
		"epsilon": epsilonNFA,
		"multi":   multiSymbol,
		"grammar": grammarSource,
	} {
		t.Run(name, func(t *testing.T) {
			a := build(t)
			data, err := a.ToJSON()
			require.NoError(t, err)

			b, warnings, err := FromJSON(data)
			require.NoError(t, err)
			assert.Empty(t, warnings)

			assert.Equal(t, a.States(), b.States())
			assert.Equal(t, a.FinalStates(), b.FinalStates())
			assert.Equal(t, a.Alphabet(), b.Alphabet())
			assert.Equal(t, a.Transitions(), b.Transitions())
			as, _ := a.Start()
			bs, _ := b.Start()
			assert.Equal(t, as, bs)
		})
	}
}

func TestMarshalJSONThroughEncodingJSON(t *testing.T) {
	data, err := json.Marshal(epsilonNFA(t))
	require.NoError(t, err)

	b, _, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, b.Simulate("a"))
}

func TestJSONTranslatesEpsilon(t *testing.T) {
	a := New(WithEpsilon("λ"))
	require.NoError(t, a.AddState("p", AsStart()))
	require.NoError(t, a.AddState("q", AsFinal()))
	require.NoError(t, a.AddTransition("p", "λ", "q"))

	doc := a.ToDocument()
	require.Len(t, doc.Transitions, 1)
	assert.Equal(t, ir.Epsilon, doc.Transitions[0].Symbol)

	data, err := a.ToJSON()
	require.NoError(t, err)
	b, warnings, err := FromJSON(data, WithEpsilon("ε"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []Transition{{Src: "p", Symbol: "ε", Dst: "q"}}, b.Transitions())
	assert.True(t, b.Simulate(""))
}

func TestFromJSONIsPermissive(t *testing.T) {
	data := []byte(`{
		"states": ["q1", "q0"],
		"start_state": "missing",
		"final_states": ["q1", "ghost"],
		"alphabet": ["a", "&"],
		"transitions": [
			{"src": "q0", "symbol": "a", "dsts": ["q1", "ghost"]},
			{"src": "q0", "symbol": "b", "dsts": "q1"},
			{"src": "nowhere", "symbol": "a", "dsts": ["q1"]}
		]
	}`)

	a, warnings, err := FromJSON(data)
	require.NoError(t, err)

	start, ok := a.Start()
	require.True(t, ok)
	assert.Equal(t, "q0", start, "falls back to the smallest label")
	assert.Equal(t, []string{"q1"}, a.FinalStates())
	assert.Equal(t, []string{"a"}, a.Alphabet())
	assert.Equal(t, []Transition{{Src: "q0", Symbol: "a", Dst: "q1"}}, a.Transitions())
	assert.Len(t, warnings, 7)
	assert.True(t, a.Simulate("a"))
}

func TestFromJSONEmpty(t *testing.T) {
	a, warnings, err := FromJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	_, ok := a.Start()
	assert.False(t, ok)
	assert.Empty(t, a.States())
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, _, err := FromJSON([]byte(`not json`))
	assert.Error(t, err)
}
