package pda

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestToJSONGolden(t *testing.T) {
	data, err := anbn(t).ToJSON()
	require.NoError(t, err)
	newGoldie(t).Assert(t, "anbn", data)
}

func TestJSONRoundTrip(t *testing.T) {
	p := anbn(t)
	data, err := json.Marshal(p)
	require.NoError(t, err)

	q, warnings, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, p.States(), q.States())
	assert.Equal(t, p.FinalStates(), q.FinalStates())
	assert.Equal(t, p.InputAlphabet(), q.InputAlphabet())
	assert.Equal(t, p.StackAlphabet(), q.StackAlphabet())
	assert.Equal(t, p.Transitions(), q.Transitions())
	assert.True(t, q.Simulate("aabb"))
}

func TestJSONTranslatesSentinels(t *testing.T) {
	p := New(WithEpsilon("λ"), WithStartStackSymbol("$"))
	require.NoError(t, p.AddState("s", AsStart()))
	require.NoError(t, p.AddState("f", AsFinal()))
	require.NoError(t, p.AddTransition("s", "λ", "$", "f", "λ"))

	doc := p.ToDocument()
	assert.Equal(t, "$", doc.StartStackSymbol)
	assert.Equal(t, map[string][][]string{"s,&,$": {{"f", "&"}}}, doc.Transitions)

	data, err := p.ToJSON()
	require.NoError(t, err)
	q, warnings, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "$", q.StartStackSymbol())
	assert.Equal(t, []Transition{{Src: "s", Input: ir.Epsilon, Pop: "$", Dst: "f", Push: ir.Epsilon}}, q.Transitions())
	assert.True(t, q.Simulate(""))
}

func TestFromJSONIsPermissive(t *testing.T) {
	data := []byte(`{
		"states": ["q1", "q0"],
		"start_state": "ghost",
		"final_states": ["q1", "ghost"],
		"transitions": {
			"q0,a,Z": [["q1", "Z"], ["q1"]],
			"q0,b": [["q1", "Z"]],
			"nowhere,a,Z": [["q1", "Z"]]
		}
	}`)

	p, warnings, err := FromJSON(data)
	require.NoError(t, err)

	start, ok := p.Start()
	require.True(t, ok)
	assert.Equal(t, "q0", start)
	assert.Equal(t, "Z", p.StartStackSymbol())
	assert.Equal(t, []string{"q1"}, p.FinalStates())
	assert.Equal(t, []Transition{{Src: "q0", Input: "a", Pop: "Z", Dst: "q1", Push: "Z"}}, p.Transitions())
	// short pair, bad key, unknown start, its fallback, unknown final, unknown source
	assert.Len(t, warnings, 6)
	assert.True(t, p.Simulate("a"))
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, _, err := FromJSON([]byte(`[1, 2`))
	assert.Error(t, err)
}

func TestKeySeparatorIsRejected(t *testing.T) {
	p := New()
	require.NoError(t, p.AddState("q0", AsStart()))

	assert.ErrorIs(t, p.AddState("a,b"), ir.ErrKeySeparator)
	assert.ErrorIs(t, p.RenameState("q0", "q,0"), ir.ErrKeySeparator)
	assert.ErrorIs(t, p.AddTransition("q0", ",", "Z", "q0", "Z"), ir.ErrKeySeparator)
	assert.Equal(t, []string{"q0"}, p.States())
	assert.Empty(t, p.Transitions())
}

func TestJSONRoundTripCommaInPopAndPush(t *testing.T) {
	p := New()
	require.NoError(t, p.AddState("q0", AsStart()))
	require.NoError(t, p.AddState("q1", AsFinal()))
	require.NoError(t, p.AddTransition("q0", "a", "Z", "q0", "Z,"))
	require.NoError(t, p.AddTransition("q0", "b", ",", "q1", ir.Epsilon))

	data, err := p.ToJSON()
	require.NoError(t, err)
	q, warnings, err := FromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, p.Transitions(), q.Transitions())
	assert.True(t, q.Simulate("ab"))
}
