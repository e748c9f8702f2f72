package fa

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// grammarSource is q0 -&-> q1 -ab-> q2, with q2 final and looping on c.
func grammarSource(t *testing.T) *Automaton {
	t.Helper()
	a := New()
	require.NoError(t, a.AddState("q0", AsStart()))
	require.NoError(t, a.AddState("q1"))
	require.NoError(t, a.AddState("q2", AsFinal()))
	require.NoError(t, a.AddTransition("q0", ir.Epsilon, "q1"))
	require.NoError(t, a.AddTransition("q1", "ab", "q2"))
	require.NoError(t, a.AddTransition("q2", "c", "q2"))
	return a
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRegularGrammarExtended(t *testing.T) {
	g, err := grammarSource(t).RegularGrammar(false)
	require.NoError(t, err)

	assert.Equal(t, "q0", g.Start)
	assert.Equal(t, []string{"ab", "c"}, g.Terminals)
	assert.Equal(t, []Production{{}, {Terminal: "c"}, {Terminal: "c", Next: "q2"}}, g.Productions["q2"])

	newGoldie(t).Assert(t, "grammar_extended", []byte(g.String()))
}

func TestRegularGrammarStrict(t *testing.T) {
	g, err := grammarSource(t).RegularGrammar(true)
	require.NoError(t, err)

	for head, rhs := range g.Productions {
		for _, p := range rhs {
			assert.LessOrEqual(t, len([]rune(p.Terminal)), 1, "%s -> %s", head, p)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, g.Terminals)

	newGoldie(t).Assert(t, "grammar_strict", []byte(g.String()))
}

func TestRegularGrammarFreshNamesSkipStates(t *testing.T) {
	a := New()
	require.NoError(t, a.AddState("__G0", AsStart()))
	require.NoError(t, a.AddState("f", AsFinal()))
	require.NoError(t, a.AddTransition("__G0", "xy", "f"))

	g, err := a.RegularGrammar(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"__G0", "__G1", "__G2", "f"}, g.Nonterminals)
	assert.Equal(t, []Production{{Terminal: "x", Next: "__G1"}, {Terminal: "x", Next: "__G2"}}, g.Productions["__G0"])
	assert.Equal(t, []Production{{Terminal: "y"}}, g.Productions["__G1"])
	assert.Equal(t, []Production{{Terminal: "y", Next: "f"}}, g.Productions["__G2"])
	assert.Equal(t, []Production{{}}, g.Productions["f"])
}

func TestRegularGrammarRequiresStart(t *testing.T) {
	_, err := New().RegularGrammar(false)
	assert.ErrorIs(t, err, ir.ErrNoStartState)
}
