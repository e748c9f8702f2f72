package fa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func TestEpsilonClosureProperties(t *testing.T) {
	a := New()
	for _, s := range []string{"a", "b", "c", "d"} {
		require.NoError(t, a.AddState(s))
	}
	// Cycle a -> b -> c -> a plus d isolated.
	require.NoError(t, a.AddTransition("a", ir.Epsilon, "b"))
	require.NoError(t, a.AddTransition("b", ir.Epsilon, "c"))
	require.NoError(t, a.AddTransition("c", ir.Epsilon, "a"))

	seeds := [][]string{{}, {"a"}, {"d"}, {"b", "d"}, {"a", "b", "c", "d"}}
	for _, seed := range seeds {
		closure, err := a.EpsilonClosure(seed...)
		require.NoError(t, err)
		for _, s := range seed {
			assert.Contains(t, closure, s)
		}
		again, err := a.EpsilonClosure(closure...)
		require.NoError(t, err)
		assert.Equal(t, closure, again)
	}

	closure, err := a.EpsilonClosure("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, closure)

	_, err = a.EpsilonClosure("zz")
	assert.ErrorIs(t, err, ir.ErrUnknownState)
}

func TestMove(t *testing.T) {
	a := epsilonNFA(t)
	next, err := a.Move([]string{"q0", "q1"}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, next)

	next, err = a.Move([]string{"q0"}, "a")
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestSimulateEpsilonNFA(t *testing.T) {
	a := epsilonNFA(t)
	assert.True(t, a.Simulate("a"))
	assert.False(t, a.Simulate(""))
	assert.False(t, a.Simulate("aa"))
}

func TestSimulateHistory(t *testing.T) {
	a := epsilonNFA(t)
	history, accepted := a.SimulateHistory("a")
	assert.True(t, accepted)
	assert.Equal(t, []Step{
		{States: []string{"q0", "q1"}, Pos: 0},
		{States: []string{"q2"}, Pos: 1},
	}, history)

	history, accepted = a.SimulateHistory("aa")
	assert.False(t, accepted)
	assert.Len(t, history, 2, "stuck after the first symbol")
}

func TestSimulateWithoutStart(t *testing.T) {
	history, accepted := New().SimulateHistory("a")
	assert.False(t, accepted)
	assert.Empty(t, history)
}

// multiSymbol has both "ab" and "a" leaving s.
func multiSymbol(t *testing.T) *Automaton {
	t.Helper()
	a := New()
	require.NoError(t, a.AddState("s", AsStart()))
	require.NoError(t, a.AddState("t", AsFinal()))
	require.NoError(t, a.AddState("u"))
	require.NoError(t, a.AddTransition("s", "ab", "t"))
	require.NoError(t, a.AddTransition("s", "a", "u"))
	require.NoError(t, a.AddTransition("u", "b", "u"))
	return a
}

func TestSimulateLongestMatch(t *testing.T) {
	a := multiSymbol(t)

	history, accepted := a.SimulateHistory("ab")
	assert.True(t, accepted)
	assert.Equal(t, []Step{
		{States: []string{"s"}, Pos: 0},
		{States: []string{"t"}, Pos: 2},
	}, history)

	// The greedy choice is final: after "ab" nothing leaves t.
	assert.False(t, a.Simulate("abb"))

	history, accepted = a.SimulateHistory("ax")
	assert.False(t, accepted)
	assert.Equal(t, []Step{
		{States: []string{"s"}, Pos: 0},
		{States: []string{"u"}, Pos: 1},
	}, history)
}

func TestSimulateCountsCharacters(t *testing.T) {
	a := New()
	require.NoError(t, a.AddState("p", AsStart()))
	require.NoError(t, a.AddState("q", AsFinal()))
	require.NoError(t, a.AddTransition("p", "βx", "q"))

	history, accepted := a.SimulateHistory("βx")
	assert.True(t, accepted)
	assert.Equal(t, 2, history[len(history)-1].Pos)
}
