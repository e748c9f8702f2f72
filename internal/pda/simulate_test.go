package pda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

func TestSimulateAnBn(t *testing.T) {
	p := anbn(t)
	tests := []struct {
		input string
		want  bool
	}{
		{"aabb", true},
		{"ab", true},
		{"aaabbb", true},
		{"aab", false},
		{"abb", false},
		{"ba", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Simulate(tt.input), "input %q", tt.input)
	}
}

func TestSimulateEmptyInputNeedsFinalStart(t *testing.T) {
	p := anbn(t)
	require.NoError(t, p.SetFinal("q0", true))
	assert.True(t, p.Simulate(""))
}

func TestSimulateHistory(t *testing.T) {
	history, accepted := anbn(t).SimulateHistory("ab")
	assert.True(t, accepted)
	assert.Equal(t, []Step{
		{Configuration: Configuration{State: "q0", Pos: 0, Stack: []string{"Z"}}, Active: 1},
		{Configuration: Configuration{State: "q0", Pos: 1, Stack: []string{"Z", "a"}}, Active: 1},
		{Configuration: Configuration{State: "q1", Pos: 2, Stack: []string{"Z"}}, Active: 2},
	}, history)
}

func TestSimulateStuckStopsHistory(t *testing.T) {
	history, accepted := anbn(t).SimulateHistory("abb")
	assert.False(t, accepted)
	assert.Len(t, history, 3)
}

func TestSimulateWithoutStart(t *testing.T) {
	history, accepted := New().SimulateHistory("a")
	assert.False(t, accepted)
	assert.Empty(t, history)
}

func TestSimulateSkipsLongerSymbolThatLeadsNowhere(t *testing.T) {
	p := New()
	require.NoError(t, p.AddState("s", AsStart()))
	require.NoError(t, p.AddState("f", AsFinal()))
	// "ab" needs X on top, which is never there.
	require.NoError(t, p.AddTransition("s", "ab", "X", "f", ir.Epsilon))
	require.NoError(t, p.AddTransition("s", "a", ir.Epsilon, "s", ir.Epsilon))
	require.NoError(t, p.AddTransition("s", "b", ir.Epsilon, "f", ir.Epsilon))

	history, accepted := p.SimulateHistory("ab")
	assert.True(t, accepted)
	require.Len(t, history, 3)
	assert.Equal(t, 1, history[1].Pos)
}

func TestSimulatePrefersLongestSymbol(t *testing.T) {
	p := New()
	require.NoError(t, p.AddState("s", AsStart()))
	require.NoError(t, p.AddState("f", AsFinal()))
	require.NoError(t, p.AddTransition("s", "ab", ir.Epsilon, "f", ir.Epsilon))
	require.NoError(t, p.AddTransition("s", "a", ir.Epsilon, "s", ir.Epsilon))

	history, accepted := p.SimulateHistory("ab")
	assert.True(t, accepted)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[1].Pos)
}

func TestPushOrderPutsLastCharacterOnTop(t *testing.T) {
	p := New()
	require.NoError(t, p.AddState("s", AsStart()))
	require.NoError(t, p.AddState("t"))
	require.NoError(t, p.AddState("f", AsFinal()))
	require.NoError(t, p.AddTransition("s", "x", ir.Epsilon, "t", "AB"))
	require.NoError(t, p.AddTransition("t", "y", "B", "f", ir.Epsilon))

	assert.True(t, p.Simulate("xy"))

	history, _ := p.SimulateHistory("x")
	assert.Equal(t, []string{"Z", "A", "B"}, history[1].Stack)
}

func TestEpsilonClosureAndMove(t *testing.T) {
	p := anbn(t)

	closure, truncated, err := p.EpsilonClosure(Configuration{State: "q1", Pos: 2, Stack: []string{"Z"}})
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, []Configuration{
		{State: "q1", Pos: 2, Stack: []string{"Z"}},
		{State: "q2", Pos: 2, Stack: []string{"Z"}},
	}, closure)

	again, _, err := p.EpsilonClosure(closure...)
	require.NoError(t, err)
	assert.Equal(t, closure, again)

	moved, err := p.Move([]Configuration{{State: "q0", Pos: 0, Stack: []string{"Z"}}}, "a")
	require.NoError(t, err)
	assert.Equal(t, []Configuration{{State: "q0", Pos: 1, Stack: []string{"Z", "a"}}}, moved)

	_, _, err = p.EpsilonClosure(Configuration{State: "ghost"})
	assert.ErrorIs(t, err, ir.ErrUnknownState)
}

func TestClosureBudget(t *testing.T) {
	p := New(WithMaxConfigurations(50))
	require.NoError(t, p.AddState("p", AsStart(), AsFinal()))
	// An empty move that pushes forever.
	require.NoError(t, p.AddTransition("p", ir.Epsilon, ir.Epsilon, "p", "A"))

	history, accepted := p.SimulateHistory("")
	assert.True(t, accepted)
	require.Len(t, history, 1)
	assert.True(t, history[0].Truncated)
	assert.Equal(t, 50, history[0].Active)
}

func TestCustomSentinels(t *testing.T) {
	p := New(WithEpsilon("λ"), WithStartStackSymbol("⊥"))
	require.NoError(t, p.AddState("s", AsStart()))
	require.NoError(t, p.AddState("f", AsFinal()))
	require.NoError(t, p.AddTransition("s", "λ", "⊥", "f", "λ"))

	history, accepted := p.SimulateHistory("")
	assert.True(t, accepted)
	assert.Equal(t, 2, history[0].Active)
	assert.Equal(t, []string{"⊥"}, p.StackAlphabet())
}
