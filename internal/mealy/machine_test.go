package mealy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// parity emits the running parity of the 1s read so far.
func parity(t *testing.T) *Machine {
	t.Helper()
	m := New()
	require.NoError(t, m.AddState("even", AsStart()))
	require.NoError(t, m.AddState("odd"))
	require.NoError(t, m.AddTransition("even", "0", "even", "0"))
	require.NoError(t, m.AddTransition("even", "1", "odd", "1"))
	require.NoError(t, m.AddTransition("odd", "0", "odd", "1"))
	require.NoError(t, m.AddTransition("odd", "1", "even", "0"))
	return m
}

func TestAlphabets(t *testing.T) {
	m := parity(t)
	assert.Equal(t, []string{"0", "1"}, m.InputAlphabet())
	assert.Equal(t, []string{"0", "1"}, m.OutputAlphabet())
}

func TestFirstStateBecomesStart(t *testing.T) {
	m := New()
	require.NoError(t, m.AddState("b"))
	require.NoError(t, m.AddState("a"))
	start, ok := m.Start()
	require.True(t, ok)
	assert.Equal(t, "b", start)
}

func TestAddTransitionPreconditions(t *testing.T) {
	m := New()
	require.NoError(t, m.AddState("s"))

	assert.ErrorIs(t, m.AddTransition("s", ir.Epsilon, "s", "x"), ir.ErrEpsilonInput)
	assert.ErrorIs(t, m.AddTransition("s", "", "s", "x"), ir.ErrEmptySymbol)
	assert.ErrorIs(t, m.AddTransition("s", "a", "t", "x"), ir.ErrUnknownState)
	assert.True(t, ir.IsPrecondition(m.AddTransition("t", "a", "s", "x")))
	assert.Empty(t, m.Transitions())
	assert.Empty(t, m.InputAlphabet())
}

func TestAddTransitionReplacesRule(t *testing.T) {
	m := parity(t)
	require.NoError(t, m.AddTransition("even", "0", "odd", "z"))
	assert.Len(t, m.Transitions(), 4)
	out, ok := m.Simulate("0")
	require.True(t, ok)
	assert.Equal(t, "z", out)
}

func TestEmptyOutputEmitsNothing(t *testing.T) {
	m := New()
	require.NoError(t, m.AddState("s"))
	require.NoError(t, m.AddTransition("s", "a", "s", ""))
	require.NoError(t, m.AddTransition("s", "b", "s", ir.Epsilon))
	require.NoError(t, m.AddTransition("s", "c", "s", "C"))

	out, ok := m.Simulate("abcab")
	require.True(t, ok)
	assert.Equal(t, "C", out)
	assert.Equal(t, []string{"C"}, m.OutputAlphabet())
}

func TestRemoveTransition(t *testing.T) {
	m := parity(t)
	require.True(t, m.RemoveTransition("odd", "1"))
	assert.False(t, m.RemoveTransition("odd", "1"))
	assert.False(t, m.RemoveTransition("ghost", "1"))

	_, ok := m.Simulate("11")
	assert.False(t, ok)
	assert.Equal(t, []string{"0", "1"}, m.InputAlphabet())
}

func TestRemoveAndRenameState(t *testing.T) {
	m := parity(t)
	require.True(t, m.RemoveState("odd"))
	assert.False(t, m.RemoveState("odd"))
	assert.Equal(t, []Transition{{Src: "even", Input: "0", Dst: "even", Output: "0"}}, m.Transitions())

	require.NoError(t, m.RenameState("even", "e"))
	start, _ := m.Start()
	assert.Equal(t, "e", start)
	assert.ErrorIs(t, m.RenameState("ghost", "x"), ir.ErrUnknownState)
}

func TestRemoveStartLeavesNoStart(t *testing.T) {
	m := parity(t)
	require.True(t, m.RemoveState("even"))
	_, ok := m.Start()
	assert.False(t, ok)

	history, out, ok := m.SimulateHistory("1")
	assert.False(t, ok)
	assert.Empty(t, out)
	assert.Empty(t, history)
}

func TestCloneIsIndependent(t *testing.T) {
	m := parity(t)
	c := m.Clone()
	require.NoError(t, c.AddTransition("even", "2", "even", "2"))
	require.True(t, c.RemoveTransition("even", "0"))

	assert.Len(t, m.Transitions(), 4)
	assert.NotContains(t, m.InputAlphabet(), "2")
}
