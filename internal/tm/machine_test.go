package tm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// evenAs accepts strings of a's of even length.
func evenAs(t *testing.T) *Machine {
	t.Helper()
	m := New()
	require.NoError(t, m.AddState("q0", AsStart()))
	require.NoError(t, m.AddState("q1"))
	require.NoError(t, m.AddState("accept", AsFinal()))
	require.NoError(t, m.AddTransition("q0", "a", "q1", "a", Right))
	require.NoError(t, m.AddTransition("q1", "a", "q0", "a", Right))
	require.NoError(t, m.AddTransition("q0", ir.Blank, "accept", ir.Blank, Right))
	return m
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("L")
	require.NoError(t, err)
	assert.Equal(t, Left, m)

	m, err = ParseMove("R")
	require.NoError(t, err)
	assert.Equal(t, Right, m)
	assert.Equal(t, "R", m.String())

	_, err = ParseMove("S")
	assert.ErrorIs(t, err, ir.ErrInvalidMove)
}

func TestAlphabets(t *testing.T) {
	m := evenAs(t)
	assert.Equal(t, []string{"a"}, m.InputAlphabet())
	assert.Equal(t, []string{"a", ir.Blank}, m.TapeAlphabet())
}

func TestAddTransitionPreconditions(t *testing.T) {
	m := New()
	require.NoError(t, m.AddState("q0"))

	assert.ErrorIs(t, m.AddTransition("q0", "a", "nowhere", "a", Right), ir.ErrUnknownState)
	assert.ErrorIs(t, m.AddTransition("q0", "", "q0", "a", Right), ir.ErrEmptySymbol)
	assert.ErrorIs(t, m.AddTransition("q0", "a", "q0", "a", Move(7)), ir.ErrInvalidMove)
	assert.Empty(t, m.Transitions())
}

func TestAddTransitionReplacesRule(t *testing.T) {
	m := evenAs(t)
	require.NoError(t, m.AddTransition("q0", "a", "q0", "b", Left))
	assert.Contains(t, m.Transitions(), Transition{Src: "q0", Read: "a", Dst: "q0", Write: "b", Move: Left})
	assert.Len(t, m.Transitions(), 3)
}

func TestRemoveTransition(t *testing.T) {
	m := evenAs(t)
	require.True(t, m.RemoveTransition("q0", ir.Blank))
	assert.False(t, m.RemoveTransition("q0", ir.Blank))
	assert.False(t, m.Simulate("aa"))
	assert.Contains(t, m.TapeAlphabet(), ir.Blank)
}

func TestRemoveAndRenameState(t *testing.T) {
	m := evenAs(t)
	require.True(t, m.RemoveState("q1"))
	assert.Equal(t, []string{"accept", "q0"}, m.States())
	assert.Equal(t, []Transition{
		{Src: "q0", Read: ir.Blank, Dst: "accept", Write: ir.Blank, Move: Right},
	}, m.Transitions())

	assert.ErrorIs(t, m.RenameState("q0", "accept"), ir.ErrStateExists)
	require.NoError(t, m.RenameState("accept", "done"))
	assert.Equal(t, []string{"done"}, m.FinalStates())
	assert.True(t, m.Simulate(""))
}

func TestCustomBlank(t *testing.T) {
	m := New(WithBlank("_"))
	require.NoError(t, m.AddState("s", AsStart()))
	require.NoError(t, m.AddState("f", AsFinal()))
	require.NoError(t, m.AddTransition("s", "_", "f", "_", Left))

	assert.ErrorIs(t, m.AddTransition("s", ir.Blank, "f", "x", Left), ir.ErrReservedSymbol)
	assert.Empty(t, m.InputAlphabet())
	assert.True(t, m.Simulate(""))
}

func TestCloneIsIndependent(t *testing.T) {
	m := evenAs(t)
	c := m.Clone()
	require.NoError(t, c.AddTransition("q1", ir.Blank, "q1", ir.Blank, Left))
	require.True(t, c.RemoveState("accept"))

	assert.Len(t, m.Transitions(), 3)
	assert.True(t, m.Simulate("aa"))
}
