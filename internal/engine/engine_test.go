package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/testutil"
)

func load(t *testing.T, m *ir.Machine, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithLogger(DiscardLogger())}, opts...)
	e, err := Load(m, opts...)
	require.NoError(t, err)
	require.Empty(t, e.Warnings())
	return e
}

func TestLoadEveryKind(t *testing.T) {
	for _, m := range testutil.All() {
		t.Run(m.Name, func(t *testing.T) {
			e := load(t, m)
			assert.Equal(t, m.Name, e.Name())
			assert.Equal(t, m.Kind(), e.Kind())
			assert.Equal(t, m.Kind(), e.Machine().Kind())
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for _, m := range []*ir.Machine{testutil.EvenZeros(), testutil.Parity()} {
		e := load(t, m)
		assert.Equal(t, m.Document, e.Document())
	}
}

func TestLoadRejectsMissingDocument(t *testing.T) {
	_, err := Load(nil)
	assert.True(t, IsUnsupportedError(err))

	_, err = Load(&ir.Machine{Name: "empty"})
	require.Error(t, err)
	assert.True(t, IsUnsupportedError(err))
	assert.Contains(t, err.Error(), "machine=empty")
}

func TestLoadCollectsWarnings(t *testing.T) {
	m := testutil.EvenZeros()
	doc := m.Document.(ir.FADocument)
	doc.Transitions = append(doc.Transitions, ir.FATransition{Src: "even", Symbol: "2", Dsts: []string{"nowhere"}})
	m.Document = doc

	e, err := Load(m, WithLogger(DiscardLogger()))
	require.NoError(t, err)
	assert.Len(t, e.Warnings(), 1)
	assert.True(t, e.Run("00").Accepted())
}

func TestLoadJSON(t *testing.T) {
	for _, m := range testutil.All() {
		t.Run(m.Name, func(t *testing.T) {
			data, err := ir.EncodeDocument(m.Document)
			require.NoError(t, err)

			e, err := LoadJSON(m.Name, data, WithLogger(DiscardLogger()))
			require.NoError(t, err)
			assert.Equal(t, m.Kind(), e.Kind())
			assert.Empty(t, e.Warnings())

			again, err := e.ToJSON()
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestLoadJSONGarbage(t *testing.T) {
	_, err := LoadJSON("junk", []byte("not json"))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}

func TestToDFAAndMinimize(t *testing.T) {
	nfa := load(t, testutil.EndsInABB())

	_, err := nfa.Minimize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ir.ErrNotDFA)
	assert.True(t, ir.IsPrecondition(err))

	dfa, err := nfa.ToDFA()
	require.NoError(t, err)
	assert.Equal(t, "ends_in_abb", dfa.Name())
	assert.True(t, dfa.Automaton().IsDFA())
	assert.Len(t, dfa.Automaton().States(), 4)

	minimal, err := dfa.Minimize()
	require.NoError(t, err)
	assert.Len(t, minimal.Automaton().States(), 4)

	for _, in := range []string{"abb", "aabb", "ab", ""} {
		assert.Equal(t, nfa.Run(in).Verdict, minimal.Run(in).Verdict, "input %q", in)
	}
	assert.Len(t, nfa.Automaton().States(), 4, "source engine is untouched")
}

func TestGrammar(t *testing.T) {
	e := load(t, testutil.EvenZeros())
	g, err := e.Grammar(false)
	require.NoError(t, err)
	assert.Equal(t, "even", g.Start)
	assert.Equal(t, []string{"0", "1"}, g.Terminals)
}

func TestFiniteOnlyOperations(t *testing.T) {
	for _, m := range []*ir.Machine{testutil.AnBn(), testutil.EvenAs(), testutil.Parity(), testutil.Mod3()} {
		t.Run(m.Name, func(t *testing.T) {
			e := load(t, m)
			assert.Nil(t, e.Automaton())

			_, err := e.ToDFA()
			assert.True(t, IsUnsupportedError(err))
			_, err = e.Minimize()
			assert.True(t, IsUnsupportedError(err))
			_, err = e.Grammar(true)
			assert.True(t, IsUnsupportedError(err))
		})
	}
}
