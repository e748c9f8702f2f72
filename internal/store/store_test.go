package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/testutil"
)

// createTestStore creates a new in-memory store with deterministic IDs and
// timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:",
		WithIDGenerator(testutil.NewSequentialIDGenerator("rev")),
		WithClock(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Pragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	_, _, err = s1.Save(ctx, testutil.EvenZeros())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	names, err := s2.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"even_zeros"}, names)

	rev, err := s2.Latest(ctx, "even_zeros")
	require.NoError(t, err)
	assert.Len(t, rev.ID, 36, "default IDs are UUIDs")
}

func TestSave_AppendsRevision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, saved, err := s.Save(ctx, testutil.EvenZeros())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(1), rev.Seq)
	assert.Equal(t, "rev-0001", rev.ID)
	assert.Equal(t, "even_zeros", rev.Name)
	assert.Equal(t, ir.KindFA, rev.Kind)
	assert.Equal(t, time.Unix(1, 0).UTC(), rev.CreatedAt)
	assert.Len(t, rev.ContentHash, 64)

	latest, err := s.Latest(ctx, "even_zeros")
	require.NoError(t, err)
	assert.Equal(t, rev, latest)
}

func TestSave_SkipsUnchangedContent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, saved, err := s.Save(ctx, testutil.EvenZeros())
	require.NoError(t, err)
	require.True(t, saved)

	again, saved, err := s.Save(ctx, testutil.EvenZeros())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, first, again)

	changed := testutil.EvenZeros()
	doc := changed.Document.(ir.FADocument)
	doc.FinalStates = []string{"odd"}
	changed.Document = doc

	second, saved, err := s.Save(ctx, changed)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(2), second.Seq)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)
}

func TestSave_NormalizationDoesNotCreateRevision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	machine := func(state string) *ir.Machine {
		return &ir.Machine{Name: "cafe", Document: ir.FADocument{
			Kind:       ir.KindFA,
			States:     []string{state},
			StartState: state,
		}}
	}

	_, saved, err := s.Save(ctx, machine("caf\u00e9"))
	require.NoError(t, err)
	require.True(t, saved)

	_, saved, err = s.Save(ctx, machine("cafe\u0301"))
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSave_SameContentUnderTwoNames(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a, _, err := s.Save(ctx, testutil.Parity())
	require.NoError(t, err)

	copied := testutil.Parity()
	copied.Name = "parity_copy"
	b, saved, err := s.Save(ctx, copied)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, a.ContentHash, b.ContentHash)
}

func TestSave_RejectsEmptyName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.Save(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyName)

	m := testutil.EvenZeros()
	m.Name = "  "
	_, _, err = s.Save(ctx, m)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, _, err = s.Save(ctx, &ir.Machine{Name: "nodoc"})
	assert.Error(t, err)
}

func TestSave_BodyIsCanonicalDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, _, err := s.Save(ctx, testutil.Forever())
	require.NoError(t, err)

	assert.NotContains(t, string(rev.Body), "null")
	assert.NotContains(t, string(rev.Body), "\n")

	kind, err := ir.DetectKind(rev.Body)
	require.NoError(t, err)
	assert.Equal(t, ir.KindTM, kind)

	doc, warnings, err := ir.DecodeTM(rev.Body)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"q0"}, doc.States)
	assert.Equal(t, []string{"q0", ir.Blank, "R"}, doc.Transitions["q0,β"])
}

func TestRevisionLookup(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, _, err := s.Save(ctx, testutil.Mod3())
	require.NoError(t, err)

	got, err := s.Revision(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, rev, got)

	_, err = s.Revision(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Latest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryAndNames(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.History(ctx, "even_as")
	require.NoError(t, err)
	assert.Equal(t, []Revision{}, empty)

	for _, m := range testutil.All() {
		_, _, err := s.Save(ctx, m)
		require.NoError(t, err)
	}
	changed := testutil.EvenAs()
	doc := changed.Document.(ir.TMDocument)
	doc.StartState = "q1"
	changed.Document = doc
	_, _, err = s.Save(ctx, changed)
	require.NoError(t, err)

	history, err := s.History(ctx, "even_as")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Less(t, history[0].Seq, history[1].Seq)
	assert.Equal(t, "rev-0003", history[0].ID)
	assert.Equal(t, "rev-0006", history[1].ID)

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"anbn", "even_as", "even_zeros", "mod3", "parity"}, names)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), last)
}
