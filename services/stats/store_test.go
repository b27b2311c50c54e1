package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "stats.json"), zap.NewNop())
}

func TestStoreLoadCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	store := NewStore(path, zap.NewNop())

	stats, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalQuestions)
	assert.NotNil(t, stats.Sessions)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRecordQuestion(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordQuestion("sess-1"))
	require.NoError(t, store.RecordQuestion("sess-1"))
	require.NoError(t, store.RecordQuestion("sess-2"))

	stats, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalQuestions)
	assert.Equal(t, 2, stats.Sessions["sess-1"].Questions)
	assert.Equal(t, 1, stats.Sessions["sess-2"].Questions)
}

func TestRecordAnswered(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordQuestion("sess-1"))
	require.NoError(t, store.RecordAnswered("sess-1"))

	stats, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.QuestionsAnswered)
	assert.Equal(t, 1, stats.Sessions["sess-1"].Answered)
}

func TestRecordUnansweredDoesNotCountUsers(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordUnanswered("sess-ghost"))

	stats, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.Equal(t, 1, stats.QuestionsUnanswered)
	require.Contains(t, stats.Sessions, "sess-ghost")
	assert.Equal(t, 1, stats.Sessions["sess-ghost"].Unanswered)
}

func TestCorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	store := NewStore(path, zap.NewNop())

	require.NoError(t, store.RecordQuestion("sess-1"))

	stats, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQuestions)
	assert.Equal(t, 1, stats.TotalUsers)
}

func TestCountersPersistAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	first := NewStore(path, zap.NewNop())
	require.NoError(t, first.RecordQuestion("sess-1"))

	second := NewStore(path, zap.NewNop())
	require.NoError(t, second.RecordAnswered("sess-1"))

	stats, err := second.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalQuestions)
	assert.Equal(t, 1, stats.QuestionsAnswered)
}
