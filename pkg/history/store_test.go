package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	t.Run("requires path", func(t *testing.T) {
		_, err := Open("", zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "history.db")
		store, err := Open(path, zerolog.Nop())
		require.NoError(t, err)
		defer store.Close()
		assert.FileExists(t, path)
	})
}

func TestRecord(t *testing.T) {
	t.Run("generates ID when empty", func(t *testing.T) {
		store := newTestStore(t)

		run, err := store.Record(Run{Mode: "platform", ScannedCount: 50, AlertedCount: 2, Status: "completed"})
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.False(t, run.StartedAt.IsZero())
	})

	t.Run("round-trips fields", func(t *testing.T) {
		store := newTestStore(t)

		started := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		_, err := store.Record(Run{
			ID:           "run-abc",
			StartedAt:    started,
			Mode:         "local",
			ScannedCount: 12,
			AlertedCount: 1,
			LastTS:       "1712345678.000100",
			Status:       "completed",
		})
		require.NoError(t, err)

		last, err := store.LastRun()
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, "run-abc", last.ID)
		assert.Equal(t, "local", last.Mode)
		assert.Equal(t, 12, last.ScannedCount)
		assert.Equal(t, 1, last.AlertedCount)
		assert.Equal(t, "1712345678.000100", last.LastTS)
		assert.Equal(t, started.UnixMilli(), last.StartedAt.UnixMilli())
	})
}

func TestRecent(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := store.Record(Run{
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			Mode:         "platform",
			ScannedCount: i,
			Status:       "completed",
		})
		require.NoError(t, err)
	}

	runs, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, 4, runs[0].ScannedCount)
	assert.Equal(t, 3, runs[1].ScannedCount)
	assert.Equal(t, 2, runs[2].ScannedCount)
}

func TestLastRunEmpty(t *testing.T) {
	store := newTestStore(t)

	last, err := store.LastRun()
	require.NoError(t, err)
	assert.Nil(t, last)
}
