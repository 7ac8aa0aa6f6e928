package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-browser-search/model"
	"github.com/gcbaptista/go-browser-search/store"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.gob")

	visited := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := store.NewSnapshot(
		[]model.SearchableEntity{
			{ID: "b1", Type: model.EntityTypeBookmark, Title: "Inbox", URL: "https://mail.example.com",
				FolderPath: []string{"Work"}, Tags: []string{"work"}, VisitCount: 3, LastVisitedAt: &visited},
		},
		[]model.SearchableEntity{{ID: "se-google", Type: model.EntityTypeSearchEngine, Title: "Google"}},
	)

	require.NoError(t, SaveGob(path, snap))

	var loaded store.Snapshot
	require.NoError(t, LoadGob(path, &loaded))

	require.Len(t, loaded.Entities, 1)
	assert.Equal(t, "Inbox", loaded.Entities[0].Title)
	assert.Equal(t, []string{"work"}, loaded.Entities[0].Tags)
	require.NotNil(t, loaded.Entities[0].LastVisitedAt)
	assert.True(t, visited.Equal(*loaded.Entities[0].LastVisitedAt))
	assert.Len(t, loaded.SearchEngines, 1)

	// No temp files are left next to the target
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadGob_MissingFile(t *testing.T) {
	var snap store.Snapshot
	err := LoadGob(filepath.Join(t.TempDir(), "missing.gob"), &snap)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadGob_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gob")
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o600))

	var snap store.Snapshot
	err := LoadGob(path, &snap)
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
