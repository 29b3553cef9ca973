package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesDB(t *testing.T) {
	s := newTestStore(t)

	// Verify tables exist
	tables := []string{"projects", "scenes", "targets", "meta"}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	// Verify schema version reached v2
	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, "2", version)
}

func TestProject_SaveAndGet(t *testing.T) {
	s := newTestStore(t)

	p := &Project{ID: "proj-1", Title: "Launch video", Format: "landscape", OwnerID: "user-1"}
	require.NoError(t, s.SaveProject(p))
	assert.NotZero(t, p.CreatedAt)

	got, err := s.GetProject("proj-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Launch video", got.Title)

	missing, err := s.GetProject("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScene_SaveListOrdered(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveProject(&Project{ID: "proj-1", Title: "p", Format: "square"}))
	require.NoError(t, s.SaveScene(&Scene{ID: "sc-b", ProjectID: "proj-1", Name: "Outro", Order: 2, Duration: 90}))
	require.NoError(t, s.SaveScene(&Scene{ID: "sc-a", ProjectID: "proj-1", Name: "Intro", Order: 1, Duration: 150}))

	scenes, err := s.ListScenes("proj-1")
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "sc-a", scenes[0].ID)
	assert.Equal(t, "sc-b", scenes[1].ID)
}

func TestScene_UpdateSource(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveProject(&Project{ID: "proj-1", Title: "p", Format: "portrait"}))
	require.NoError(t, s.SaveScene(&Scene{ID: "sc-1", ProjectID: "proj-1", Name: "Intro", SourceCode: "old"}))

	require.NoError(t, s.UpdateSceneSource("sc-1", "new source"))

	got, err := s.GetScene("sc-1")
	require.NoError(t, err)
	assert.Equal(t, "new source", got.SourceCode)

	assert.Error(t, s.UpdateSceneSource("missing", "x"))
}

func TestProjectDuration(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveProject(&Project{ID: "proj-1", Title: "p", Format: "landscape"}))
	require.NoError(t, s.SaveScene(&Scene{ID: "sc-1", ProjectID: "proj-1", Name: "a", Duration: 120}))
	require.NoError(t, s.SaveScene(&Scene{ID: "sc-2", ProjectID: "proj-1", Name: "b", Duration: 60}))

	total, err := s.ProjectDuration("proj-1")
	require.NoError(t, err)
	assert.Equal(t, 180, total)

	empty, err := s.ProjectDuration("none")
	require.NoError(t, err)
	assert.Equal(t, 0, empty)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate())
	require.NoError(t, s.migrate())
}

func TestMigrate_ReopenExistingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SaveProject(&Project{ID: "proj-1", Title: "p", Format: "landscape"}))
	require.NoError(t, s.Close())

	// Reopening must not re-run any migration step: the v2 ALTERs would fail
	// on the existing columns if the version row were reset.
	s2, err := New(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	p, err := s2.GetProject("proj-1")
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestMigrate_KeepsNewerSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE meta SET value = '3' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := New(dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()

	v, err := s2.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
