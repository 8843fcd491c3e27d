package storage_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func openSQLite(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s := openSQLite(t, filepath.Join(t.TempDir(), "project.db"))
	p := sampleProject(t)

	assert.NilError(t, s.Save(p))

	loaded := model.NewProject(model.ProjectParams{})
	assert.NilError(t, s.Load(loaded))

	assert.Equal(t, exported(t, loaded), exported(t, p))
	assert.Equal(t, *model.FindByID(loaded.Binder, "sc1").ParentID, "ch2")
	assert.Equal(t, loaded.Trunk[0].CorkboardOptions.CardWidth, 180)
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s := openSQLite(t, filepath.Join(t.TempDir(), "empty.db"))

	p := model.NewProject(model.ProjectParams{})
	assert.NilError(t, s.Load(p))

	assert.Equal(t, len(p.Binder), 0)
	assert.Equal(t, len(p.Trunk), 0)
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	s := openSQLite(t, filepath.Join(t.TempDir(), "nested", "dir", "project.db"))

	assert.NilError(t, s.Save(model.NewProject(model.ProjectParams{})))
}

func TestSQLiteStorage_SaveReplacesPreviousContent(t *testing.T) {
	s := openSQLite(t, filepath.Join(t.TempDir(), "project.db"))
	p := sampleProject(t)
	assert.NilError(t, s.Save(p))

	assert.Assert(t, p.DeleteNode("draft"))
	assert.NilError(t, p.MoveNode("notes", nil, model.PositionAfter))
	assert.NilError(t, s.Save(p))

	loaded := model.NewProject(model.ProjectParams{})
	assert.NilError(t, s.Load(loaded))

	assert.Equal(t, len(loaded.Binder), 1)
	assert.Equal(t, loaded.Binder[0].ID, "notes")
	_, _, ok := loaded.Find("sc1")
	assert.Assert(t, !ok)
}

func TestSQLiteStorage_PreservesOrderAfterMoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")
	s := openSQLite(t, path)
	p := sampleProject(t)

	assert.NilError(t, p.MoveNode("ch2", stringPtr("ch1"), model.PositionBefore))
	assert.NilError(t, p.MoveNode("notes", stringPtr("draft"), model.PositionBefore))
	assert.NilError(t, s.Save(p))

	// Reopen to read through a fresh connection
	reopened := openSQLite(t, path)
	loaded := model.NewProject(model.ProjectParams{})
	assert.NilError(t, reopened.Load(loaded))

	assert.Equal(t, loaded.Binder[0].ID, "notes")
	assert.Equal(t, loaded.Binder[1].Children[0].ID, "ch2")
	assert.Equal(t, loaded.Binder[1].Children[1].ID, "ch1")
}

func TestSQLiteStorage_LoadRejectsBrokenCorkboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")
	s := openSQLite(t, path)
	assert.NilError(t, s.Save(sampleProject(t)))

	db, err := sql.Open("sqlite", path)
	assert.NilError(t, err)
	defer db.Close()
	_, err = db.Exec(`UPDATE nodes SET corkboard = '{not json' WHERE id = 'img'`)
	assert.NilError(t, err)

	loaded := model.NewProject(model.ProjectParams{})
	err = s.Load(loaded)
	assert.Check(t, is.ErrorContains(err, `node "img": corkboard options`))
	assert.Equal(t, len(loaded.Binder), 0)
	assert.Equal(t, len(loaded.Trunk), 0)
}
