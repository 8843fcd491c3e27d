package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/storage"
	"gotest.tools/v3/assert"
)

func stringPtr(s string) *string { return &s }

// sampleProject builds a small project with nesting, ordering and an attachment.
func sampleProject(t *testing.T) *model.Project {
	t.Helper()
	p := model.NewProject(model.ProjectParams{})
	err := p.Restore(model.Snapshot{
		Binder: []*model.Node{
			{ID: "draft", Title: "Draft", IsFolder: true, Children: []*model.Node{
				{ID: "ch1", Title: "Chapter 1", Body: "<p>One</p>", Status: model.StatusRevised},
				{ID: "ch2", Title: "Chapter 2", Children: []*model.Node{
					{ID: "sc1", Title: "Scene", Synopsis: "The turn"},
				}},
			}},
			{ID: "notes", Title: "Notes", IsFolder: true},
		},
		Trunk: []*model.Node{
			{ID: "img", Title: "cover.png", FileType: "image/png", FileData: "AAAA",
				CorkboardOptions: &model.CorkboardOptions{CardWidth: 180, Ratio: "3:2"}},
		},
	})
	assert.NilError(t, err)
	return p
}

func exported(t *testing.T, p *model.Project) string {
	t.Helper()
	data, err := p.Export()
	assert.NilError(t, err)
	return string(data)
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	p := sampleProject(t)

	s := storage.NewJSONStorage(path)
	assert.NilError(t, s.Save(p))

	_, err := os.Stat(path)
	assert.NilError(t, err)

	loaded := model.NewProject(model.ProjectParams{})
	assert.NilError(t, s.Load(loaded))

	assert.Equal(t, exported(t, loaded), exported(t, p))
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "missing.json"))
	p := model.NewProject(model.ProjectParams{})
	p.Seed()

	assert.NilError(t, s.Load(p))
	assert.Equal(t, len(p.Binder), 1)
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "project.json")
	s := storage.NewJSONStorage(path)

	assert.NilError(t, s.Save(model.NewProject(model.ProjectParams{})))

	_, err := os.Stat(path)
	assert.NilError(t, err)
}

func TestJSONStorage_LoadMalformedKeepsProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	assert.NilError(t, os.WriteFile(path, []byte("{broken"), 0644))

	p := sampleProject(t)
	before := exported(t, p)

	err := storage.NewJSONStorage(path).Load(p)
	assert.ErrorIs(t, err, model.ErrMalformedImport)
	assert.Equal(t, exported(t, p), before)
}

func TestJSONStorage_LoadsLegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	assert.NilError(t, os.WriteFile(path, []byte(`[{"id":"a","title":"Old"}]`), 0644))

	p := model.NewProject(model.ProjectParams{})
	assert.NilError(t, storage.NewJSONStorage(path).Load(p))

	assert.Equal(t, p.Binder[0].Title, "Old")
	assert.Equal(t, len(p.Trunk), 0)
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()

	s, err := storage.OpenStorage(&storage.Config{Backend: storage.BackendJSON, ProjectPath: filepath.Join(dir, "p.json")})
	assert.NilError(t, err)
	_, ok := s.(*storage.JSONStorage)
	assert.Assert(t, ok)

	s, err = storage.OpenStorage(&storage.Config{Backend: storage.BackendSQLite, ProjectPath: filepath.Join(dir, "p.db")})
	assert.NilError(t, err)
	db, ok := s.(*storage.SQLiteStorage)
	assert.Assert(t, ok)
	assert.NilError(t, db.Close())

	_, err = storage.OpenStorage(&storage.Config{Backend: "xml"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
