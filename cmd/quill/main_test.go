package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// setupConfig writes a config that keeps the project inside a temp dir.
func setupConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()

	cfg := storage.DefaultConfig()
	cfg.Backend = backend
	cfg.LogLevel = "error"
	cfg.ProjectPath = filepath.Join(dir, "project.json")
	if backend == storage.BackendSQLite {
		cfg.ProjectPath = filepath.Join(dir, "project.db")
	}

	path := filepath.Join(dir, "config.json")
	assert.NilError(t, storage.SaveConfig(path, &cfg))
	return path
}

// run executes one command line against a fresh command tree.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := run(t, configPath, args...)
	assert.NilError(t, err, "quill %s: %s", strings.Join(args, " "), out)
	return out
}

func TestNewAndTree(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)

	out := mustRun(t, cfg, "new")
	assert.Check(t, is.Contains(out, "Created a new project"))

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "Binder\n  Draft/ [Draft]"))
	assert.Check(t, is.Contains(tree, "\n    Chapter 1 [Draft]"))
	assert.Check(t, strings.HasSuffix(tree, "Trunk\n"))
}

func TestNew_RefusesToReplaceWithoutForce(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	mustRun(t, cfg, "new")
	mustRun(t, cfg, "add", "Extra")

	_, err := run(t, cfg, "new")
	assert.ErrorContains(t, err, "not empty")

	mustRun(t, cfg, "new", "--force")
	tree := mustRun(t, cfg, "tree")
	assert.Check(t, !strings.Contains(tree, "Extra"))
}

func TestAdd_NestsUnderParent(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)

	folder := strings.TrimSpace(mustRun(t, cfg, "add", "Part One", "--folder"))
	mustRun(t, cfg, "add", "Scene", "--parent", folder)

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "  Part One/ [Draft] ("+folder+")\n    Scene [Draft]"))
}

func TestAdd_UnknownParent(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)

	_, err := run(t, cfg, "add", "Lost", "--parent", "missing")
	assert.Assert(t, errors.Is(err, model.ErrNotFound), "got %v", err)

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, !strings.Contains(tree, "Lost"))
}

func TestEdit(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	id := strings.TrimSpace(mustRun(t, cfg, "add", "Scene"))

	mustRun(t, cfg, "edit", id, "--title", "Opening", "--status", "revised")
	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "Opening [Revised]"))

	_, err := run(t, cfg, "edit", id, "--status", "done")
	assert.ErrorContains(t, err, "unknown status")

	_, err = run(t, cfg, "edit", "missing", "--title", "x")
	assert.Assert(t, errors.Is(err, model.ErrNotFound), "got %v", err)
}

func TestMv(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	a := strings.TrimSpace(mustRun(t, cfg, "add", "Alpha"))
	b := strings.TrimSpace(mustRun(t, cfg, "add", "Beta"))

	mustRun(t, cfg, "mv", b, a, "--pos", "before")
	tree := mustRun(t, cfg, "tree")
	assert.Check(t, strings.Index(tree, "Beta") < strings.Index(tree, "Alpha"), tree)

	mustRun(t, cfg, "mv", b, a, "--pos", "inside")
	tree = mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "  Alpha [Draft] ("+a+")\n    Beta [Draft]"))

	_, err := run(t, cfg, "mv", a, b, "--pos", "inside")
	assert.Assert(t, errors.Is(err, model.ErrInvalidMove), "got %v", err)

	_, err = run(t, cfg, "mv", a, b, "--pos", "sideways")
	assert.Assert(t, errors.Is(err, model.ErrInvalidMove), "got %v", err)

	// no target: back to the binder root end
	mustRun(t, cfg, "mv", b)
	tree = mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "  Alpha [Draft] ("+a+")\n  Beta [Draft]"))
}

func TestAttachAndCrossCollectionMove(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	doc := strings.TrimSpace(mustRun(t, cfg, "add", "Scene"))

	file := filepath.Join(t.TempDir(), "map.png")
	assert.NilError(t, os.WriteFile(file, []byte("fake image"), 0644))
	att := strings.TrimSpace(mustRun(t, cfg, "attach", file))

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "Trunk\n  map.png (image/png) ("+att+")"))

	_, err := run(t, cfg, "mv", att, doc, "--pos", "after")
	assert.Assert(t, errors.Is(err, model.ErrInvalidMove), "got %v", err)
}

func TestRm(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	folder := strings.TrimSpace(mustRun(t, cfg, "add", "Part", "--folder"))
	mustRun(t, cfg, "add", "Scene", "--parent", folder)

	mustRun(t, cfg, "rm", folder)
	tree := mustRun(t, cfg, "tree")
	assert.Equal(t, tree, "Binder\nTrunk\n")

	_, err := run(t, cfg, "rm", folder)
	assert.Assert(t, errors.Is(err, model.ErrNotFound), "got %v", err)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := setupConfig(t, storage.BackendJSON)
	mustRun(t, src, "new")
	exported := mustRun(t, src, "export")

	file := filepath.Join(t.TempDir(), "snapshot.json")
	assert.NilError(t, os.WriteFile(file, []byte(exported), 0644))

	dst := setupConfig(t, storage.BackendJSON)
	out := mustRun(t, dst, "import", file)
	assert.Check(t, is.Contains(out, "Imported 1 binder roots, 0 trunk nodes"))
	assert.Equal(t, mustRun(t, dst, "export"), exported)
}

func TestImport_MalformedLeavesProject(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	mustRun(t, cfg, "new")
	before := mustRun(t, cfg, "export")

	file := filepath.Join(t.TempDir(), "bad.json")
	assert.NilError(t, os.WriteFile(file, []byte(`{"trunk": []}`), 0644))

	_, err := run(t, cfg, "import", file)
	assert.Assert(t, errors.Is(err, model.ErrMalformedImport), "got %v", err)
	assert.Equal(t, mustRun(t, cfg, "export"), before)
}

func TestImportHTMLAndCompile(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)

	page := `<html><body>
<h1>Part One</h1>
<h2>Arrival</h2><p>The train was late.</p>
<h2>Departure</h2><p>It left early.</p>
</body></html>`
	dir := t.TempDir()
	htmlFile := filepath.Join(dir, "draft.html")
	assert.NilError(t, os.WriteFile(htmlFile, []byte(page), 0644))

	out := mustRun(t, cfg, "import-html", htmlFile)
	assert.Check(t, is.Contains(out, "Imported 3 nodes"))

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "Part One/ [Draft]"))
	assert.Check(t, is.Contains(tree, "    Arrival [Draft]"))

	manuscript := filepath.Join(dir, "book.html")
	mustRun(t, cfg, "compile", manuscript, "--title", "Trains")
	data, err := os.ReadFile(manuscript)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), "<h1>Trains</h1>"))
	assert.Check(t, is.Contains(string(data), "<p>The train was late.</p>"))
}

func TestFind_List(t *testing.T) {
	cfg := setupConfig(t, storage.BackendJSON)
	mustRun(t, cfg, "new")

	out := mustRun(t, cfg, "find", "--list", "chap")
	assert.Check(t, is.Contains(out, "Chapter 1\t(binder: Draft)"))

	out = mustRun(t, cfg, "find", "zzzz")
	assert.Check(t, is.Contains(out, "No nodes found for 'zzzz'"))
}

func TestSQLiteBackend(t *testing.T) {
	cfg := setupConfig(t, storage.BackendSQLite)

	mustRun(t, cfg, "new")
	folder := strings.TrimSpace(mustRun(t, cfg, "add", "Notes", "--folder"))
	mustRun(t, cfg, "add", "Idea", "--parent", folder)

	tree := mustRun(t, cfg, "tree")
	assert.Check(t, is.Contains(tree, "Chapter 1 [Draft]"))
	assert.Check(t, is.Contains(tree, "  Notes/ [Draft] ("+folder+")\n    Idea [Draft]"))
}
