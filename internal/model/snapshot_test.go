package model_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/quill/internal/model"
	"go.uber.org/zap/zaptest"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"
)

func TestExport_Golden(t *testing.T) {
	p := draftProject(t)

	data, err := p.Export()
	assert.NilError(t, err)
	golden.Assert(t, string(data), "export_draft.golden")
}

func TestExport_KeepsMarkupReadable(t *testing.T) {
	p := draftProject(t)
	body := `<p>It was a <em>dark</em> & stormy night</p>`
	p.UpdateNode("C", model.NodePatch{Body: &body})

	data, err := p.Export()
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(data), body))
}

func TestExportImport_RoundTrip(t *testing.T) {
	p := outlineProject(t)
	body := "<p>hello</p>"
	status := model.StatusFinal
	img := "data:image/png;base64,AAAA"
	p.UpdateNode("A2a", model.NodePatch{Body: &body, Status: &status, SynopsisImage: &img})
	p.UpdateNode("T1", model.NodePatch{CorkboardOptions: &model.CorkboardOptions{CardWidth: 3, Ratio: "4:3"}})

	data, err := p.Export()
	assert.NilError(t, err)

	q := newTestProject()
	assert.NilError(t, q.Import(data))

	assert.DeepEqual(t, q.Snapshot(), p.Snapshot())
	assert.Equal(t, exported(t, q), string(data))
}

func TestImport_LegacyArray(t *testing.T) {
	p := draftProject(t)

	err := p.Import([]byte(`[{"id":"x","title":"Old","children":[{"id":"y","title":"Kid","children":[]}]}]`))
	assert.NilError(t, err)

	assert.DeepEqual(t, ids(p.Binder), []string{"x"})
	assert.Equal(t, len(p.Trunk), 0)

	y := model.FindByID(p.Binder, "y")
	assert.Equal(t, *y.ParentID, "x")
	assert.Equal(t, y.Status, model.StatusDraft)
}

func TestImport_ObjectWithoutTrunk(t *testing.T) {
	p := draftProject(t)

	assert.NilError(t, p.Import([]byte(`{"binder":[{"id":"x","title":"Only"}]}`)))

	assert.DeepEqual(t, ids(p.Binder), []string{"x"})
	assert.Equal(t, len(p.Trunk), 0)
	assert.Assert(t, p.Binder[0].Children != nil)
}

func TestImport_RederivesParentIDs(t *testing.T) {
	p := newTestProject()

	err := p.Import([]byte(`{"binder":[{"id":"a","parentId":"zzz","children":[{"id":"b","parentId":null}]}],"trunk":[{"id":"t","parentId":"a"}]}`))
	assert.NilError(t, err)

	assert.Assert(t, model.FindByID(p.Binder, "a").ParentID == nil)
	assert.Equal(t, *model.FindByID(p.Binder, "b").ParentID, "a")
	assert.Assert(t, p.Trunk[0].ParentID == nil)
}

func TestImport_ResetsNavigation(t *testing.T) {
	p := draftProject(t)
	p.SetActiveNode("C")
	p.SetSelectedNode(stringPtr("D"))
	p.SetDraggedNodeID(stringPtr("C"))

	assert.NilError(t, p.Import([]byte(`[]`)))

	assert.Assert(t, p.ActiveNodeID == nil)
	assert.Assert(t, p.SelectedNodeID == nil)
	assert.Assert(t, p.DraggedNodeID == nil)
}

func TestImport_FailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "not json"},
		{name: "empty", input: "   "},
		{name: "scalar", input: `42`},
		{name: "object without binder", input: `{"trunk":[]}`},
		{name: "null binder", input: `{"binder":null}`},
		{name: "truncated", input: `{"binder":[{"id":"a"`},
		{name: "null node", input: `[null]`},
		{name: "missing id", input: `[{"title":"anon"}]`},
		{name: "duplicate id across collections", input: `{"binder":[{"id":"a"}],"trunk":[{"id":"a"}]}`},
		{name: "duplicate nested id", input: `[{"id":"a","children":[{"id":"a"}]}]`},
		{name: "unknown status", input: `[{"id":"a","status":"Published"}]`},
		{name: "trunk node with children", input: `{"binder":[],"trunk":[{"id":"t","children":[{"id":"u"}]}]}`},
		{name: "wrong field type", input: `[{"id":7}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.NewProject(model.ProjectParams{
				NewID:  sequentialIDs(),
				Logger: zaptest.NewLogger(t),
			})
			assert.NilError(t, p.Restore(model.Snapshot{
				Binder: []*model.Node{{ID: "D", Children: []*model.Node{{ID: "C"}}}},
				Trunk:  []*model.Node{{ID: "I"}},
			}))
			p.SetActiveNode("C")
			p.SetSelectedNode(stringPtr("D"))
			before := exported(t, p)

			err := p.Import([]byte(tt.input))
			assert.ErrorIs(t, err, model.ErrMalformedImport)

			assert.Equal(t, exported(t, p), before)
			assert.Equal(t, *p.ActiveNodeID, "C")
			assert.Equal(t, *p.SelectedNodeID, "D")
		})
	}
}
