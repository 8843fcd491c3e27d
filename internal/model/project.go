package model

import "go.uber.org/zap"

// Collection names one of the two node lists of a project.
type Collection int

const (
	CollectionBinder Collection = iota // hierarchical documents and folders
	CollectionTrunk                    // flat attachments
)

func (c Collection) String() string {
	if c == CollectionTrunk {
		return "trunk"
	}
	return "binder"
}

// Project holds the binder and trunk collections plus navigation state.
// It is not safe for concurrent use; every call runs to completion before
// the next one may start.
type Project struct {
	Binder []*Node
	Trunk  []*Node

	ActiveNodeID   *string
	SelectedNodeID *string
	DraggedNodeID  *string // advisory, never drives structure

	newID  func() string
	logger *zap.Logger
}

// ProjectParams holds parameters for creating a new Project.
type ProjectParams struct {
	Logger *zap.Logger   // optional, uses a no-op logger if nil
	NewID  func() string // optional, uses GenerateUUID if nil
}

// NewProject creates an empty Project.
func NewProject(params ProjectParams) *Project {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := params.NewID
	if newID == nil {
		newID = GenerateUUID
	}

	return &Project{
		Binder: []*Node{},
		Trunk:  []*Node{},
		newID:  newID,
		logger: logger,
	}
}

// Seed fills an empty project with a "Draft" folder holding a first chapter
// and opens the chapter for editing.
func (p *Project) Seed() {
	draft := p.newNode(nil, true)
	draft.Title = "Draft"
	draft.Synopsis = "Main draft folder"

	chapter := p.newNode(&draft.ID, false)
	chapter.Title = "Chapter 1"
	chapter.Body = "<p>It was a dark and stormy night...</p>"
	chapter.Synopsis = "Introduction to the protagonist"

	draft.Children = append(draft.Children, chapter)
	p.Binder = append(p.Binder, draft)
	p.ActiveNodeID = strPtr(chapter.ID)
}

// Collection returns the root list of c.
func (p *Project) Collection(c Collection) []*Node {
	if c == CollectionTrunk {
		return p.Trunk
	}
	return p.Binder
}

// rootList returns a pointer to the root slice of c so it can be rewritten.
func (p *Project) rootList(c Collection) *[]*Node {
	if c == CollectionTrunk {
		return &p.Trunk
	}
	return &p.Binder
}

func (p *Project) newNode(parentID *string, isFolder bool) *Node {
	title := defaultDocumentTitle
	if isFolder {
		title = defaultFolderTitle
	}
	return &Node{
		ID:       p.newID(),
		Title:    title,
		Status:   StatusDraft,
		Children: []*Node{},
		ParentID: copyPtr(parentID),
		IsFolder: isFolder,
	}
}

// ActiveNode returns the node open for editing, or nil.
func (p *Project) ActiveNode() *Node {
	return p.lookupPtr(p.ActiveNodeID)
}

// SelectedNode returns the node highlighted for inspection, or nil.
func (p *Project) SelectedNode() *Node {
	return p.lookupPtr(p.SelectedNodeID)
}

func (p *Project) lookupPtr(id *string) *Node {
	if id == nil {
		return nil
	}
	n, _, ok := p.Find(*id)
	if !ok {
		return nil
	}
	return n
}

// SetActiveNode opens id for editing and clears the selection.
func (p *Project) SetActiveNode(id string) {
	p.ActiveNodeID = strPtr(id)
	p.SelectedNodeID = nil
}

// SetSelectedNode highlights id, or clears the highlight when id is nil.
// The active node is left alone.
func (p *Project) SetSelectedNode(id *string) {
	p.SelectedNodeID = copyPtr(id)
}

// SetDraggedNodeID records the drag source for visual feedback only.
func (p *Project) SetDraggedNodeID(id *string) {
	p.DraggedNodeID = copyPtr(id)
}

func strPtr(s string) *string { return &s }

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

