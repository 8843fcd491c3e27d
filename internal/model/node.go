package model

// Status is the editorial state of a node.
type Status string

const (
	StatusDraft   Status = "Draft"
	StatusRevised Status = "Revised"
	StatusFinal   Status = "Final"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusRevised, StatusFinal:
		return true
	}
	return false
}

const (
	defaultFolderTitle   = "New Folder"
	defaultDocumentTitle = "New Document"
)

// CorkboardOptions holds display sizing hints for the index card view.
type CorkboardOptions struct {
	CardWidth  int    `json:"cardWidth,omitempty"`
	CardHeight int    `json:"cardHeight,omitempty"`
	Ratio      string `json:"ratio,omitempty"`
}

// Node is a document, folder or attachment in a project.
// A node owns its Children; ParentID is a back-reference kept in sync
// by the Project on every structural change.
type Node struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Body             string            `json:"body"` // rich markup, opaque here
	Synopsis         string            `json:"synopsis"`
	SynopsisImage    string            `json:"synopsisImage,omitempty"`
	Status           Status            `json:"status"`
	Children         []*Node           `json:"children"`
	ParentID         *string           `json:"parentId"` // nil = collection root
	IsFolder         bool              `json:"isFolder"`
	CorkboardOptions *CorkboardOptions `json:"corkboardOptions,omitempty"`
	FileData         string            `json:"fileData,omitempty"`
	FileType         string            `json:"fileType,omitempty"`
}

// IsAttachment reports whether the node carries a file payload.
func (n *Node) IsAttachment() bool {
	return n.FileType != "" || n.FileData != ""
}

// Attachment describes a file handed over for the trunk.
type Attachment struct {
	Name     string
	MimeType string
	Data     string // base64 payload
}

// NodePatch lists the fields UpdateNode may overwrite. Nil fields are left
// untouched. Structural fields (Children, ParentID, ID) are not patchable.
type NodePatch struct {
	Title            *string
	Body             *string
	Synopsis         *string
	SynopsisImage    *string
	Status           *Status
	IsFolder         *bool
	CorkboardOptions *CorkboardOptions
	FileData         *string
	FileType         *string
}

func (p NodePatch) apply(n *Node) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.Synopsis != nil {
		n.Synopsis = *p.Synopsis
	}
	if p.SynopsisImage != nil {
		n.SynopsisImage = *p.SynopsisImage
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
	if p.IsFolder != nil {
		n.IsFolder = *p.IsFolder
	}
	if p.CorkboardOptions != nil {
		opts := *p.CorkboardOptions
		n.CorkboardOptions = &opts
	}
	if p.FileData != nil {
		n.FileData = *p.FileData
	}
	if p.FileType != nil {
		n.FileType = *p.FileType
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Contains reports whether id names n or any node in its subtree.
func (n *Node) Contains(id string) bool {
	return FindByID([]*Node{n}, id) != nil
}
