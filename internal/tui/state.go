package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/search"
	"github.com/nikbrunner/quill/internal/tui/layout"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRename
	ModeSynopsis
	ModeConfirmDelete
	ModeMove
	ModeSearch
	ModeHelp
)

// Row is one visible line of the outline.
type Row struct {
	Node       *model.Node
	Collection model.Collection
	Depth      int
}

// flattenRows lists the binder depth-first followed by the trunk.
func flattenRows(p *model.Project) []Row {
	var rows []Row
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, Row{Node: n, Collection: model.CollectionBinder, Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(p.Binder, 0)

	for _, n := range p.Trunk {
		rows = append(rows, Row{Node: n, Collection: model.CollectionTrunk})
	}
	return rows
}

// ModalState holds state for the edit and confirm modals.
type ModalState struct {
	Input      textinput.Model
	EditItemID string
}

// NewModalState creates a ModalState with an initialized input.
func NewModalState(cfg layout.LayoutConfig) ModalState {
	input := textinput.New()
	input.CharLimit = cfg.Input.TitleCharLimit
	input.Width = cfg.Input.StandardWidth
	return ModalState{Input: input}
}

// Reset clears the modal for a new session.
func (m *ModalState) Reset() {
	m.Input.Reset()
	m.Input.Blur()
	m.EditItemID = ""
}

// SearchState holds state for the fuzzy finder.
type SearchState struct {
	Input   textinput.Model
	Results []search.SearchResult
	Cursor  int
}

// NewSearchState creates a SearchState with an initialized input.
func NewSearchState(cfg layout.LayoutConfig) SearchState {
	input := textinput.New()
	input.Placeholder = "Find..."
	input.CharLimit = cfg.Input.TitleCharLimit
	input.Width = cfg.Input.StandardWidth
	return SearchState{Input: input}
}

// Reset clears the finder for a new session.
func (s *SearchState) Reset() {
	s.Input.Reset()
	s.Input.Blur()
	s.Results = nil
	s.Cursor = 0
}
