package model

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Position says where a moved node lands relative to its target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// ParsePosition converts user input into a Position.
func ParsePosition(s string) (Position, error) {
	switch pos := Position(s); pos {
	case PositionBefore, PositionAfter, PositionInside:
		return pos, nil
	}
	return "", fmt.Errorf("%w: unknown position %q", ErrInvalidMove, s)
}

// AddNode creates a document or folder. A nil parentID appends it to the
// binder root; otherwise it becomes the last child of the binder node
// parentID. An unknown parent is an error and nothing is created.
// The new node becomes active.
func (p *Project) AddNode(parentID *string, isFolder bool) (*Node, error) {
	if parentID == nil {
		n := p.newNode(nil, isFolder)
		p.Binder = append(p.Binder, n)
		p.ActiveNodeID = strPtr(n.ID)
		return n, nil
	}

	parent := FindByID(p.Binder, *parentID)
	if parent == nil {
		p.logger.Debug("add node: parent not in binder", zap.String("parentId", *parentID))
		return nil, fmt.Errorf("add node under %q: %w", *parentID, ErrNotFound)
	}

	n := p.newNode(&parent.ID, isFolder)
	parent.Children = append(parent.Children, n)
	p.ActiveNodeID = strPtr(n.ID)
	return n, nil
}

// AddTrunkNode appends an attachment to the trunk and makes it active.
func (p *Project) AddTrunkNode(att Attachment) *Node {
	n := p.newNode(nil, false)
	if att.Name != "" {
		n.Title = att.Name
	}
	n.FileData = att.Data
	n.FileType = att.MimeType

	p.Trunk = append(p.Trunk, n)
	p.ActiveNodeID = strPtr(n.ID)
	return n
}

// DeleteNode removes id and its whole subtree from whichever collection
// holds it. Navigation ids pointing into the removed subtree are cleared.
// Reports false if id is unknown.
func (p *Project) DeleteNode(id string) bool {
	loc, ok := p.locate(id)
	if !ok {
		return false
	}

	list := p.list(loc)
	removed := (*list)[loc.index]
	*list = slices.Delete(*list, loc.index, loc.index+1)

	if p.ActiveNodeID != nil && removed.Contains(*p.ActiveNodeID) {
		p.ActiveNodeID = nil
	}
	if p.SelectedNodeID != nil && removed.Contains(*p.SelectedNodeID) {
		p.SelectedNodeID = nil
	}
	if p.DraggedNodeID != nil && removed.Contains(*p.DraggedNodeID) {
		p.DraggedNodeID = nil
	}
	return true
}

// UpdateNode applies patch to the node id. Reports false if id is unknown.
func (p *Project) UpdateNode(id string, patch NodePatch) bool {
	n, _, ok := p.Find(id)
	if !ok {
		return false
	}
	patch.apply(n)
	return true
}

// MoveNode relocates draggedID with its subtree. A nil targetID appends it
// to the end of its own collection's root. Otherwise it is placed before or
// after targetID in the target's list, or appended as the target's last
// child. Moves onto itself, into its own subtree, across collections or
// inside a trunk node fail with ErrInvalidMove and change nothing.
func (p *Project) MoveNode(draggedID string, targetID *string, pos Position) error {
	from, err := p.validateMove(draggedID, targetID, pos)
	if err != nil {
		p.logger.Debug("move rejected",
			zap.String("draggedId", draggedID),
			zap.Stringp("targetId", targetID),
			zap.String("position", string(pos)),
			zap.Error(err),
		)
		return err
	}

	src := p.list(from)
	dragged := (*src)[from.index]
	*src = slices.Delete(*src, from.index, from.index+1)

	if targetID == nil {
		dragged.ParentID = nil
		root := p.rootList(from.collection)
		*root = append(*root, dragged)
		return nil
	}

	if err := p.attach(dragged, *targetID, pos, from.collection); err != nil {
		// put it back where it was
		src = p.list(from)
		*src = slices.Insert(*src, from.index, dragged)
		p.logger.Warn("move aborted after detach", zap.String("draggedId", draggedID), zap.Error(err))
		return err
	}
	return nil
}

// validateMove checks a move without touching the tree and returns the
// dragged node's current location.
func (p *Project) validateMove(draggedID string, targetID *string, pos Position) (location, error) {
	from, ok := p.locate(draggedID)
	if !ok {
		return location{}, fmt.Errorf("move %q: %w", draggedID, ErrNotFound)
	}
	if targetID == nil {
		return from, nil
	}

	if _, err := ParsePosition(string(pos)); err != nil {
		return location{}, err
	}
	if *targetID == draggedID {
		return location{}, fmt.Errorf("%w: %q onto itself", ErrInvalidMove, draggedID)
	}

	dragged := (*p.list(from))[from.index]
	if dragged.Contains(*targetID) {
		return location{}, fmt.Errorf("%w: %q is inside %q", ErrInvalidMove, *targetID, draggedID)
	}

	to, ok := p.locate(*targetID)
	if !ok {
		return location{}, fmt.Errorf("move target %q: %w", *targetID, ErrNotFound)
	}
	if to.collection != from.collection {
		return location{}, fmt.Errorf("%w: %q is in %s, %q is in %s",
			ErrInvalidMove, draggedID, from.collection, *targetID, to.collection)
	}
	if to.collection == CollectionTrunk && pos == PositionInside {
		return location{}, fmt.Errorf("%w: trunk nodes cannot hold children", ErrInvalidMove)
	}
	return from, nil
}

// attach inserts a detached node relative to targetID within collection c.
func (p *Project) attach(n *Node, targetID string, pos Position, c Collection) error {
	to, ok := p.locate(targetID)
	if !ok || to.collection != c {
		return fmt.Errorf("move target %q: %w", targetID, ErrNotFound)
	}

	list := p.list(to)
	target := (*list)[to.index]

	switch pos {
	case PositionInside:
		n.ParentID = strPtr(target.ID)
		target.Children = append(target.Children, n)
	case PositionBefore:
		n.ParentID = parentIDOf(to)
		*list = slices.Insert(*list, to.index, n)
	case PositionAfter:
		n.ParentID = parentIDOf(to)
		*list = slices.Insert(*list, to.index+1, n)
	default:
		return fmt.Errorf("%w: unknown position %q", ErrInvalidMove, pos)
	}
	return nil
}

func parentIDOf(loc location) *string {
	if loc.parent == nil {
		return nil
	}
	return strPtr(loc.parent.ID)
}
