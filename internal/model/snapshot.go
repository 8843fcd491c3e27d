package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Snapshot is the exchange form of a project's two collections.
type Snapshot struct {
	Binder []*Node `json:"binder"`
	Trunk  []*Node `json:"trunk"`
}

// Snapshot returns the project's collections. The nodes are shared with
// the project, so callers must treat them as read-only.
func (p *Project) Snapshot() Snapshot {
	return Snapshot{Binder: p.Binder, Trunk: p.Trunk}
}

// Export encodes the binder and trunk as indented JSON. Markup in node
// bodies is written as-is rather than \u-escaped.
func (p *Project) Export() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.Snapshot()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import replaces both collections with the ones in data. Either a bare
// node array (taken as the binder) or a {"binder", "trunk"} object is
// accepted. On any error the project is left untouched.
func (p *Project) Import(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		p.logger.Warn("import failed", zap.Error(err))
		return err
	}
	return p.Restore(snap)
}

// Restore validates snap and installs it as the project's content, then
// resets navigation state. Parent ids are re-derived from the tree shape.
func (p *Project) Restore(snap Snapshot) error {
	if err := normalize(&snap); err != nil {
		p.logger.Warn("restore failed", zap.Error(err))
		return err
	}

	p.Binder = snap.Binder
	p.Trunk = snap.Trunk
	p.ActiveNodeID = nil
	p.SelectedNodeID = nil
	p.DraggedNodeID = nil
	return nil
}

// ParseSnapshot decodes snapshot text without validating the tree.
func ParseSnapshot(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty input", ErrMalformedImport)
	}

	switch trimmed[0] {
	case '[':
		var binder []*Node
		if err := json.Unmarshal(trimmed, &binder); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		return Snapshot{Binder: binder, Trunk: []*Node{}}, nil

	case '{':
		var raw struct {
			Binder *[]*Node `json:"binder"`
			Trunk  []*Node  `json:"trunk"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
		}
		if raw.Binder == nil {
			return Snapshot{}, fmt.Errorf("%w: missing binder", ErrMalformedImport)
		}
		return Snapshot{Binder: *raw.Binder, Trunk: raw.Trunk}, nil
	}

	return Snapshot{}, fmt.Errorf("%w: expected an array or object", ErrMalformedImport)
}

// normalize checks id uniqueness across both collections, fills defaults
// and rewrites every ParentID from the structure.
func normalize(snap *Snapshot) error {
	if snap.Binder == nil {
		snap.Binder = []*Node{}
	}
	if snap.Trunk == nil {
		snap.Trunk = []*Node{}
	}

	seen := make(map[string]bool)
	var fix func(list []*Node, parentID *string) error
	fix = func(list []*Node, parentID *string) error {
		for _, n := range list {
			if n == nil {
				return fmt.Errorf("%w: null node", ErrMalformedImport)
			}
			if n.ID == "" {
				return fmt.Errorf("%w: node without id", ErrMalformedImport)
			}
			if seen[n.ID] {
				return fmt.Errorf("%w: duplicate id %q", ErrMalformedImport, n.ID)
			}
			seen[n.ID] = true

			if n.Status == "" {
				n.Status = StatusDraft
			}
			if !n.Status.Valid() {
				return fmt.Errorf("%w: node %q has unknown status %q", ErrMalformedImport, n.ID, n.Status)
			}
			if n.Children == nil {
				n.Children = []*Node{}
			}
			n.ParentID = copyPtr(parentID)

			if err := fix(n.Children, &n.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := fix(snap.Binder, nil); err != nil {
		return err
	}
	for _, n := range snap.Trunk {
		if n != nil && len(n.Children) > 0 {
			return fmt.Errorf("%w: trunk node %q has children", ErrMalformedImport, n.ID)
		}
	}
	return fix(snap.Trunk, nil)
}
