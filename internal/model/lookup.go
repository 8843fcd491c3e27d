package model

// FindByID searches nodes depth-first in pre-order and returns the first
// node with the given id, or nil.
func FindByID(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := FindByID(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Find looks id up in the binder, then the trunk, and reports which
// collection holds it.
func (p *Project) Find(id string) (*Node, Collection, bool) {
	if n := FindByID(p.Binder, id); n != nil {
		return n, CollectionBinder, true
	}
	if n := FindByID(p.Trunk, id); n != nil {
		return n, CollectionTrunk, true
	}
	return nil, CollectionBinder, false
}

// location is where a node currently sits: a collection, the owning parent
// (nil for the root list) and the index within that list.
type location struct {
	collection Collection
	parent     *Node
	index      int
}

// locate finds the container of id without modifying anything.
func (p *Project) locate(id string) (location, bool) {
	for _, c := range []Collection{CollectionBinder, CollectionTrunk} {
		if parent, idx, ok := locateIn(p.Collection(c), nil, id); ok {
			return location{collection: c, parent: parent, index: idx}, true
		}
	}
	return location{}, false
}

func locateIn(list []*Node, parent *Node, id string) (*Node, int, bool) {
	for i, n := range list {
		if n.ID == id {
			return parent, i, true
		}
		if owner, idx, ok := locateIn(n.Children, n, id); ok {
			return owner, idx, true
		}
	}
	return nil, 0, false
}

// list returns a pointer to the slice that holds nodes at loc.
func (p *Project) list(loc location) *[]*Node {
	if loc.parent == nil {
		return p.rootList(loc.collection)
	}
	return &loc.parent.Children
}

// Path returns the chain of nodes from the collection root down to id,
// inclusive, or nil when id is unknown.
func (p *Project) Path(id string) []*Node {
	for _, c := range []Collection{CollectionBinder, CollectionTrunk} {
		if path := pathIn(p.Collection(c), id); path != nil {
			return path
		}
	}
	return nil
}

func pathIn(list []*Node, id string) []*Node {
	for _, n := range list {
		if n.ID == id {
			return []*Node{n}
		}
		if sub := pathIn(n.Children, id); sub != nil {
			return append([]*Node{n}, sub...)
		}
	}
	return nil
}
