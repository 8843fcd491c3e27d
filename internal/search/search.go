package search

import (
	"strings"

	"github.com/nikbrunner/quill/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Node           *model.Node
	Collection     model.Collection
	Path           string // ancestor titles joined with " / "
	MatchedIndexes []int
	Score          int
}

// entry is a flattened node with its location.
type entry struct {
	node       *model.Node
	collection model.Collection
	path       string
}

// nodeTitles implements fuzzy.Source for flattened nodes.
type nodeTitles []entry

func (nt nodeTitles) String(i int) string {
	return nt[i].node.Title
}

func (nt nodeTitles) Len() int {
	return len(nt)
}

// FuzzySearchNodes searches node titles in the binder and the trunk.
// Returns results sorted by match score (best first).
func FuzzySearchNodes(p *model.Project, query string) []SearchResult {
	if query == "" {
		return nil
	}

	var entries nodeTitles
	entries = flatten(entries, p.Binder, model.CollectionBinder, nil)
	entries = flatten(entries, p.Trunk, model.CollectionTrunk, nil)

	matches := fuzzy.FindFrom(query, entries)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		e := entries[m.Index]
		results[i] = SearchResult{
			Node:           e.node,
			Collection:     e.collection,
			Path:           e.path,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// flatten appends nodes in pre-order, recording the titles above each one.
func flatten(out nodeTitles, nodes []*model.Node, c model.Collection, ancestors []string) nodeTitles {
	for _, n := range nodes {
		out = append(out, entry{node: n, collection: c, path: strings.Join(ancestors, " / ")})
		out = flatten(out, n.Children, c, append(ancestors[:len(ancestors):len(ancestors)], n.Title))
	}
	return out
}
