package model

import "errors"

var (
	// ErrNotFound is returned when an id resolves to no node.
	ErrNotFound = errors.New("node not found")
	// ErrInvalidMove is returned for self, descendant or cross-collection moves.
	ErrInvalidMove = errors.New("invalid move")
	// ErrMalformedImport is returned when a snapshot cannot be parsed.
	ErrMalformedImport = errors.New("malformed project snapshot")
)
