package model

import "errors"

var (
	// ErrNotDirectory is returned when children are requested from or added to
	// a node that cannot have any
	ErrNotDirectory = errors.New("not a directory")

	// ErrFetchFailed wraps a listing backend failure. It is distinct from a
	// successful listing of an empty directory.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDetached is returned when a node was removed from its tree while its
	// listing was in flight; the listing is discarded
	ErrDetached = errors.New("node detached during fetch")

	ErrNoBackend = errors.New("no listing backend")

	// ErrMoveIntoSelf is returned when moving a node under itself or one of its
	// descendants
	ErrMoveIntoSelf = errors.New("cannot move a node into its own subtree")

	// ErrForeignNode is returned when a mutation mixes nodes of two explorers
	ErrForeignNode = errors.New("node belongs to another explorer")
)
