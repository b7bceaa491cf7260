package explorerfs

import (
	"context"
	"time"
)

// ListingBackend lists the raw entries of a single directory.
// Implementations must not return partial results together with an error.
type ListingBackend interface {
	ListDirectory(ctx context.Context, path string) ([]Entry, error)
}

// BackendProvider is a factory for concrete [ListingBackend] implementations
// generated from a backend definition. See the backend package registry.
type BackendProvider interface {
	Backend() (ListingBackend, error)
}

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// Name returns the node's display name (last path segment)
	Name() string

	// Path returns the full path to the node
	Path() string

	Kind() Kind
	Size() int64
	ModTime() time.Time
	IsReadOnly() bool

	// IsDirectory is true for directories and symbolic links to directories
	IsDirectory() bool
}
