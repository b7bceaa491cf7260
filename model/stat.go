package model

import (
	"fmt"
	"time"

	"github.com/brettbedarf/explorerfs"
)

// ChildrenState tracks whether a directory's children mirror a listing.
type ChildrenState uint8

const (
	// Unresolved children have never been fetched
	Unresolved ChildrenState = iota
	// Resolved children are the authoritative set from the last listing
	Resolved
	// Stale children were resolved but the directory has since been invalidated
	Stale
)

func (s ChildrenState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("ChildrenState(%d)", uint8(s))
	}
}

// Stat is the metadata of a node. Only reconciliation and rename overwrite it;
// attaching a node somewhere never changes it.
type Stat struct {
	Kind       explorerfs.Kind
	Size       int64
	ModTime    time.Time
	ReadOnly   bool
	Expandable bool // symbolic link that resolves to a directory
}

// StatFromEntry copies the metadata of a raw backend entry
func StatFromEntry(e explorerfs.Entry) Stat {
	return Stat{
		Kind:       e.Kind,
		Size:       e.Size,
		ModTime:    e.ModTime,
		ReadOnly:   e.ReadOnly,
		Expandable: e.Expandable,
	}
}

// DirStat returns the metadata of a plain directory
func DirStat() Stat {
	return Stat{Kind: explorerfs.KindDirectory}
}

// FileStat returns the metadata of a plain file with the given size
func FileStat(size int64) Stat {
	return Stat{Kind: explorerfs.KindFile, Size: size}
}

// IsDirectory reports whether a node with this metadata can have children
func (s Stat) IsDirectory() bool {
	switch s.Kind {
	case explorerfs.KindDirectory:
		return true
	case explorerfs.KindSymbolicLink:
		return s.Expandable
	}
	return false
}
