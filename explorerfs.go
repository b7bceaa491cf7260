// Package explorerfs contains the core domain types shared by the explorer tree,
// its listing backends and its configuration.
package explorerfs

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of a file-system entry
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
	KindSymbolicLink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "dir"
	case KindSymbolicLink:
		return "symlink"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind accepts the names produced by [Kind.String] plus a few common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file", "f":
		return KindFile, nil
	case "dir", "directory", "folder", "d":
		return KindDirectory, nil
	case "symlink", "link", "l":
		return KindSymbolicLink, nil
	}
	return KindFile, fmt.Errorf("unknown entry kind: %q", s)
}

// Entry is a single raw item as reported by a [ListingBackend] for one directory.
type Entry struct {
	Name     string
	Kind     Kind
	Size     int64
	ModTime  time.Time
	ReadOnly bool
	// Expandable is set for symbolic links that resolve to a directory
	Expandable bool
}

// SortOrder selects how a directory's children are ordered when fetched.
type SortOrder string

const (
	// SortDefault lists folders before files, each group by natural name order
	SortDefault SortOrder = "default"
	// SortMixed interleaves folders and files by name
	SortMixed SortOrder = "mixed"
	// SortFilesFirst lists files before folders
	SortFilesFirst SortOrder = "filesFirst"
	// SortType orders files by extension then name, folders first
	SortType SortOrder = "type"
	// SortModified orders by modification time, newest first, folders first
	SortModified SortOrder = "modified"
	// SortSize orders by size, largest first, folders first
	SortSize SortOrder = "size"
	// SortModifiedAsc orders by modification time, oldest first, folders first
	SortModifiedAsc SortOrder = "modifiedAsc"
	// SortSizeAsc orders by size, smallest first, folders first
	SortSizeAsc SortOrder = "sizeAsc"
	// SortFoldersNestsFiles lists folders first where a file that nests a
	// folder is grouped with the folders
	SortFoldersNestsFiles SortOrder = "foldersNestsFiles"
)

var sortOrders = []SortOrder{
	SortDefault, SortMixed, SortFilesFirst, SortType, SortModified, SortSize,
	SortModifiedAsc, SortSizeAsc, SortFoldersNestsFiles,
}

// ParseSortOrder resolves a configured sort order case-insensitively.
// The empty string maps to [SortDefault].
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortDefault, nil
	}
	for _, o := range sortOrders {
		if strings.EqualFold(string(o), s) {
			return o, nil
		}
	}
	return SortDefault, fmt.Errorf("unknown sort order: %q", s)
}

// Valid reports whether o is one of the known sort orders
func (o SortOrder) Valid() bool {
	_, err := ParseSortOrder(string(o))
	return err == nil && o != ""
}
