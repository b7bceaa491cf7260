package model

import (
	"cmp"
	"slices"
	"strings"

	"github.com/brettbedarf/explorerfs"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameComparer orders names naturally: case-insensitive with digit runs
// compared numerically ("file2" < "file10"). A collator is not safe for
// concurrent use so one is built per sort.
type nameComparer struct {
	col *collate.Collator
}

func newNameComparer() *nameComparer {
	return &nameComparer{col: collate.New(language.Und, collate.Numeric, collate.IgnoreCase)}
}

func (c *nameComparer) compare(a, b string) int {
	if r := c.col.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// compareExt compares file extensions ("" sorts first)
func (c *nameComparer) compareExt(a, b string) int {
	_, ea := splitExt(a)
	_, eb := splitExt(b)
	return c.col.CompareString(ea, eb)
}

func splitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// folderRank returns 0 for entries grouped with folders and 1 otherwise
func folderRank(dir bool) int {
	if dir {
		return 0
	}
	return 1
}

// sortNodesLocked orders nodes in place for order. Unknown orders sort
// like [explorerfs.SortDefault].
func sortNodesLocked(nodes []*Node, order explorerfs.SortOrder) {
	names := newNameComparer()
	byName := func(a, b *Node) int { return names.compare(a.name, b.name) }

	var fn func(a, b *Node) int
	switch order {
	case explorerfs.SortMixed:
		fn = byName
	case explorerfs.SortFilesFirst:
		fn = func(a, b *Node) int {
			if c := cmp.Compare(folderRank(!a.stat.IsDirectory()), folderRank(!b.stat.IsDirectory())); c != 0 {
				return c
			}
			return byName(a, b)
		}
	case explorerfs.SortType:
		fn = func(a, b *Node) int {
			ad, bd := a.stat.IsDirectory(), b.stat.IsDirectory()
			if c := cmp.Compare(folderRank(ad), folderRank(bd)); c != 0 {
				return c
			}
			if !ad {
				if c := names.compareExt(a.name, b.name); c != 0 {
					return c
				}
			}
			return byName(a, b)
		}
	case explorerfs.SortModified, explorerfs.SortModifiedAsc:
		dir := direction(order == explorerfs.SortModifiedAsc)
		fn = func(a, b *Node) int {
			if c := cmp.Compare(folderRank(a.stat.IsDirectory()), folderRank(b.stat.IsDirectory())); c != 0 {
				return c
			}
			if c := dir * a.stat.ModTime.Compare(b.stat.ModTime); c != 0 {
				return c
			}
			return byName(a, b)
		}
	case explorerfs.SortSize, explorerfs.SortSizeAsc:
		dir := direction(order == explorerfs.SortSizeAsc)
		fn = func(a, b *Node) int {
			if c := cmp.Compare(folderRank(a.stat.IsDirectory()), folderRank(b.stat.IsDirectory())); c != 0 {
				return c
			}
			if c := dir * cmp.Compare(a.stat.Size, b.stat.Size); c != 0 {
				return c
			}
			return byName(a, b)
		}
	default:
		// SortDefault and SortFoldersNestsFiles; the latter is regrouped
		// after nesting
		fn = func(a, b *Node) int {
			if c := cmp.Compare(folderRank(a.stat.IsDirectory()), folderRank(b.stat.IsDirectory())); c != 0 {
				return c
			}
			return byName(a, b)
		}
	}
	slices.SortFunc(nodes, fn)
}

// groupNestedFoldersLocked moves primaries that nest a folder up with the
// folders, keeping the relative order of each group
func groupNestedFoldersLocked(nodes []*Node) {
	rank := func(n *Node) int {
		if n.stat.IsDirectory() {
			return 0
		}
		for _, ch := range n.nested {
			if ch.stat.IsDirectory() {
				return 0
			}
		}
		return 1
	}
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(rank(a), rank(b))
	})
}

// direction is 1 for ascending and -1 for descending comparisons
func direction(asc bool) int {
	if asc {
		return 1
	}
	return -1
}
