package model

import (
	"github.com/brettbedarf/explorerfs/internal/metrics"
	"github.com/brettbedarf/explorerfs/internal/util"
)

type mergeStats struct {
	added, kept, removed int
}

// MergeLocalWithDisk folds a freshly listed snapshot (disk) into a long-lived
// node (local) without replacing local children that disk still reports.
//
// Metadata is always copied. Children are only reconciled when local has been
// resolved before and disk carries a resolved child set: same-named children
// are merged recursively, new ones are adopted and vanished ones dropped.
// Pending placeholders are kept until disk reports them.
func MergeLocalWithDisk(disk, local *Node) {
	defer local.lock()()

	var st mergeStats
	mergeLocked(disk, local, func(n *Node) bool { return n.pending }, &st)
	metrics.RecordMerge(st.added, st.kept, st.removed)
}

func mergeLocked(disk, local *Node, keep func(*Node) bool, st *mergeStats) {
	if disk == local {
		return
	}
	local.stat = disk.stat
	local.pending = false
	// take the listed casing; the key is unchanged
	if p := local.parent; p != nil && local.name != disk.name && local.profile.Equal(local.name, disk.name) {
		local.name = disk.name
		local.setPathLocked(p.profile.Join(p.path, local.name))
	}

	if local.state == Unresolved || disk.state != Resolved {
		return
	}
	mergeChildrenLocked(disk, local, keep, st)
}

// mergeChildrenLocked replaces local's child set with disk's, reusing every
// local child disk still reports. Children for which keep returns true
// survive even when disk does not report them.
func mergeChildrenLocked(disk, local *Node, keep func(*Node) bool, st *mergeStats) {
	logger := util.GetLogger("Node.merge")

	next := make(map[string]*Node, len(disk.children))
	for _, dch := range disk.children {
		key := local.profile.Normalize(dch.name)
		if lch, ok := local.children[key]; ok {
			mergeLocked(dch, lch, keep, st)
			next[key] = lch
			st.kept++
			continue
		}
		dch.adoptLocked(local.ex, local.profile)
		dch.parent = local
		dch.attachGen = local.ex.nextGen()
		dch.setPathLocked(local.profile.Join(local.path, dch.name))
		next[key] = dch
		st.added++
	}
	for key, lch := range local.children {
		if _, ok := next[key]; ok {
			continue
		}
		if keep(lch) {
			next[key] = lch
			continue
		}
		lch.clearNestingLocked()
		local.ex.forgetLocked(lch)
		st.removed++
	}
	local.children = next

	logger.Trace().Str("path", local.path).
		Int("added", st.added).
		Int("kept", st.kept).
		Int("removed", st.removed).
		Msg("Merged children")
}
