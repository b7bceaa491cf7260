package model

import (
	"testing"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/pathkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createDiskDir returns a resolved standalone directory holding files
func createDiskDir(t *testing.T, name string, profile *pathkey.Profile, files ...string) *Node {
	t.Helper()
	d := NewNode(name, DirStat(), profile)
	d.state = Resolved
	for _, f := range files {
		require.NoError(t, d.AddChild(NewNode(f, FileStat(int64(len(f))), profile)))
	}
	return d
}

func TestMerge_CopiesMetadata(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addFile(t, ex.Root(), "a.txt", 1)
	mod := time.Unix(1_700_000_000, 0)
	disk := NewNode("a.txt", Stat{Kind: explorerfs.KindFile, Size: 42, ModTime: mod, ReadOnly: true}, pathkey.Linux)

	MergeLocalWithDisk(disk, local)

	assert.Equal(t, int64(42), local.Size())
	assert.Equal(t, mod, local.ModTime())
	assert.True(t, local.IsReadOnly())
}

func TestMerge_UnresolvedLocalKeepsChildren(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	keep := addFile(t, local, "local-only", 1)
	disk := createDiskDir(t, "d", pathkey.Linux, "x", "y")
	disk.stat.Size = 7

	MergeLocalWithDisk(disk, local)

	assert.Equal(t, int64(7), local.Size(), "metadata is copied regardless")
	assert.Equal(t, Unresolved, local.State())
	assert.Equal(t, []*Node{keep}, local.Children(), "lazy children must stay untouched")
}

func TestMerge_ReconcilesChildren(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	kept := addFile(t, local, "kept.txt", 1)
	addFile(t, local, "gone.txt", 1)
	disk := createDiskDir(t, "d", pathkey.Linux, "kept.txt", "new.txt")

	MergeLocalWithDisk(disk, local)

	got, ok := local.GetChild("kept.txt")
	require.True(t, ok)
	assert.Same(t, kept, got, "existing child identity must be preserved")
	assert.Equal(t, int64(len("kept.txt")), kept.Size(), "existing child takes disk metadata")

	added, ok := local.GetChild("new.txt")
	require.True(t, ok)
	assert.Equal(t, "/d/new.txt", added.Path())
	assert.Same(t, local, added.Parent())
	assert.Same(t, ex, added.ex)

	_, ok = local.GetChild("gone.txt")
	assert.False(t, ok, "vanished children must be dropped")
	assert.Equal(t, 2, local.ChildCount())
	requireConsistent(t, ex.Root(), ex.Root())
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	a := addFile(t, local, "a", 1)
	disk := createDiskDir(t, "d", pathkey.Linux, "a", "b", "c")

	MergeLocalWithDisk(disk, local)
	first := map[string]*Node{}
	for k, v := range local.children {
		first[k] = v
	}
	MergeLocalWithDisk(disk, local)

	assert.Equal(t, first, local.children)
	got, _ := local.GetChild("a")
	assert.Same(t, a, got)
	requireConsistent(t, ex.Root(), ex.Root())
}

func TestMerge_Recursive(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	sub := addDir(t, local, "sub")
	sub.state = Resolved
	keptLeaf := addFile(t, sub, "leaf", 1)
	addFile(t, sub, "old", 1)

	disk := createDiskDir(t, "d", pathkey.Linux)
	diskSub := createDiskDir(t, "sub", pathkey.Linux, "leaf", "fresh")
	require.NoError(t, disk.AddChild(diskSub))

	MergeLocalWithDisk(disk, local)

	got, _ := local.GetChild("sub")
	assert.Same(t, sub, got)
	leaf, _ := sub.GetChild("leaf")
	assert.Same(t, keptLeaf, leaf)
	_, ok := sub.GetChild("fresh")
	assert.True(t, ok)
	_, ok = sub.GetChild("old")
	assert.False(t, ok)
	requireConsistent(t, ex.Root(), ex.Root())
}

func TestMerge_ShallowDiskChildKeepsGrandchildren(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	sub := addDir(t, local, "sub")
	sub.state = Resolved
	leaf := addFile(t, sub, "leaf", 1)

	// a one-level listing knows nothing about sub's children
	disk := createDiskDir(t, "d", pathkey.Linux)
	require.NoError(t, disk.AddChild(NewNode("sub", DirStat(), pathkey.Linux)))

	MergeLocalWithDisk(disk, local)

	got, ok := sub.GetChild("leaf")
	require.True(t, ok)
	assert.Same(t, leaf, got)
	assert.Equal(t, Resolved, sub.State())
}

func TestMerge_KeepsPending(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	pending, err := ex.NewPending(local, "draft.txt", explorerfs.KindFile)
	require.NoError(t, err)
	assert.True(t, pending.IsPending())

	MergeLocalWithDisk(createDiskDir(t, "d", pathkey.Linux, "other"), local)

	got, ok := local.GetChild("draft.txt")
	require.True(t, ok, "placeholders survive until disk reports them")
	assert.Same(t, pending, got)

	MergeLocalWithDisk(createDiskDir(t, "d", pathkey.Linux, "other", "draft.txt"), local)

	got, ok = local.GetChild("draft.txt")
	require.True(t, ok)
	assert.Same(t, pending, got)
	assert.False(t, pending.IsPending(), "a reported placeholder becomes a regular entry")
	assert.Equal(t, int64(len("draft.txt")), pending.Size())
}

func TestMerge_TakesDiskCasing(t *testing.T) {
	t.Parallel()

	ex := New("/", nil, createTestStore("windows", nil))
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	f := addFile(t, local, "readme.md", 1)

	MergeLocalWithDisk(createDiskDir(t, "d", pathkey.Windows, "README.md"), local)

	got, ok := local.GetChild("README.MD")
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, "README.md", f.Name())
	assert.Equal(t, "/d/README.md", f.Path())
}

func TestMerge_SameNode(t *testing.T) {
	t.Parallel()

	ex := createTestExplorer(nil)
	local := addDir(t, ex.Root(), "d")
	local.state = Resolved
	addFile(t, local, "a", 1)

	MergeLocalWithDisk(local, local)

	assert.Equal(t, 1, local.ChildCount())
}
