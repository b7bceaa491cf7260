package model

import (
	"testing"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/config"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/stretchr/testify/require"
)

// createTestStore returns a config store using the named os profile
func createTestStore(profile string, override *config.ConfigOverride) *config.Store {
	cfg := config.NewConfig(&config.ConfigOverride{OSProfile: util.Pointer(profile)})
	if override != nil {
		cfg.Merge(override)
	}
	return config.NewStore(cfg)
}

// createTestExplorer returns an explorer rooted at "/" with the linux profile
func createTestExplorer(backend explorerfs.ListingBackend) *Explorer {
	return New("/", backend, createTestStore("linux", nil))
}

func addDir(t *testing.T, parent *Node, name string) *Node {
	t.Helper()
	n := NewNode(name, DirStat(), parent.profile)
	require.NoError(t, parent.AddChild(n))
	return n
}

func addFile(t *testing.T, parent *Node, name string, size int64) *Node {
	t.Helper()
	n := NewNode(name, FileStat(size), parent.profile)
	require.NoError(t, parent.AddChild(n))
	return n
}

func fileEntry(name string, size int64) explorerfs.Entry {
	return explorerfs.Entry{Name: name, Kind: explorerfs.KindFile, Size: size, ModTime: time.Unix(1_700_000_000, 0)}
}

func dirEntry(name string) explorerfs.Entry {
	return explorerfs.Entry{Name: name, Kind: explorerfs.KindDirectory}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

// requireConsistent checks parent/child/path invariants for the whole subtree
func requireConsistent(t *testing.T, origin, n *Node) {
	t.Helper()
	for key, ch := range n.children {
		require.Same(t, n, ch.parent, "child %s must point at its parent", ch.path)
		require.Equal(t, n.profile.Normalize(ch.name), key, "child key must be its normalized name")
		require.Equal(t, n.profile.Join(n.path, ch.name), ch.path, "path must be parent path + name")
		require.Same(t, ch, origin.Find(ch.path), "Find(%q) must return the node itself", ch.path)
		requireConsistent(t, origin, ch)
	}
}

func countDescendants(n *Node) int {
	cnt := 0
	for _, ch := range n.Children() {
		cnt += 1 + countDescendants(ch)
	}
	return cnt
}
