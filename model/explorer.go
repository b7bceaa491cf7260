package model

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/config"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/pathkey"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

// RootID is the registry ID of an explorer's root node
const RootID uint64 = 1

// Explorer owns one tree of nodes mirroring a directory served by a
// [explorerfs.ListingBackend]. All structural mutation of its nodes is
// serialized by a single lock.
type Explorer struct {
	mu           sync.RWMutex
	root         *Node
	backend      explorerfs.ListingBackend
	cfg          *config.Store
	profile      *pathkey.Profile          // Fixed for the lifetime of the tree
	gen          atomic.Uint64             // Attach generation; see [Node.attachGen]
	lastNodeID   atomic.Uint64             // Last registry NodeID assigned; assigned on-demand
	nodeRegistry *xsync.Map[uint64, *Node] // maps registry NodeIDs to Nodes
	fetches      singleflight.Group        // In-flight listings keyed by NodeID
}

// New creates an explorer whose root directory is rootPath in backend. Tree
// paths always use '/'.
// The path profile is taken from the current configuration of cfg; a nil
// cfg uses the defaults.
func New(rootPath string, backend explorerfs.ListingBackend, cfg *config.Store) *Explorer {
	logger := util.GetLogger("Explorer.New")
	if cfg == nil {
		cfg = config.NewStore(nil)
	}
	profile := cfg.Load().Profile()
	if profile.BackslashSeparator {
		rootPath = strings.ReplaceAll(rootPath, `\`, pathkey.Separator)
	}

	segs := profile.Split(rootPath)
	name := ""
	if len(segs) > 0 {
		name = segs[len(segs)-1]
	}
	ex := &Explorer{
		backend:      backend,
		cfg:          cfg,
		profile:      profile,
		nodeRegistry: xsync.NewMap[uint64, *Node](),
	}
	root := NewNode(name, DirStat(), profile)
	root.ex = ex
	root.path = rootPath
	root.nodeID.Store(RootID)
	ex.root = root
	ex.lastNodeID.Store(RootID)
	ex.nodeRegistry.Store(RootID, root)

	logger.Debug().Str("root", rootPath).Str("profile", profile.String()).Msg("Explorer created")
	return ex
}

// Root returns the root directory node
func (ex *Explorer) Root() *Node {
	return ex.root
}

func (ex *Explorer) rootLocked() *Node {
	if ex == nil {
		return nil
	}
	return ex.root
}

// Profile returns the path profile used for every key in the tree
func (ex *Explorer) Profile() *pathkey.Profile {
	return ex.profile
}

// Config returns the live configuration store consulted on every fetch
func (ex *Explorer) Config() *config.Store {
	return ex.cfg
}

func (ex *Explorer) nextGen() uint64 {
	if ex == nil {
		return 0
	}
	return ex.gen.Add(1)
}

// NewNode creates a standalone node owned by this explorer. It is not part of
// the tree until attached with [Node.AddChild].
func (ex *Explorer) NewNode(name string, stat Stat) *Node {
	n := NewNode(name, stat, ex.profile)
	n.ex = ex
	return n
}

// NewPending attaches an inline-create placeholder under parent. It survives
// reconciliation until a listing reports an entry with the same name, which
// then takes over its metadata.
func (ex *Explorer) NewPending(parent *Node, name string, kind explorerfs.Kind) (*Node, error) {
	logger := util.GetLogger("Explorer.NewPending")
	n := ex.NewNode(name, Stat{Kind: kind})
	n.pending = true

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if err := parent.addChildLocked(n); err != nil {
		logger.Debug().Err(err).Str("parent", parent.path).Str("name", name).Msg("Failed to add placeholder")
		return nil, err
	}
	logger.Trace().Str("path", n.path).Msg("Placeholder added")
	return n, nil
}

/* NodeID registry */

// EnsureNodeID retrieves or allocates & sets the NodeID; safe with or without held locks.
func (ex *Explorer) EnsureNodeID(n *Node) uint64 {
	// fast path
	if id := n.nodeID.Load(); id != 0 {
		return id
	}
	newID := ex.lastNodeID.Add(1)
	// only one CAS will succeed
	if n.nodeID.CompareAndSwap(0, newID) {
		ex.nodeRegistry.Store(newID, n)
		return newID
	}
	// someone else won the race, load the real value
	return n.nodeID.Load()
}

// Lookup returns the node registered under id while it is attached to the
// tree. Must not be called with the explorer lock held.
func (ex *Explorer) Lookup(id uint64) (*Node, bool) {
	n, ok := ex.nodeRegistry.Load(id)
	if !ok {
		return nil, false
	}
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	if !n.isAttachedLocked() {
		return nil, false
	}
	return n, true
}

// forgetLocked releases the registered ids of n and its whole subtree.
// A nil explorer is a no-op.
func (ex *Explorer) forgetLocked(n *Node) {
	if ex == nil {
		return
	}
	if id := n.nodeID.Load(); id != 0 && id != RootID {
		if _, ok := ex.nodeRegistry.LoadAndDelete(id); ok {
			n.nodeID.CompareAndSwap(id, 0)
		}
	}
	for _, ch := range n.children {
		ex.forgetLocked(ch)
	}
}

// Forget removes the registry entry of id. The root is never forgotten.
func (ex *Explorer) Forget(id uint64) {
	logger := util.GetLogger("Explorer.Forget")
	if id == RootID {
		return
	}
	n, ok := ex.nodeRegistry.LoadAndDelete(id)
	if !ok {
		logger.Debug().Uint64("id", id).Msg("No node found")
		return
	}
	n.nodeID.CompareAndSwap(id, 0)
}

// RootCtx returns a read-locked context on the root. See [NodeContext].
func (ex *Explorer) RootCtx() *NodeContext {
	return NewNodeContext(ex.root)
}

// GetNodeCtx returns a read-locked context on the node registered under id,
// or nil if there is none or the node left the tree
func (ex *Explorer) GetNodeCtx(id uint64) *NodeContext {
	n, ok := ex.nodeRegistry.Load(id)
	if !ok {
		return nil
	}
	ctx := NewNodeContext(n)
	if !n.isAttachedLocked() {
		ctx.Close()
		return nil
	}
	return ctx
}

// Find resolves a path from the root
func (ex *Explorer) Find(path string) *Node {
	return ex.root.Find(path)
}
