package model

import (
	"sync/atomic"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/pathkey"
)

var _ explorerfs.NodeInfo = (*Node)(nil)

// Node is one entry of the explorer tree.
//
// Nodes owned by an [Explorer] share its lock: public methods take it and the
// unexported ...Locked helpers assume it is held. Nodes created with [NewNode]
// have no owner until attached and are not safe for concurrent use.
type Node struct {
	ex      *Explorer        // Owning tree; nil for standalone nodes
	profile *pathkey.Profile // Key normalization; matches ex.profile once owned
	nodeID  atomic.Uint64    // Active registry ID; 0 if not registered

	name     string
	path     string
	stat     Stat
	state    ChildrenState
	children map[string]*Node // Keyed by the normalized child name
	parent   *Node            // Non-owning back-reference

	// Presentation grouping from the last fetch of the parent. Never part of
	// children and never persisted across fetches.
	nested   []*Node
	nestedIn *Node

	pending   bool   // Inline-create placeholder not yet reported by a listing
	attachGen uint64 // Explorer generation at which the node was last attached or renamed
	fetchErr  error  // Error of the last failed fetch; cleared on success
}

// NewNode creates a standalone node (no parent, no children) whose path is
// its name. It joins a tree through [Node.AddChild].
func NewNode(name string, stat Stat, profile *pathkey.Profile) *Node {
	if profile == nil {
		profile = pathkey.Current()
	}
	return &Node{
		profile:  profile,
		name:     name,
		path:     name,
		stat:     stat,
		children: make(map[string]*Node),
	}
}

// NewNodeFromEntry creates a standalone node for a raw backend entry
func NewNodeFromEntry(e explorerfs.Entry, profile *pathkey.Profile) *Node {
	return NewNode(e.Name, StatFromEntry(e), profile)
}

func (n *Node) lock() (unlock func()) {
	if n.ex == nil {
		return func() {}
	}
	n.ex.mu.Lock()
	return n.ex.mu.Unlock
}

func (n *Node) rlock() (unlock func()) {
	if n.ex == nil {
		return func() {}
	}
	n.ex.mu.RLock()
	return n.ex.mu.RUnlock
}

func (n *Node) key() string {
	return n.profile.Normalize(n.name)
}

// NodeID returns the registry ID of the node; 0 if not registered.
// See [Explorer.EnsureNodeID].
func (n *Node) NodeID() uint64 {
	return n.nodeID.Load()
}

// Name returns the display name (last path segment)
func (n *Node) Name() string {
	defer n.rlock()()
	return n.name
}

// Path returns the full path of the node in its tree
func (n *Node) Path() string {
	defer n.rlock()()
	return n.path
}

// Stat returns a copy of the node's metadata
func (n *Node) Stat() Stat {
	defer n.rlock()()
	return n.stat
}

func (n *Node) Kind() explorerfs.Kind {
	defer n.rlock()()
	return n.stat.Kind
}

func (n *Node) Size() int64 {
	defer n.rlock()()
	return n.stat.Size
}

func (n *Node) ModTime() time.Time {
	defer n.rlock()()
	return n.stat.ModTime
}

func (n *Node) IsReadOnly() bool {
	defer n.rlock()()
	return n.stat.ReadOnly
}

func (n *Node) IsExpandable() bool {
	defer n.rlock()()
	return n.stat.Expandable
}

// IsDirectory is true for directories and symbolic links to directories
func (n *Node) IsDirectory() bool {
	defer n.rlock()()
	return n.stat.IsDirectory()
}

// State returns whether the node's children mirror a listing
func (n *Node) State() ChildrenState {
	defer n.rlock()()
	return n.state
}

// IsPending reports whether the node is an inline-create placeholder
func (n *Node) IsPending() bool {
	defer n.rlock()()
	return n.pending
}

// FetchErr returns the error of the last failed fetch, if any
func (n *Node) FetchErr() error {
	defer n.rlock()()
	return n.fetchErr
}

// Parent returns the parent node; nil for a root or standalone node
func (n *Node) Parent() *Node {
	defer n.rlock()()
	return n.parent
}

// IsRoot reports whether the node has no parent
func (n *Node) IsRoot() bool {
	return n.Parent() == nil
}

// Children returns an unordered snapshot of all children, nested ones included
func (n *Node) Children() []*Node {
	defer n.rlock()()
	return n.childrenLocked()
}

func (n *Node) childrenLocked() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, ch := range n.children {
		out = append(out, ch)
	}
	return out
}

// ChildCount returns the number of children, nested ones included
func (n *Node) ChildCount() int {
	defer n.rlock()()
	return len(n.children)
}

// NestedChildren returns the entries grouped under this node by the last
// fetch of its parent
func (n *Node) NestedChildren() []*Node {
	defer n.rlock()()
	return append([]*Node(nil), n.nested...)
}

// NestedIn returns the primary this node was grouped under; nil when the node
// is listed at the top level
func (n *Node) NestedIn() *Node {
	defer n.rlock()()
	return n.nestedIn
}

// AddChild attaches child under this node, keyed by its normalized name.
// The child's path and every descendant path are recomputed. An existing child
// with the same key is replaced and its registered ids are released. Adding
// an ancestor of n fails with [ErrMoveIntoSelf].
func (n *Node) AddChild(child *Node) error {
	defer n.lock()()
	return n.addChildLocked(child)
}

func (n *Node) addChildLocked(child *Node) error {
	if !n.stat.IsDirectory() {
		return ErrNotDirectory
	}
	if child.ex != nil && child.ex != n.ex {
		return ErrForeignNode
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrMoveIntoSelf
		}
	}
	// a node lives in exactly one children map
	if old := child.parent; old != nil && old != n {
		if cur, ok := old.children[child.key()]; ok && cur == child {
			delete(old.children, child.key())
		}
	}
	child.adoptLocked(n.ex, n.profile)
	child.parent = n
	if replaced, ok := n.children[child.key()]; ok && replaced != child {
		replaced.clearNestingLocked()
		n.ex.forgetLocked(replaced)
	}
	n.children[child.key()] = child
	child.attachGen = n.ex.nextGen()
	child.setPathLocked(n.profile.Join(n.path, child.name))
	return nil
}

// adoptLocked moves the subtree under owner ex, rebuilding child keys when
// the normalization changes
func (n *Node) adoptLocked(ex *Explorer, profile *pathkey.Profile) {
	if n.ex == ex && n.profile == profile {
		return
	}
	n.ex = ex
	rekey := n.profile != profile
	n.profile = profile
	if rekey {
		children := n.children
		n.children = make(map[string]*Node, len(children))
		for _, ch := range children {
			ch.adoptLocked(ex, profile)
			n.children[ch.key()] = ch
		}
		return
	}
	for _, ch := range n.children {
		ch.adoptLocked(ex, profile)
	}
}

func (n *Node) setPathLocked(p string) {
	n.path = p
	for _, ch := range n.children {
		ch.setPathLocked(n.profile.Join(p, ch.name))
	}
}

// RemoveChild removes the entry keyed by child's name. The child keeps its
// parent reference so it can be reattached; absent entries are ignored.
func (n *Node) RemoveChild(child *Node) {
	defer n.lock()()
	n.removeChildLocked(child)
}

func (n *Node) removeChildLocked(child *Node) {
	key := n.profile.Normalize(child.name)
	removed, ok := n.children[key]
	if !ok {
		return
	}
	delete(n.children, key)
	removed.clearNestingLocked()
}

// GetChild returns the child whose normalized name matches name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	defer n.rlock()()
	return n.getChildLocked(name)
}

func (n *Node) getChildLocked(name string) (*Node, bool) {
	child, ok := n.children[n.profile.Normalize(name)]
	return child, ok
}

// Move detaches the node from its parent and attaches it under newParent.
// Identity, metadata and the subtree are kept; descendant paths change.
// Name collisions under newParent are the caller's to validate.
func (n *Node) Move(newParent *Node) error {
	// an owned node can only move within its explorer
	if n.ex != nil && newParent.ex != n.ex {
		return ErrForeignNode
	}
	defer newParent.lock()()

	for p := newParent; p != nil; p = p.parent {
		if p == n {
			return ErrMoveIntoSelf
		}
	}
	if !newParent.stat.IsDirectory() {
		return ErrNotDirectory
	}
	if old := n.parent; old != nil {
		old.removeChildLocked(n)
	}
	n.clearNestingLocked()
	return newParent.addChildLocked(n)
}

// Rename takes the name and metadata of updated while keeping this node's
// identity and children. The entry in the parent is re-keyed and descendant
// paths are recomputed. updated is not attached anywhere.
func (n *Node) Rename(updated *Node) {
	defer n.lock()()

	oldKey := n.key()
	n.name = updated.name
	n.stat.Size = updated.stat.Size
	n.stat.ModTime = updated.stat.ModTime
	n.stat.ReadOnly = updated.stat.ReadOnly
	n.clearNestingLocked()

	p := n.parent
	if p == nil {
		n.setPathLocked(updated.path)
		return
	}
	if cur, ok := p.children[oldKey]; ok && cur == n {
		delete(p.children, oldKey)
	}
	p.children[n.key()] = n
	n.attachGen = n.ex.nextGen()
	n.setPathLocked(p.profile.Join(p.path, n.name))
}

// Find walks from this node to the entry at path. The node's own path
// returns the node itself; any segment that does not resolve returns nil.
func (n *Node) Find(path string) *Node {
	defer n.rlock()()
	return n.findLocked(path)
}

func (n *Node) findLocked(path string) *Node {
	own := n.profile.Split(n.path)
	segs := n.profile.Split(path)
	if len(segs) < len(own) {
		return nil
	}
	for i, seg := range own {
		if !n.profile.Equal(seg, segs[i]) {
			return nil
		}
	}
	cur := n
	for _, seg := range segs[len(own):] {
		child, ok := cur.getChildLocked(seg)
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

// Invalidate marks resolved children stale so the next fetch re-lists them
func (n *Node) Invalidate() {
	defer n.lock()()
	if n.state == Resolved {
		n.state = Stale
	}
}

// isAttachedLocked reports whether every ancestor still holds the node in its
// children map up to the tree root
func (n *Node) isAttachedLocked() bool {
	root := n.ex.rootLocked()
	cur := n
	for cur != root {
		p := cur.parent
		if p == nil {
			return false
		}
		if ch, ok := p.children[cur.key()]; !ok || ch != cur {
			return false
		}
		cur = p
	}
	return true
}

func (n *Node) clearNestingLocked() {
	if primary := n.nestedIn; primary != nil {
		for i, ch := range primary.nested {
			if ch == n {
				primary.nested = append(primary.nested[:i:i], primary.nested[i+1:]...)
				break
			}
		}
	}
	n.nestedIn = nil
	for _, ch := range n.nested {
		if ch.nestedIn == n {
			ch.nestedIn = nil
		}
	}
	n.nested = nil
}

// Info returns the node as a read-only [explorerfs.NodeInfo]
func (n *Node) Info() explorerfs.NodeInfo {
	return n
}
