package model

// NodeContext wraps a read-locked [Node]. The whole tree is read-locked while
// the context is open, so its accessors read fields directly. Contexts for
// children share the parent's lock and do not lock again.
// Calling NodeContext.Close() unwinds all unlocking/cleanup callbacks in reverse order.
// Do NOT invoke any locking methods on the raw Node while this context is active.
//
// NOTE: NodeContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type NodeContext struct {
	node     *Node
	closeFns []func()
}

// NewNodeContext RLocks the Node's tree and returns a new NodeContext for safe access
func NewNodeContext(node *Node) *NodeContext {
	ctx := &NodeContext{node: node}
	ctx.AddClose(node.rlock())
	return ctx
}

// borrowed returns a context for a node already covered by ctx's lock
func (ctx *NodeContext) borrowed(node *Node) *NodeContext {
	return &NodeContext{node: node}
}

func (ctx *NodeContext) Name() string {
	return ctx.node.name
}

func (ctx *NodeContext) Path() string {
	return ctx.node.path
}

func (ctx *NodeContext) NodeID() uint64 {
	return ctx.node.NodeID()
}

// Stat returns a snapshot of the node's metadata
func (ctx *NodeContext) Stat() Stat {
	return ctx.node.stat
}

func (ctx *NodeContext) State() ChildrenState {
	return ctx.node.state
}

func (ctx *NodeContext) IsPending() bool {
	return ctx.node.pending
}

// Parent returns a context on the parent sharing this context's lock, or nil
// for the root
func (ctx *NodeContext) Parent() *NodeContext {
	if ctx.node.parent == nil {
		return nil
	}
	return ctx.borrowed(ctx.node.parent)
}

// Children returns unordered contexts for every child sharing this context's lock
func (ctx *NodeContext) Children() []*NodeContext {
	children := make([]*NodeContext, 0, len(ctx.node.children))
	for _, ch := range ctx.node.children {
		children = append(children, ctx.borrowed(ch))
	}
	return children
}

// Nested returns contexts for the entries grouped under this node
func (ctx *NodeContext) Nested() []*NodeContext {
	nested := make([]*NodeContext, 0, len(ctx.node.nested))
	for _, ch := range ctx.node.nested {
		nested = append(nested, ctx.borrowed(ch))
	}
	return nested
}

// GetChild returns a context on the named child
func (ctx *NodeContext) GetChild(name string) (*NodeContext, bool) {
	ch, ok := ctx.node.getChildLocked(name)
	if !ok {
		return nil, false
	}
	return ctx.borrowed(ch), true
}

// Find resolves path from this node within the locked tree
func (ctx *NodeContext) Find(path string) *NodeContext {
	if n := ctx.node.findLocked(path); n != nil {
		return ctx.borrowed(n)
	}
	return nil
}

// IterChildren calls fn for each child until it returns false
func (ctx *NodeContext) IterChildren(fn func(ctx *NodeContext) bool) {
	for _, ch := range ctx.node.children {
		if !fn(ctx.borrowed(ch)) {
			return
		}
	}
}

// UnsafeNode returns the underlying node. Its locking methods must not be
// called until the context is closed.
func (ctx *NodeContext) UnsafeNode() *Node {
	return ctx.node
}

// AddClose pushes a cleanup callback (e.g., unlock) onto the end of the stack.
func (ctx *NodeContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order.
// Safe to call even if ctx is nil or no locks were acquired; it is
// a no-op in those cases, so you can `defer ctx.Close()` unconditionally.
//
// Example:
//
//	ctx := ex.GetNodeCtx(id)
//	defer ctx.Close()
func (ctx *NodeContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil
}
