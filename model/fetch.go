package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/internal/metrics"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/nesting"
	"github.com/google/uuid"
)

// FetchChildren returns the node's children ordered by order and grouped by
// the configured file nesting. Entries nested under a primary are not part of
// the returned slice; see [Node.NestedChildren]. An empty order uses the
// configured default.
//
// Unresolved or stale children are listed through the explorer's backend
// first. Concurrent calls for the same node share a single listing; ctx only
// bounds how long this caller waits for it.
func (n *Node) FetchChildren(ctx context.Context, order explorerfs.SortOrder) ([]*Node, error) {
	logger := util.GetLogger("Node.FetchChildren")

	ex := n.ex
	if ex == nil {
		metrics.RecordFetch("no_backend")
		return nil, ErrNoBackend
	}

	ex.mu.RLock()
	isDir, state, path := n.stat.IsDirectory(), n.state, n.path
	ex.mu.RUnlock()

	if !isDir {
		metrics.RecordFetch("not_directory")
		return nil, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	if state != Resolved {
		if err := ex.resolve(ctx, n); err != nil {
			return nil, err
		}
	}

	cfg := ex.cfg.Load()
	if order == "" {
		order = cfg.SortOrder
	}
	canonical, err := explorerfs.ParseSortOrder(string(order))
	if err != nil {
		logger.Warn().Str("order", string(order)).Msg("Unknown sort order, using default")
	}
	order = canonical
	engine := nesting.New(cfg.FileNesting.Enabled, cfg.FileNesting.Patterns, ex.profile)

	// nesting state is written to the children
	ex.mu.Lock()
	defer ex.mu.Unlock()
	out := n.arrangeLocked(order, engine)

	metrics.RecordFetch("ok")
	logger.Trace().Str("path", n.path).Str("order", string(order)).Int("count", len(out)).Msg("Fetched children")
	return out, nil
}

// arrangeLocked sorts the children, recomputes nesting and returns the
// top-level entries
func (n *Node) arrangeLocked(order explorerfs.SortOrder, engine *nesting.Engine) []*Node {
	children := n.childrenLocked()
	for _, ch := range children {
		ch.nested = nil
		ch.nestedIn = nil
	}
	sortNodesLocked(children, order)

	items := make([]nesting.Item, len(children))
	for i, ch := range children {
		items[i] = nesting.Item{Name: ch.name, IsDir: ch.stat.IsDirectory()}
	}
	groups := engine.Nest(n.name, items)

	out := make([]*Node, 0, len(groups))
	nestedCnt := 0
	for _, g := range groups {
		primary := children[g.Index]
		for _, j := range g.Nested {
			dep := children[j]
			dep.nestedIn = primary
			primary.nested = append(primary.nested, dep)
		}
		nestedCnt += len(g.Nested)
		out = append(out, primary)
	}
	if order == explorerfs.SortFoldersNestsFiles {
		groupNestedFoldersLocked(out)
	}
	if nestedCnt > 0 {
		metrics.RecordNested(nestedCnt)
	}
	return out
}

// resolve lists n through the backend, sharing one listing between all
// concurrent callers for the same node
func (ex *Explorer) resolve(ctx context.Context, n *Node) error {
	key := strconv.FormatUint(ex.EnsureNodeID(n), 10)
	ch := ex.fetches.DoChan(key, func() (any, error) {
		return nil, ex.list(ctx, n)
	})

	select {
	case <-ctx.Done():
		metrics.RecordFetch("canceled")
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CoalescedFetches.Inc()
		}
		if res.Err != nil {
			metrics.RecordFetch("error")
		}
		return res.Err
	}
}

// list performs one backend listing and reconciles it into n. The listing is
// not bound to the cancellation of the caller that started it since other
// callers may be waiting on it.
func (ex *Explorer) list(ctx context.Context, n *Node) error {
	logger := util.GetLogger("Explorer.list")

	ex.mu.RLock()
	state, path := n.state, n.path
	ex.mu.RUnlock()
	if state == Resolved {
		// resolved by a listing that finished before this one was started
		return nil
	}
	if ex.backend == nil {
		return ErrNoBackend
	}

	reqID := uuid.NewString()
	startGen := ex.gen.Load()
	cfg := ex.cfg.Load()

	lctx := context.WithoutCancel(ctx)
	if d := cfg.ListTimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(lctx, d)
		defer cancel()
	}

	logger.Debug().Str("path", path).Str("request", reqID).Msg("Listing directory")
	entries, err := ex.backend.ListDirectory(lctx, path)
	metrics.RecordListing(err == nil)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Str("request", reqID).Msg("Listing failed")
		ex.mu.Lock()
		n.fetchErr = err
		ex.mu.Unlock()
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, path, err)
	}

	snapshot := ex.snapshot(path, entries, reqID)

	ex.mu.Lock()
	defer ex.mu.Unlock()
	if !n.isAttachedLocked() {
		metrics.DiscardedFetches.Inc()
		logger.Debug().Str("path", path).Str("request", reqID).Msg("Directory left the tree, discarding listing")
		return fmt.Errorf("%s: %w", path, ErrDetached)
	}

	var st mergeStats
	mergeChildrenLocked(snapshot, n, func(ch *Node) bool {
		return ch.pending || ch.attachGen > startGen
	}, &st)
	n.state = Resolved
	n.fetchErr = nil
	metrics.RecordMerge(st.added, st.kept, st.removed)

	logger.Debug().Str("path", n.path).Str("request", reqID).Int("entries", len(entries)).Msg("Directory resolved")
	return nil
}

// snapshot wraps raw entries in a disposable resolved node
func (ex *Explorer) snapshot(path string, entries []explorerfs.Entry, reqID string) *Node {
	logger := util.GetLogger("Explorer.snapshot")

	snap := NewNode("", DirStat(), ex.profile)
	snap.path = path
	snap.state = Resolved
	for _, e := range entries {
		if e.Name == "" || e.Name == "." || e.Name == ".." || strings.ContainsFunc(e.Name, ex.profile.IsSeparator) {
			logger.Warn().Str("path", path).Str("name", e.Name).Str("request", reqID).Msg("Skipping malformed entry")
			continue
		}
		ch := NewNodeFromEntry(e, ex.profile)
		snap.children[ch.key()] = ch
	}
	return snap
}
