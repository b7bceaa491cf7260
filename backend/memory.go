package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sync"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/requests"
	"github.com/puzpuzpuz/xsync/v4"
)

// MemorySource is the definition of an in-memory backend seeded from an
// inline tree or a tree definition file (YAML or JSON)
type MemorySource struct {
	Tree *requests.TreeDefDTO `json:"tree,omitempty"`
	File string               `json:"file,omitempty"`
}

func RegisterMemory(r *Registry) {
	r.Register(MemoryBackendType, func(raw []byte) (explorerfs.BackendProvider, error) {
		var src MemorySource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		return &src, nil
	})
}

func (s *MemorySource) Backend() (explorerfs.ListingBackend, error) {
	m := NewMemory()
	var def *requests.TreeDef
	var err error
	switch {
	case s.Tree != nil:
		def, err = requests.ConvertTreeDef(*s.Tree)
	case s.File != "":
		var data []byte
		if data, err = os.ReadFile(s.File); err == nil {
			def, err = requests.UnmarshalTreeDef(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("memory backend: %w", err)
	}
	if def != nil {
		m.LoadTree("/", def)
	}
	return m, nil
}

// Memory implements [explorerfs.ListingBackend] over an in-memory tree.
// Listings are lock-free; writers are serialized.
type Memory struct {
	mu       sync.Mutex                                // serializes writers
	dirs     *xsync.Map[string, []explorerfs.Entry] // listing per clean directory path
	failures *xsync.Map[string, error]
}

// NewMemory creates a backend holding only an empty root directory "/"
func NewMemory() *Memory {
	m := &Memory{
		dirs:     xsync.NewMap[string, []explorerfs.Entry](),
		failures: xsync.NewMap[string, error](),
	}
	m.dirs.Store("/", nil)
	return m
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// Put adds or replaces the entry e inside directory dir, creating dir and its
// ancestors as needed. Directory entries get an empty listing of their own.
func (m *Memory) Put(dir string, e explorerfs.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(cleanPath(dir), e)
}

func (m *Memory) putLocked(dir string, e explorerfs.Entry) {
	if _, ok := m.dirs.Load(dir); !ok && dir != "/" {
		parent, name := path.Split(dir)
		m.putLocked(cleanPath(parent), explorerfs.Entry{Name: name, Kind: explorerfs.KindDirectory})
	}
	cur, _ := m.dirs.Load(dir)
	next := slices.DeleteFunc(slices.Clone(cur), func(x explorerfs.Entry) bool { return x.Name == e.Name })
	next = append(next, e)
	m.dirs.Store(dir, next)

	if e.Kind == explorerfs.KindDirectory || e.Expandable {
		child := path.Join(dir, e.Name)
		if _, ok := m.dirs.Load(child); !ok {
			m.dirs.Store(child, nil)
		}
	}
}

// Remove deletes the entry at p together with everything below it
func (m *Memory) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = cleanPath(p)
	dir, name := path.Split(p)
	dir = cleanPath(dir)
	if cur, ok := m.dirs.Load(dir); ok {
		m.dirs.Store(dir, slices.DeleteFunc(slices.Clone(cur), func(x explorerfs.Entry) bool { return x.Name == name }))
	}
	var drop []string
	m.dirs.Range(func(k string, _ []explorerfs.Entry) bool {
		if k == p || (len(k) > len(p) && k[:len(p)] == p && k[len(p)] == '/') {
			drop = append(drop, k)
		}
		return true
	})
	for _, k := range drop {
		m.dirs.Delete(k)
	}
}

// LoadTree puts every child of def below directory at, recursively
func (m *Memory) LoadTree(at string, def *requests.TreeDef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked(cleanPath(at), def)
}

func (m *Memory) loadLocked(at string, def *requests.TreeDef) {
	if _, ok := m.dirs.Load(at); !ok {
		m.dirs.Store(at, nil)
	}
	for _, ch := range def.Children {
		m.putLocked(at, ch.Entry)
		if len(ch.Children) > 0 {
			m.loadLocked(path.Join(at, ch.Entry.Name), ch)
		}
	}
}

// FailWith makes listings of dir fail with err until [Memory.ClearFailure]
func (m *Memory) FailWith(dir string, err error) {
	m.failures.Store(cleanPath(dir), err)
}

func (m *Memory) ClearFailure(dir string) {
	m.failures.Delete(cleanPath(dir))
}

func (m *Memory) ListDirectory(ctx context.Context, dir string) ([]explorerfs.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = cleanPath(dir)
	if err, ok := m.failures.Load(dir); ok {
		return nil, err
	}
	entries, ok := m.dirs.Load(dir)
	if !ok {
		return nil, &fs.PathError{Op: "list", Path: dir, Err: fs.ErrNotExist}
	}
	return slices.Clone(entries), nil
}
