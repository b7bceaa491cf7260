package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/internal/util"
)

// LocalSource is the definition of a backend listing a directory of the
// local file system
type LocalSource struct {
	Root string `json:"root"`
}

func RegisterLocal(r *Registry) {
	r.Register(LocalBackendType, func(raw []byte) (explorerfs.BackendProvider, error) {
		var src LocalSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		if strings.TrimSpace(src.Root) == "" {
			return nil, fmt.Errorf("local backend requires a root")
		}
		return &src, nil
	})
}

func (s *LocalSource) Backend() (explorerfs.ListingBackend, error) {
	return NewLocal(s.Root)
}

// Local implements [explorerfs.ListingBackend] for a local directory. Tree
// paths are resolved below root and can never escape it.
type Local struct {
	root string
}

// NewLocal creates a backend rooted at an existing directory
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local backend root is not a directory: %s", abs)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory the backend lists
func (l *Local) Root() string {
	return l.root
}

// resolve maps a '/'-separated tree path to a host path below root
func (l *Local) resolve(treePath string) string {
	clean := path.Clean("/" + filepath.ToSlash(treePath))
	return filepath.Join(l.root, filepath.FromSlash(clean))
}

func (l *Local) ListDirectory(ctx context.Context, treePath string) ([]explorerfs.Entry, error) {
	logger := util.GetLogger("Local.ListDirectory")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := l.resolve(treePath)
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]explorerfs.Entry, 0, len(des))
	for _, de := range des {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full := filepath.Join(dir, de.Name())
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			logger.Trace().Err(err).Str("path", full).Msg("Skipping vanished entry")
			continue
		}
		e := explorerfs.Entry{
			Name:    de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			e.Kind = explorerfs.KindSymbolicLink
			if target, err := os.Stat(full); err == nil && target.IsDir() {
				e.Expandable = true
			}
		case info.IsDir():
			e.Kind = explorerfs.KindDirectory
			e.Size = 0
		default:
			e.Kind = explorerfs.KindFile
		}
		e.ReadOnly = isReadOnly(full, info)
		entries = append(entries, e)
	}

	logger.Trace().Str("dir", dir).Int("entries", len(entries)).Msg("Listed directory")
	return entries, nil
}
