package backend

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/brettbedarf/explorerfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLocalFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0o644))
	return root
}

func byName(entries []explorerfs.Entry) map[string]explorerfs.Entry {
	m := make(map[string]explorerfs.Entry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return m
}

func TestLocal_ListDirectory(t *testing.T) {
	t.Parallel()

	root := createLocalFixture(t)
	l, err := NewLocal(root)
	require.NoError(t, err)

	entries, err := l.ListDirectory(context.Background(), "/")
	require.NoError(t, err)

	got := byName(entries)
	require.Len(t, got, 2)
	assert.Equal(t, explorerfs.KindDirectory, got["src"].Kind)
	assert.Equal(t, explorerfs.KindFile, got["README.md"].Kind)
	assert.Equal(t, int64(5), got["README.md"].Size)
	assert.False(t, got["README.md"].ModTime.IsZero())

	entries, err = l.ListDirectory(context.Background(), "/src")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLocal_CannotEscapeRoot(t *testing.T) {
	t.Parallel()

	root := createLocalFixture(t)
	l, err := NewLocal(filepath.Join(root, "src"))
	require.NoError(t, err)

	entries, err := l.ListDirectory(context.Background(), "/../..")
	require.NoError(t, err)
	assert.Contains(t, byName(entries), "main.go", "paths above the root resolve to the root")
}

func TestLocal_Symlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := createLocalFixture(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "link-dir")))
	require.NoError(t, os.Symlink(filepath.Join(root, "README.md"), filepath.Join(root, "link-file")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "link-broken")))
	l, err := NewLocal(root)
	require.NoError(t, err)

	entries, err := l.ListDirectory(context.Background(), "/")
	require.NoError(t, err)
	got := byName(entries)

	assert.Equal(t, explorerfs.KindSymbolicLink, got["link-dir"].Kind)
	assert.True(t, got["link-dir"].Expandable)
	assert.Equal(t, explorerfs.KindSymbolicLink, got["link-file"].Kind)
	assert.False(t, got["link-file"].Expandable)
	assert.False(t, got["link-broken"].Expandable)
}

func TestLocal_ReadOnly(t *testing.T) {
	t.Parallel()
	if runtime.GOOS != "windows" && os.Geteuid() == 0 {
		t.Skip("root can write to read-only files")
	}

	root := createLocalFixture(t)
	ro := filepath.Join(root, "locked.txt")
	require.NoError(t, os.WriteFile(ro, []byte("x"), 0o444))
	l, err := NewLocal(root)
	require.NoError(t, err)

	entries, err := l.ListDirectory(context.Background(), "/")
	require.NoError(t, err)
	got := byName(entries)

	assert.True(t, got["locked.txt"].ReadOnly)
	assert.False(t, got["README.md"].ReadOnly)
}

func TestLocal_Errors(t *testing.T) {
	t.Parallel()

	root := createLocalFixture(t)

	_, err := NewLocal(filepath.Join(root, "README.md"))
	assert.Error(t, err, "root must be a directory")
	_, err = NewLocal(filepath.Join(root, "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	l, err := NewLocal(root)
	require.NoError(t, err)
	_, err = l.ListDirectory(context.Background(), "/nope")
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.ListDirectory(ctx, "/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSource_FromDefinition(t *testing.T) {
	t.Parallel()

	root := createLocalFixture(t)
	r := NewRegistry()
	RegisterLocal(r)

	raw := []byte(`{"type":"local","root":` + quote(root) + `}`)
	b, err := r.FromDefinition(raw)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, b)

	_, err = r.GetProvider([]byte(`{"type":"local"}`))
	assert.Error(t, err, "root is required")
}
