package requests

import (
	"testing"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBackendType(t *testing.T) {
	t.Parallel()

	typ, err := GetBackendType([]byte(`{"type":"local","root":"/srv"}`))
	require.NoError(t, err)
	assert.Equal(t, "local", typ)

	_, err = GetBackendType([]byte(`not json`))
	assert.Error(t, err)
}

func TestDefinitionToJSON(t *testing.T) {
	t.Parallel()

	t.Run("YAML", func(t *testing.T) {
		t.Parallel()
		out, err := DefinitionToJSON([]byte("type: http\nurl: http://x\n"), "backend.yaml")
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"http","url":"http://x"}`, string(out))
	})
	t.Run("JSON passthrough", func(t *testing.T) {
		t.Parallel()
		in := []byte(`{"type":"local"}`)
		out, err := DefinitionToJSON(in, "")
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
	t.Run("Malformed", func(t *testing.T) {
		t.Parallel()
		_, err := DefinitionToJSON([]byte("type: [unclosed"), "b.yml")
		assert.Error(t, err)
	})
}

func TestUnmarshalEntries(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{"name":"src","kind":"dir"},
		{"name":"main.go","size":12,"mtime":"2024-01-02T03:04:05Z","readonly":true},
		{"name":"link","kind":"symlink","expandable":true}
	]`)

	entries, err := UnmarshalEntries(data)

	require.NoError(t, err)
	assert.Equal(t, []explorerfs.Entry{
		{Name: "src", Kind: explorerfs.KindDirectory},
		{Name: "main.go", Kind: explorerfs.KindFile, Size: 12, ModTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ReadOnly: true},
		{Name: "link", Kind: explorerfs.KindSymbolicLink, Expandable: true},
	}, entries)
}

func TestUnmarshalEntries_BadKind(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalEntries([]byte(`[{"name":"x","kind":"socket"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket")
}

func TestUnmarshalTreeDef(t *testing.T) {
	t.Parallel()

	data := []byte(`
name: project
id: root-id
children:
  - name: main.go
    size: 120
  - name: docs
    children:
      - name: guide.md
  - name: empty
    kind: dir
`)

	def, err := UnmarshalTreeDef(data)

	require.NoError(t, err)
	assert.Equal(t, "root-id", def.ID)
	assert.Equal(t, explorerfs.KindDirectory, def.Entry.Kind)
	require.Len(t, def.Children, 3)
	assert.Equal(t, int64(120), def.Children[0].Entry.Size)
	assert.NotEmpty(t, def.Children[0].ID, "ids default to a random uuid")
	assert.Equal(t, explorerfs.KindDirectory, def.Children[1].Entry.Kind)

	var paths []string
	def.Walk(func(dir string, d *TreeDef) {
		paths = append(paths, dir+"|"+d.Entry.Name)
	})
	assert.Equal(t, []string{"|project", "project|main.go", "project|docs", "project/docs|guide.md", "project|empty"}, paths)
}

func TestUnmarshalTreeDef_JSON(t *testing.T) {
	t.Parallel()

	def, err := UnmarshalTreeDef([]byte(`{"name":"r","children":[{"name":"a.txt"}]}`))

	require.NoError(t, err)
	require.Len(t, def.Children, 1)
	assert.Equal(t, "a.txt", def.Children[0].Entry.Name)
}

func TestUnmarshalTreeDef_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"file with children": "name: r\nkind: file\nchildren:\n  - name: a\n",
		"unnamed child":      "name: r\nchildren:\n  - size: 1\n",
		"bad kind":           "name: r\nkind: pipe\n",
		"not yaml":           "name: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := UnmarshalTreeDef([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestNewEntryDTO_RoundTripsDefaults(t *testing.T) {
	t.Parallel()

	e := explorerfs.Entry{Name: "a", Kind: explorerfs.KindDirectory}
	dto := NewEntryDTO(e)

	assert.Nil(t, dto.Size)
	assert.Nil(t, dto.ModTime)
	got, err := convertEntryDTO(dto)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}
