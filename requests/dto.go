package requests

import (
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/internal/util"
)

// EntryDTO is the JSON/YAML representation of [explorerfs.Entry]
type EntryDTO struct {
	Name       string     `json:"name" yaml:"name"`
	Kind       string     `json:"kind,omitempty" yaml:"kind,omitempty"`         // file (default), dir or symlink
	Size       *int64     `json:"size,omitempty" yaml:"size,omitempty"`         // Size in bytes (Default 0)
	ModTime    *time.Time `json:"mtime,omitempty" yaml:"mtime,omitempty"`       // Last modified at (Default zero time)
	ReadOnly   *bool      `json:"readonly,omitempty" yaml:"readonly,omitempty"` // Default false
	Expandable *bool      `json:"expandable,omitempty" yaml:"expandable,omitempty"`
}

// TreeDefDTO describes a whole subtree, i.e. to seed the memory backend
//
// Example (YAML):
//
//	name: project
//	kind: dir
//	children:
//	  - name: main.go
//	    size: 120
//	  - name: docs
//	    kind: dir
type TreeDefDTO struct {
	EntryDTO `yaml:",inline"`
	ID       *string      `json:"id,omitempty" yaml:"id,omitempty"` // Optional stable id (Default random UUID)
	Children []TreeDefDTO `json:"children,omitempty" yaml:"children,omitempty"`
}

// TreeDef is a decoded [TreeDefDTO] with defaults applied
type TreeDef struct {
	ID       string
	Entry    explorerfs.Entry
	Children []*TreeDef
}

// Walk calls fn for every definition below (and including) d with the
// '/'-joined path relative to d's parent
func (d *TreeDef) Walk(fn func(dir string, def *TreeDef)) {
	d.walk("", fn)
}

func (d *TreeDef) walk(dir string, fn func(dir string, def *TreeDef)) {
	fn(dir, d)
	p := d.Entry.Name
	if dir != "" {
		p = dir + "/" + d.Entry.Name
	}
	for _, ch := range d.Children {
		ch.walk(p, fn)
	}
}

// Conversion logic with defaults in the unmarshaling layer
func convertEntryDTO(dto EntryDTO) (explorerfs.Entry, error) {
	kind, err := explorerfs.ParseKind(dto.Kind)
	if err != nil {
		return explorerfs.Entry{}, err
	}
	return explorerfs.Entry{
		Name:       dto.Name,
		Kind:       kind,
		Size:       util.ValueOrDefault(dto.Size, 0),
		ModTime:    util.ValueOrDefault(dto.ModTime, time.Time{}),
		ReadOnly:   util.ValueOrDefault(dto.ReadOnly, false),
		Expandable: util.ValueOrDefault(dto.Expandable, false),
	}, nil
}

// NewEntryDTO converts an entry back to its wire form
func NewEntryDTO(e explorerfs.Entry) EntryDTO {
	dto := EntryDTO{Name: e.Name, Kind: e.Kind.String()}
	if e.Size != 0 {
		dto.Size = util.Pointer(e.Size)
	}
	if !e.ModTime.IsZero() {
		dto.ModTime = util.Pointer(e.ModTime)
	}
	if e.ReadOnly {
		dto.ReadOnly = util.Pointer(true)
	}
	if e.Expandable {
		dto.Expandable = util.Pointer(true)
	}
	return dto
}
