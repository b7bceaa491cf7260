package requests

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/explorerfs"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// GetBackendType extracts the backend type from a JSON definition without full unmarshaling
func GetBackendType(data []byte) (string, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// DefinitionToJSON converts a YAML backend definition to JSON so it can be
// handed to the backend registry. JSON input (by extension or content) is
// returned unchanged.
func DefinitionToJSON(data []byte, path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || json.Valid(data) {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backend definition: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert backend definition: %w", err)
	}
	return out, nil
}

// UnmarshalEntries decodes a JSON array of entry DTOs as served by the http backend
func UnmarshalEntries(data []byte) ([]explorerfs.Entry, error) {
	var dtos []EntryDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, err
	}
	entries := make([]explorerfs.Entry, 0, len(dtos))
	for i, dto := range dtos {
		e, err := convertEntryDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, dto.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UnmarshalTreeDef decodes a tree definition. YAML is a superset of JSON so
// both formats are accepted.
func UnmarshalTreeDef(data []byte) (*TreeDef, error) {
	var dto TreeDefDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree definition: %w", err)
	}
	return ConvertTreeDef(dto)
}

// ConvertTreeDef applies defaults to a decoded tree definition. Entries with
// children default to directories.
func ConvertTreeDef(dto TreeDefDTO) (*TreeDef, error) {
	if dto.Kind == "" && len(dto.Children) > 0 {
		dto.Kind = explorerfs.KindDirectory.String()
	}
	e, err := convertEntryDTO(dto.EntryDTO)
	if err != nil {
		return nil, err
	}
	if len(dto.Children) > 0 && e.Kind == explorerfs.KindFile {
		return nil, fmt.Errorf("file %q cannot have children", e.Name)
	}
	def := &TreeDef{Entry: e}
	if dto.ID != nil {
		def.ID = *dto.ID
	} else {
		def.ID = uuid.NewString()
	}
	for _, ch := range dto.Children {
		if strings.TrimSpace(ch.Name) == "" {
			return nil, fmt.Errorf("unnamed child of %q", e.Name)
		}
		c, err := ConvertTreeDef(ch)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, c)
	}
	return def, nil
}
