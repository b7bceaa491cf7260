package backend

import (
	"fmt"
	"slices"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/requests"
	"github.com/puzpuzpuz/xsync/v4"
)

// Factory decodes a raw JSON backend definition into a provider
type Factory func(raw []byte) (explorerfs.BackendProvider, error)

// Registry ties backend definition "type" values to their factories
type Registry struct {
	factories *xsync.Map[string, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[string, Factory]()}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by [Register] and [GetProvider]
func Default() *Registry {
	return defaultRegistry
}

// Register ties a JSON-raw factory to a "type" key. The first registration
// of a type wins; false is returned for duplicates.
func (r *Registry) Register(backendType string, f Factory) bool {
	_, loaded := r.factories.LoadOrStore(backendType, f)
	return !loaded
}

// GetProvider picks the right factory based on the "type" field.
// All expected backend types should be registered with [Registry.Register]
// before calling this function.
func (r *Registry) GetProvider(raw []byte) (explorerfs.BackendProvider, error) {
	backendType, err := requests.GetBackendType(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid backend definition: %w", err)
	}
	f, ok := r.factories.Load(backendType)
	if !ok {
		return nil, fmt.Errorf("no factory for %q", backendType)
	}
	return f(raw)
}

// Types lists the registered backend types in order
func (r *Registry) Types() []string {
	types := make([]string, 0, r.factories.Size())
	r.factories.Range(func(k string, _ Factory) bool {
		types = append(types, k)
		return true
	})
	slices.Sort(types)
	return types
}

// Register adds a factory to the default registry. See [Registry.Register].
func Register(backendType string, f Factory) bool {
	return defaultRegistry.Register(backendType, f)
}

// GetProvider resolves a definition with the default registry. See [Registry.GetProvider].
func GetProvider(raw []byte) (explorerfs.BackendProvider, error) {
	return defaultRegistry.GetProvider(raw)
}

// FromDefinition builds a listing backend from a JSON definition in one step
func (r *Registry) FromDefinition(raw []byte) (explorerfs.ListingBackend, error) {
	provider, err := r.GetProvider(raw)
	if err != nil {
		return nil, err
	}
	return provider.Backend()
}
