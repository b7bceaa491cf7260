package backend

type BuiltInBackendType = string

const (
	LocalBackendType  BuiltInBackendType = "local"
	MemoryBackendType BuiltInBackendType = "memory"
	HTTPBackendType   BuiltInBackendType = "http"
)

// RegisterBuiltins registers all built-in backends on r (the default registry
// when nil), or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, backends ...BuiltInBackendType) {
	if r == nil {
		r = defaultRegistry
	}
	if len(backends) == 0 {
		// Include all built-in backends here when adding implementations
		backends = append(backends, LocalBackendType, MemoryBackendType, HTTPBackendType)
	}

	for _, key := range backends {
		switch key {
		case LocalBackendType:
			RegisterLocal(r)
		case MemoryBackendType:
			RegisterMemory(r)
		case HTTPBackendType:
			RegisterHTTP(r)
		}
	}
}
