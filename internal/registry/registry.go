package registry

import (
	"time"

	"servingd/pkg/types"
)

// Registry holds the names one deployed model is served under. The first
// name is the default identity reported to callers; additional names are
// caller-declared aliases. Immutable after construction.
type Registry struct {
	modelID string
	names   []string
	byName  map[string]struct{}
	created int64
}

// New builds a registry for modelID. When aliases are declared the model is
// served exclusively under them, otherwise under its raw identifier.
func New(modelID string, aliases []string) *Registry {
	names := append([]string(nil), aliases...)
	if len(names) == 0 {
		names = []string{modelID}
	}
	byName := make(map[string]struct{}, len(names))
	for _, n := range names {
		byName[n] = struct{}{}
	}
	return &Registry{
		modelID: modelID,
		names:   names,
		byName:  byName,
		created: time.Now().Unix(),
	}
}

// ModelID returns the raw model identifier the engine was constructed with.
func (r *Registry) ModelID() string { return r.modelID }

// Default returns the identity reported when a request omits "model".
func (r *Registry) Default() string { return r.names[0] }

// Names returns the served names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Contains reports whether name is one of the served identities.
func (r *Registry) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// List renders the served names as a model listing.
func (r *Registry) List() types.ModelList {
	data := make([]types.Model, 0, len(r.names))
	for _, n := range r.names {
		data = append(data, types.Model{
			ID:      n,
			Object:  "model",
			Created: r.created,
			OwnedBy: "servingd",
		})
	}
	return types.ModelList{Object: "list", Data: data}
}
