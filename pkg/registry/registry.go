/*
Package registry stores the model-type catalogue: for every model variant
its six ordered method groups, its ODE bindings, and the factory that
builds configured instances. The catalogue is populated once at start-up;
the advisory Validate check then cross-checks each method's declared
variable usage against the protocol order without ever blocking execution.
*/
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

// NewFunc builds a configured model instance. The params map comes
// straight from the project configuration; factories decode it with
// DecodeParams and apply their defaults.
type NewFunc func(name string, params map[string]any) (*domain.Model, error)

// Definition couples a model type with its instance factory.
type Definition struct {
	Type *domain.ModelType
	New  NewFunc
}

// Registry is the model-type catalogue of one engine instance.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Definition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]*Definition)}
}

// Register adds a model-type definition. Registering the same type name
// twice is an error: definitions are immutable after registration.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Type == nil || def.Type.Name == "" {
		return fmt.Errorf("register: incomplete definition")
	}
	if def.New == nil {
		return fmt.Errorf("register %q: missing factory", def.Type.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[def.Type.Name]; exists {
		return fmt.Errorf("register %q: model type already registered", def.Type.Name)
	}
	r.types[def.Type.Name] = def
	return nil
}

// Lookup returns the definition of the given model type.
func (r *Registry) Lookup(typeName string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[typeName]
	return def, ok
}

// NewModel builds a configured instance of the given model type.
func (r *Registry) NewModel(typeName, name string, params map[string]any) (*domain.Model, error) {
	def, ok := r.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("new model %q: unknown model type %q", name, typeName)
	}
	m, err := def.New(name, params)
	if err != nil {
		return nil, fmt.Errorf("new model %q (%s): %w", name, typeName, err)
	}
	return m, nil
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeParams decodes a configuration parameter map into a typed struct,
// accepting the loosely typed numbers YAML produces. Model factories use
// it to validate and default their parameters in one place.
func DecodeParams(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode parameters: %w", err)
	}
	return nil
}
