package domain

import "fmt"

// Store holds the variables owned by one model instance. Declaration order
// is preserved so that iteration and reporting stay deterministic.
type Store struct {
	vars  map[string]*Variable
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{vars: make(map[string]*Variable)}
}

// Declare creates a variable with the given name, kind, and shape. An empty
// shape declares a scalar. Declaring the same name twice is an error.
func (s *Store) Declare(name string, kind Kind, shape ...int) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("declare: empty variable name")
	}
	if _, exists := s.vars[name]; exists {
		return nil, fmt.Errorf("declare %q: %w", name, ErrDuplicateVariable)
	}
	for _, d := range shape {
		if d <= 0 {
			return nil, &ShapeError{Variable: name, Want: nil, Got: shape, Reason: "non-positive dimension"}
		}
	}
	v := newVariable(name, kind, shape)
	s.vars[name] = v
	s.order = append(s.order, name)
	return v, nil
}

// Get returns the variable with the given name.
func (s *Store) Get(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// MustGet returns the variable with the given name and panics if it does
// not exist. Model methods use it for variables their own type declared;
// a miss there is a programming error, not a runtime condition.
func (s *Store) MustGet(name string) *Variable {
	v, ok := s.vars[name]
	if !ok {
		panic(fmt.Sprintf("store: %s: %s", ErrUnknownVariable, name))
	}
	return v
}

// Read returns a copy of the variable's values.
func (s *Store) Read(name string) ([]float64, error) {
	v, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", name, ErrUnknownVariable)
	}
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out, nil
}

// Write replaces the variable's values. The number of values must match the
// declared shape exactly.
func (s *Store) Write(name string, values ...float64) error {
	v, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("write %q: %w", name, ErrUnknownVariable)
	}
	if len(values) != len(v.data) {
		return &ShapeError{Variable: name, Want: []int{len(v.data)}, Got: []int{len(values)}, Reason: "value count mismatch"}
	}
	copy(v.data, values)
	return nil
}

// Alias rebinds the named Link variable to the backing storage of src, so
// that both sides observe the same values without copying. The physical
// memory stays owned by src; the local variable becomes a non-owning view.
// Shapes must match and neither rebinding an already aliased variable nor
// aliasing a non-Link variable is allowed.
func (s *Store) Alias(name string, src *Variable) error {
	v, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("alias %q: %w", name, ErrUnknownVariable)
	}
	if v.kind != KindLink || src.kind != KindLink {
		return fmt.Errorf("alias %q: only link variables can be shared (have %s and %s)", name, v.kind, src.kind)
	}
	if v.aliased {
		return fmt.Errorf("alias %q: already connected", name)
	}
	if !sameShape(v.shape, src.shape) {
		return &ShapeError{Variable: name, Want: src.shape, Got: v.shape, Reason: "link shape mismatch"}
	}
	v.data = src.data
	v.aliased = true
	return nil
}

// Names returns the variable names in declaration order.
func (s *Store) Names() []string {
	return append([]string(nil), s.order...)
}

// ByKind returns the variables of the given kind in declaration order.
func (s *Store) ByKind(kind Kind) []*Variable {
	var out []*Variable
	for _, name := range s.order {
		if v := s.vars[name]; v.kind == kind {
			out = append(out, v)
		}
	}
	return out
}
