package domain

import "fmt"

// Kind classifies a variable by its role in the simulation protocol.
type Kind int

const (
	// KindInput marks externally supplied forcing values. Inputs are never
	// written by methods; the surrounding driver (or a feedback coupling)
	// sets them before a macro step.
	KindInput Kind = iota
	// KindState marks persistent state carried across macro steps. State
	// variables flagged as ODE states are advanced by the solver.
	KindState
	// KindFlux marks per-step rates computed by PART_ODE (or stage) methods.
	KindFlux
	// KindLog marks diagnostic values kept for observers and feedback
	// publication; they never feed back into the dynamics of their owner.
	KindLog
	// KindLink marks exchange slots whose storage may be shared between a
	// producing and one or more consuming model instances.
	KindLink
)

var kindNames = map[Kind]string{
	KindInput: "input",
	KindState: "state",
	KindFlux:  "flux",
	KindLog:   "log",
	KindLink:  "link",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Variable is a named, typed numeric container. A zero-dimensional variable
// holds a single value; an N-dimensional one holds its values flattened in
// row-major order. The shape is fixed at declaration time.
//
// For Link variables the backing slice may be shared with other instances
// (see Store.Alias); every other kind owns its storage exclusively.
type Variable struct {
	name    string
	kind    Kind
	shape   []int
	data    []float64
	aliased bool
}

func newVariable(name string, kind Kind, shape []int) *Variable {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Variable{
		name:  name,
		kind:  kind,
		shape: append([]int(nil), shape...),
		data:  make([]float64, n),
	}
}

// Name returns the declared name.
func (v *Variable) Name() string { return v.name }

// Kind returns the declared kind.
func (v *Variable) Kind() Kind { return v.kind }

// Shape returns a copy of the dimension sizes; empty for scalars.
func (v *Variable) Shape() []int { return append([]int(nil), v.shape...) }

// Len returns the number of stored values.
func (v *Variable) Len() int { return len(v.data) }

// Aliased reports whether the backing storage belongs to another instance.
func (v *Variable) Aliased() bool { return v.aliased }

// Values returns the backing slice itself, not a copy. Writing through it is
// how methods update the variable without allocation; for aliased Link
// variables the write is immediately visible to the connected instances.
func (v *Variable) Values() []float64 { return v.data }

// Value returns the single value of a scalar variable.
func (v *Variable) Value() float64 { return v.data[0] }

// SetValue sets the single value of a scalar variable.
func (v *Variable) SetValue(x float64) { v.data[0] = x }

// At returns the value at the given flat index.
func (v *Variable) At(i int) (float64, error) {
	if i < 0 || i >= len(v.data) {
		return 0, &ShapeError{Variable: v.name, Want: []int{len(v.data)}, Got: []int{i}, Reason: "index out of range"}
	}
	return v.data[i], nil
}

// SetAt sets the value at the given flat index.
func (v *Variable) SetAt(i int, x float64) error {
	if i < 0 || i >= len(v.data) {
		return &ShapeError{Variable: v.name, Want: []int{len(v.data)}, Got: []int{i}, Reason: "index out of range"}
	}
	v.data[i] = x
	return nil
}

// Fill sets every component to x.
func (v *Variable) Fill(x float64) {
	for i := range v.data {
		v.data[i] = x
	}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
