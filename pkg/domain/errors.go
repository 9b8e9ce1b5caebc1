package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownVariable is returned when a variable name cannot be resolved on
// a store.
var ErrUnknownVariable = errors.New("unknown variable")

// ErrDuplicateVariable is returned when a name is declared twice on the
// same store.
var ErrDuplicateVariable = errors.New("variable already declared")

// ErrNonPositiveStep is returned when a macro step of zero or negative
// length is requested. This is a programming error and fails fast.
var ErrNonPositiveStep = errors.New("macro step length must be positive")

// ShapeError reports a variable access with mismatched dimensions or an
// out-of-range index. It is never retried; it indicates a setup defect.
type ShapeError struct {
	Variable string
	Want     []int
	Got      []int
	Reason   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("variable %q: %s (want %v, got %v)", e.Variable, e.Reason, e.Want, e.Got)
}

// ConnectionError reports a failed Link aliasing or feedback coupling
// during network assembly. Assembly aborts; connection errors never occur
// during a running simulation.
type ConnectionError struct {
	Producer string
	Consumer string
	Variable string
	Reason   string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect %s -> %s via %q: %s", e.Producer, e.Consumer, e.Variable, e.Reason)
}

// ConsistencyWarning reports a method whose declared variable usage is not
// satisfied by the surrounding method groups. Warnings are advisory: the
// registry reports them and the simulation proceeds regardless.
type ConsistencyWarning struct {
	ModelType string
	Group     string
	Method    string
	Variable  string
	Reason    string
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("%s/%s: method %s: variable %q: %s", w.ModelType, w.Group, w.Method, w.Variable, w.Reason)
}
