package solver

import (
	"fmt"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

// Problem binds one model instance's ODE subsystem for a single macro
// step: the integrated state variables, the flux variables evaluated at
// the stage points, and the two callbacks driving the method groups.
type Problem struct {
	States []*domain.Variable
	Fluxes []*domain.Variable

	// PartODE evaluates the flux variables from the current state. The
	// argument is the sub-step stage time; most physical methods ignore
	// it, but time-dependent forcings may not.
	PartODE func(t float64) error

	// FullODE advances the state variables from the flux variables over
	// the width dt.
	FullODE func(dt float64) error
}

func (p *Problem) evalPartODE(t float64) error {
	if p.PartODE == nil {
		return nil
	}
	return p.PartODE(t)
}

func (p *Problem) evalFullODE(dt float64) error {
	if p.FullODE == nil {
		return nil
	}
	return p.FullODE(dt)
}

// Bind assembles a Problem for m from its model type: the designated ODE
// state and flux variables and closures running the PART_ODE and FULL_ODE
// method groups. The sub-step width is published to the methods through
// m.DT before each FULL_ODE pass.
func Bind(m *domain.Model) (*Problem, error) {
	typ := m.Type
	states := make([]*domain.Variable, 0, len(typ.ODEStates))
	for _, name := range typ.ODEStates {
		v, ok := m.Vars.Get(name)
		if !ok {
			return nil, &domain.ShapeError{Variable: name, Reason: "ODE state not declared"}
		}
		states = append(states, v)
	}
	fluxes := make([]*domain.Variable, 0, len(typ.ODEFluxes))
	for _, name := range typ.ODEFluxes {
		v, ok := m.Vars.Get(name)
		if !ok {
			return nil, &domain.ShapeError{Variable: name, Reason: "ODE flux not declared"}
		}
		fluxes = append(fluxes, v)
	}

	return &Problem{
		States: states,
		Fluxes: fluxes,
		PartODE: func(float64) error {
			for _, method := range typ.Groups.PartODE {
				if err := method.Fn(m); err != nil {
					return fmt.Errorf("model %s: PART_ODE method %s: %w", m.Name, method.Name, err)
				}
			}
			return nil
		},
		FullODE: func(dt float64) error {
			m.DT = dt
			for _, method := range typ.Groups.FullODE {
				if err := method.Fn(m); err != nil {
					return fmt.Errorf("model %s: FULL_ODE method %s: %w", m.Name, method.Name, err)
				}
			}
			return nil
		},
	}, nil
}
