/*
Package dam provides a reservoir model with demand-driven release. The dam
observes the discharge at a remote downstream gauge through a lagged
feedback coupling, raises its release when that discharge falls below a
target, and clamps the release smoothly against the drainable volume:

	demand  = max(target - remote, 0)            (smoothed threshold)
	release = min(base + demand, kmax * V)       (smoothed minimum)
	dV/dt   = qin - release

Both kinks are smoothed per the configured tolerances so that the adaptive
solver's error estimate stays meaningful near the thresholds.
*/
package dam

import (
	"fmt"

	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/registry"
	"github.com/hydpy-dev/hydronet/pkg/smoothing"
)

// TypeReservoir is the model type name used in project configurations.
const TypeReservoir = "dam.reservoir"

type params struct {
	Target  float64 `mapstructure:"target"`  // downstream discharge to maintain
	Base    float64 `mapstructure:"base"`    // unconditional base release
	KMax    float64 `mapstructure:"kmax"`    // drain rate cap coefficient [1/time]
	Smooth  float64 `mapstructure:"smooth"`  // smoothing tolerance for both kinks
	Initial float64 `mapstructure:"initial"` // initial volume
}

func defaultParams() params {
	return params{KMax: 1}
}

// Register adds the dam model type to the registry.
func Register(r *registry.Registry) error {
	return r.Register(&registry.Definition{Type: reservoirType, New: newReservoir})
}

var reservoirType = &domain.ModelType{
	Name: TypeReservoir,
	Groups: domain.GroupSet{
		Inlet:    []domain.Method{pickInflow},
		Receiver: []domain.Method{calcDemand},
		PartODE:  []domain.Method{calcRelease},
		FullODE:  []domain.Method{updateVolume},
		Outlet:   []domain.Method{passRelease},
		Sender:   []domain.Method{publishRelease},
	},
	ODEStates: []string{"volume"},
	ODEFluxes: []string{"release"},
}

func newReservoir(name string, raw map[string]any) (*domain.Model, error) {
	p := defaultParams()
	if len(raw) > 0 {
		if err := registry.DecodeParams(raw, &p); err != nil {
			return nil, err
		}
	}
	if p.KMax <= 0 {
		return nil, fmt.Errorf("parameter kmax must be positive, got %v", p.KMax)
	}
	if p.Smooth < 0 {
		return nil, fmt.Errorf("parameter smooth must not be negative, got %v", p.Smooth)
	}

	m := domain.NewModel(name, reservoirType)
	for _, v := range []struct {
		name string
		kind domain.Kind
	}{
		{"inlet", domain.KindLink},
		{"remote", domain.KindInput},
		{"qin", domain.KindFlux},
		{"demand", domain.KindFlux},
		{"volume", domain.KindState},
		{"release", domain.KindFlux},
		{"outlet", domain.KindLink},
		{"signal", domain.KindLog},
	} {
		if _, err := m.Vars.Declare(v.name, v.kind); err != nil {
			return nil, err
		}
	}
	m.Vars.MustGet("volume").SetValue(p.Initial)
	m.Params["target"] = p.Target
	m.Params["base"] = p.Base
	m.Params["kmax"] = p.KMax
	m.Params["smooth"] = p.Smooth
	return m, nil
}

var pickInflow = domain.Method{
	Name:     "PickInflow",
	Requires: []string{"inlet"},
	Results:  []string{"qin"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("qin").SetValue(m.Vars.MustGet("inlet").Value())
		return nil
	},
}

var calcDemand = domain.Method{
	Name:     "CalcDemand",
	Requires: []string{"remote"},
	Results:  []string{"demand"},
	Fn: func(m *domain.Model) error {
		shortfall := m.Param("target", 0) - m.Vars.MustGet("remote").Value()
		m.Vars.MustGet("demand").SetValue(smoothing.Threshold(shortfall, m.Param("smooth", 0)))
		return nil
	},
}

var calcRelease = domain.Method{
	Name:     "CalcRelease",
	Requires: []string{"demand", "volume"},
	Results:  []string{"release"},
	Fn: func(m *domain.Model) error {
		smooth := m.Param("smooth", 0)
		wanted := m.Param("base", 0) + m.Vars.MustGet("demand").Value()
		drainable := m.Param("kmax", 1) * smoothing.Threshold(m.Vars.MustGet("volume").Value(), smooth)
		m.Vars.MustGet("release").SetValue(smoothing.Min(wanted, drainable, smooth))
		return nil
	},
}

var updateVolume = domain.Method{
	Name:     "UpdateVolume",
	Requires: []string{"qin", "release"},
	Updates:  []string{"volume"},
	Fn: func(m *domain.Model) error {
		v := m.Vars.MustGet("volume")
		v.SetValue(v.Value() + (m.Vars.MustGet("qin").Value()-m.Vars.MustGet("release").Value())*m.DT)
		return nil
	},
}

var passRelease = domain.Method{
	Name:     "PassRelease",
	Requires: []string{"release"},
	Results:  []string{"outlet"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("outlet").SetValue(m.Vars.MustGet("release").Value())
		return nil
	},
}

var publishRelease = domain.Method{
	Name:     "PublishRelease",
	Requires: []string{"release"},
	Results:  []string{"signal"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("signal").SetValue(m.Vars.MustGet("release").Value())
		return nil
	},
}
