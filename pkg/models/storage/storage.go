/*
Package storage provides reservoir-style reference models built on the
engine: a linear storage, a threshold storage whose release starts only
above a dead-storage volume, and a gauged variant that additionally
publishes its discharge for feedback couplings.

All variants integrate a single volume following

	dV/dt = qin - qout(V)

where qin is fixed during a macro step (collected by the INLET methods)
and qout is the storage-release relationship evaluated by the PART_ODE
methods.
*/
package storage

import (
	"fmt"

	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/registry"
	"github.com/hydpy-dev/hydronet/pkg/smoothing"
)

// Model type names as used in project configurations.
const (
	TypeLinear    = "storage.linear"
	TypeThreshold = "storage.threshold"
	TypeGauged    = "storage.gauged"
)

type params struct {
	K       float64 `mapstructure:"k"`       // release coefficient [1/time]
	VMin    float64 `mapstructure:"vmin"`    // dead-storage volume (threshold variant)
	Smooth  float64 `mapstructure:"smooth"`  // smoothing tolerance for the threshold
	Initial float64 `mapstructure:"initial"` // initial volume
}

func defaultParams() params {
	return params{K: 1}
}

// Register adds all storage model types to the registry.
func Register(r *registry.Registry) error {
	for _, def := range []*registry.Definition{
		{Type: linearType, New: factory(linearType)},
		{Type: thresholdType, New: factory(thresholdType)},
		{Type: gaugedType, New: factory(gaugedType)},
	} {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

var linearType = &domain.ModelType{
	Name: TypeLinear,
	Groups: domain.GroupSet{
		Inlet:   []domain.Method{pickInflow},
		PartODE: []domain.Method{calcOutflowLinear},
		FullODE: []domain.Method{updateVolume},
		Outlet:  []domain.Method{passOutflow},
	},
	ODEStates: []string{"volume"},
	ODEFluxes: []string{"qout"},
}

var thresholdType = &domain.ModelType{
	Name: TypeThreshold,
	Groups: domain.GroupSet{
		Inlet:   []domain.Method{pickInflow},
		PartODE: []domain.Method{calcOutflowThreshold},
		FullODE: []domain.Method{updateVolume},
		Outlet:  []domain.Method{passOutflow},
	},
	ODEStates: []string{"volume"},
	ODEFluxes: []string{"qout"},
}

var gaugedType = &domain.ModelType{
	Name: TypeGauged,
	Groups: domain.GroupSet{
		Inlet:   []domain.Method{pickInflow},
		PartODE: []domain.Method{calcOutflowLinear},
		FullODE: []domain.Method{updateVolume},
		Outlet:  []domain.Method{passOutflow},
		Sender:  []domain.Method{publishDischarge},
	},
	ODEStates: []string{"volume"},
	ODEFluxes: []string{"qout"},
}

func factory(typ *domain.ModelType) registry.NewFunc {
	return func(name string, raw map[string]any) (*domain.Model, error) {
		p := defaultParams()
		if len(raw) > 0 {
			if err := registry.DecodeParams(raw, &p); err != nil {
				return nil, err
			}
		}
		if p.K <= 0 {
			return nil, fmt.Errorf("parameter k must be positive, got %v", p.K)
		}
		if p.Smooth < 0 {
			return nil, fmt.Errorf("parameter smooth must not be negative, got %v", p.Smooth)
		}

		m := domain.NewModel(name, typ)
		vars := []struct {
			name string
			kind domain.Kind
		}{
			{"inlet", domain.KindLink},
			{"lateral", domain.KindInput},
			{"qin", domain.KindFlux},
			{"volume", domain.KindState},
			{"qout", domain.KindFlux},
			{"outlet", domain.KindLink},
		}
		if typ == gaugedType {
			vars = append(vars, struct {
				name string
				kind domain.Kind
			}{"signal", domain.KindLog})
		}
		for _, v := range vars {
			if _, err := m.Vars.Declare(v.name, v.kind); err != nil {
				return nil, err
			}
		}
		m.Vars.MustGet("volume").SetValue(p.Initial)
		m.Params["k"] = p.K
		m.Params["vmin"] = p.VMin
		m.Params["smooth"] = p.Smooth
		return m, nil
	}
}

var pickInflow = domain.Method{
	Name:     "PickInflow",
	Requires: []string{"inlet", "lateral"},
	Results:  []string{"qin"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("qin").SetValue(m.Vars.MustGet("inlet").Value() + m.Vars.MustGet("lateral").Value())
		return nil
	},
}

var calcOutflowLinear = domain.Method{
	Name:     "CalcOutflow",
	Requires: []string{"volume"},
	Results:  []string{"qout"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("qout").SetValue(m.Param("k", 1) * m.Vars.MustGet("volume").Value())
		return nil
	},
}

var calcOutflowThreshold = domain.Method{
	Name:     "CalcOutflow",
	Requires: []string{"volume"},
	Results:  []string{"qout"},
	Fn: func(m *domain.Model) error {
		active := smoothing.Threshold(
			m.Vars.MustGet("volume").Value()-m.Param("vmin", 0),
			m.Param("smooth", 0),
		)
		m.Vars.MustGet("qout").SetValue(m.Param("k", 1) * active)
		return nil
	},
}

var updateVolume = domain.Method{
	Name:     "UpdateVolume",
	Requires: []string{"qin", "qout"},
	Updates:  []string{"volume"},
	Fn: func(m *domain.Model) error {
		v := m.Vars.MustGet("volume")
		v.SetValue(v.Value() + (m.Vars.MustGet("qin").Value()-m.Vars.MustGet("qout").Value())*m.DT)
		return nil
	},
}

var passOutflow = domain.Method{
	Name:     "PassOutflow",
	Requires: []string{"qout"},
	Results:  []string{"outlet"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("outlet").SetValue(m.Vars.MustGet("qout").Value())
		return nil
	},
}

var publishDischarge = domain.Method{
	Name:     "PublishDischarge",
	Requires: []string{"qout"},
	Results:  []string{"signal"},
	Fn: func(m *domain.Model) error {
		m.Vars.MustGet("signal").SetValue(m.Vars.MustGet("qout").Value())
		return nil
	},
}
