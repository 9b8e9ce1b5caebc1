package domain

// ModelType describes a model variant: its six method groups and which of
// its variables take part in the numerical integration. One ModelType is
// shared by every instance of the variant.
type ModelType struct {
	Name   string
	Groups GroupSet

	// ODEStates names the State variables advanced by the solver.
	// ODEFluxes names the Flux variables evaluated by the PART_ODE methods
	// at the solver's stage points; after a macro step they hold their
	// time-weighted means over the step.
	ODEStates []string
	ODEFluxes []string
}

// DefaultRelDTMin is the minimum relative sub-step width applied when an
// instance does not configure its own.
const DefaultRelDTMin = 0.001

// Model is one instance of a model type: its variables, its parameter
// values, and its solver settings.
type Model struct {
	Name string
	Type *ModelType
	Vars *Store

	// Params holds the scalar parameter values of this instance, keyed by
	// parameter name. Model factories validate and default them before
	// storing; methods read them directly.
	Params map[string]float64

	// RelDTMin is the smallest sub-step the solver may take for this
	// instance, expressed as a fraction of the macro step length.
	RelDTMin float64

	// DT is the integration width currently visible to methods: the macro
	// step length during the stage groups, the active sub-step length
	// inside FULL_ODE methods. The scheduler and the solver maintain it.
	DT float64
}

// NewModel creates an instance of the given type with an empty store.
func NewModel(name string, typ *ModelType) *Model {
	return &Model{
		Name:     name,
		Type:     typ,
		Vars:     NewStore(),
		Params:   make(map[string]float64),
		RelDTMin: DefaultRelDTMin,
	}
}

// Param returns the named parameter value, or fallback if it is unset.
func (m *Model) Param(name string, fallback float64) float64 {
	if v, ok := m.Params[name]; ok {
		return v
	}
	return fallback
}
