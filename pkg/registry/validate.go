package registry

import (
	"fmt"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

// Validate cross-checks the declared variable usage of every method of the
// given model type against the protocol order: a required variable must be
// supplied by an earlier method, unless its kind makes it available from
// the outside (Input and Link variables) or it persists across steps
// (State variables).
//
// The check is advisory. It returns the list of findings; an invalid model
// may still be run.
func (r *Registry) Validate(typeName string) ([]domain.ConsistencyWarning, error) {
	def, ok := r.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("validate: unknown model type %q", typeName)
	}

	// A prototype instance supplies the variable kinds. Factories must
	// accept an empty parameter map for this purpose.
	proto, err := def.New("validate", nil)
	if err != nil {
		return nil, fmt.Errorf("validate %q: cannot build prototype: %w", typeName, err)
	}

	produced := make(map[string]bool)
	for _, name := range proto.Vars.Names() {
		v, _ := proto.Vars.Get(name)
		switch v.Kind() {
		case domain.KindInput, domain.KindLink, domain.KindState:
			produced[name] = true
		}
	}

	var warnings []domain.ConsistencyWarning
	for _, group := range domain.Groups() {
		for _, method := range def.Type.Groups.Methods(group) {
			for _, req := range method.Requires {
				if _, declared := proto.Vars.Get(req); !declared {
					warnings = append(warnings, domain.ConsistencyWarning{
						ModelType: typeName,
						Group:     group.String(),
						Method:    method.Name,
						Variable:  req,
						Reason:    "required variable is not declared",
					})
					continue
				}
				if !produced[req] {
					warnings = append(warnings, domain.ConsistencyWarning{
						ModelType: typeName,
						Group:     group.String(),
						Method:    method.Name,
						Variable:  req,
						Reason:    "required variable has no earlier producer",
					})
				}
			}
			for _, out := range append(append([]string(nil), method.Updates...), method.Results...) {
				if _, declared := proto.Vars.Get(out); !declared {
					warnings = append(warnings, domain.ConsistencyWarning{
						ModelType: typeName,
						Group:     group.String(),
						Method:    method.Name,
						Variable:  out,
						Reason:    "written variable is not declared",
					})
					continue
				}
				produced[out] = true
			}
		}
	}
	return warnings, nil
}

// ValidateAll validates every registered model type and returns the
// findings grouped by type name.
func (r *Registry) ValidateAll() (map[string][]domain.ConsistencyWarning, error) {
	out := make(map[string][]domain.ConsistencyWarning)
	for _, name := range r.Types() {
		warnings, err := r.Validate(name)
		if err != nil {
			return nil, err
		}
		if len(warnings) > 0 {
			out[name] = warnings
		}
	}
	return out, nil
}
