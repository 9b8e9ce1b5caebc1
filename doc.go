/*
Package hydronet is a simulation engine for networks of hydrological
process models. It combines an embedded adaptive ODE solver with a fixed
per-step method protocol, zero-copy link wiring between model instances,
and lagged feedback couplings across what would otherwise be cycles.

The packages layer as follows:

  - pkg/domain holds the vocabulary: variables, stores, methods, model
    types, and step reports.
  - pkg/smoothing provides the regularized step, threshold, and minimum
    functions used by models with kinked storage-release relationships.
  - pkg/solver implements the adaptive embedded integrator that advances
    one instance over one macro step.
  - pkg/network wires instances together and computes the execution
    order.
  - pkg/registry maps model type names onto factories and validates the
    protocol obligations of a type.
  - internal/runtime schedules the six-stage protocol across the network.

This root package ties them together into a Simulator that loads a YAML
project, assembles the network, and runs it:

	sim, err := hydronet.Open("project.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if err := sim.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
*/
package hydronet
