/*
Package domain holds the core types of the hydronet simulation engine: typed
numeric variables and their per-instance store, the six-group method protocol
descriptors, the model instance container, and the error and report types
shared by the solver, the network assembly, and the step scheduler.

The package is deliberately free of I/O and of references to any concrete
process model. Physical equations live in model packages (see pkg/models);
they interact with the engine exclusively through Variables, Methods, and
ModelTypes defined here.
*/
package domain
