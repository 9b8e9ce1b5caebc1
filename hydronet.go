package hydronet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydpy-dev/hydronet/internal/logging"
	"github.com/hydpy-dev/hydronet/internal/runtime"
	"github.com/hydpy-dev/hydronet/pkg/adapters/yamlcfg"
	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/models/dam"
	"github.com/hydpy-dev/hydronet/pkg/models/storage"
	"github.com/hydpy-dev/hydronet/pkg/network"
	"github.com/hydpy-dev/hydronet/pkg/registry"
	"github.com/hydpy-dev/hydronet/pkg/solver"
)

// DefaultRegistry returns a registry with all built-in model types.
func DefaultRegistry() *registry.Registry {
	r := registry.New()
	// Registration of the built-ins cannot collide.
	if err := storage.Register(r); err != nil {
		panic(err)
	}
	if err := dam.Register(r); err != nil {
		panic(err)
	}
	return r
}

// Simulator runs one project: an assembled network, its scheduler, and
// the simulation settings from the project file.
type Simulator struct {
	project  *yamlcfg.Project
	registry *registry.Registry
	net      *network.Network
	engine   *runtime.Engine

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	recorder runtime.Recorder

	now       float64
	stepsDone int
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the structured logger used by the scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithHooks registers lifecycle callbacks for stage and step events.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) { s.hooks = hooks }
}

// WithRecorder registers a step-report recorder, typically the
// observability metrics.
func WithRecorder(r runtime.Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// WithRegistry replaces the default model-type registry, allowing callers
// to add their own model types before assembly.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Simulator) { s.registry = r }
}

// Open loads a project file and assembles it into a ready Simulator.
func Open(path string, opts ...Option) (*Simulator, error) {
	project, err := yamlcfg.Load(path)
	if err != nil {
		return nil, err
	}
	return New(project, opts...)
}

// New assembles a parsed project into a ready Simulator.
func New(project *yamlcfg.Project, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		project: project,
		logger:  logging.NewNop(),
		now:     project.Simulation.Start,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}

	net, err := project.Assemble(s.registry)
	if err != nil {
		return nil, err
	}
	s.net = net

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(s.logger),
		runtime.WithHooks(s.hooks),
	}
	if s.recorder != nil {
		engineOpts = append(engineOpts, runtime.WithRecorder(s.recorder))
	}
	s.engine = runtime.NewEngine(net, solver.Config{
		MaxAbsError: project.Simulation.MaxAbsError,
	}, engineOpts...)
	return s, nil
}

// Network returns the assembled network.
func (s *Simulator) Network() *network.Network { return s.net }

// Now returns the current simulation time.
func (s *Simulator) Now() float64 { return s.now }

// StepsDone returns the number of completed macro steps.
func (s *Simulator) StepsDone() int { return s.stepsDone }

// ProjectSteps returns the number of macro steps the project configures.
func (s *Simulator) ProjectSteps() int { return s.project.Simulation.Steps }

// StepOnce advances the simulation by one macro step of the configured
// step length and returns one report per instance in execution order.
func (s *Simulator) StepOnce(ctx context.Context) ([]domain.StepReport, error) {
	reports, err := s.engine.StepOnce(ctx, s.now, s.project.Simulation.Step)
	if err != nil {
		return reports, fmt.Errorf("macro step %d: %w", s.stepsDone, err)
	}
	s.now += s.project.Simulation.Step
	s.stepsDone++
	return reports, nil
}

// Run advances the simulation by the remaining configured number of macro
// steps. The context is checked between steps.
func (s *Simulator) Run(ctx context.Context) error {
	for s.stepsDone < s.project.Simulation.Steps {
		if _, err := s.StepOnce(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Value reads a scalar variable given as a "model.variable" reference.
// It is a convenience for result extraction after or between steps.
func (s *Simulator) Value(ref string) (float64, error) {
	model, variable, ok := network.SplitRef(ref)
	if !ok {
		return 0, fmt.Errorf("value: reference %q must have the form model.variable", ref)
	}
	m, exists := s.net.Model(model)
	if !exists {
		return 0, fmt.Errorf("value: unknown model %q", model)
	}
	v, exists := m.Vars.Get(variable)
	if !exists {
		return 0, fmt.Errorf("value: model %q has no variable %q", model, variable)
	}
	return v.Value(), nil
}
