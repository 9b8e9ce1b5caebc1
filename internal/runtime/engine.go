/*
Package runtime contains the step scheduler: the engine that drives every
model instance through the fixed six-stage protocol once per macro step,
in the topological order computed at assembly time, and that delivers the
lagged feedback couplings between steps.
*/
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydpy-dev/hydronet/internal/logging"
	"github.com/hydpy-dev/hydronet/pkg/domain"
	"github.com/hydpy-dev/hydronet/pkg/network"
	"github.com/hydpy-dev/hydronet/pkg/solver"
)

// Recorder receives the per-instance step reports, typically to update
// metrics. Implementations must be cheap; they run on the scheduler's
// goroutine.
type Recorder interface {
	ObserveStep(*domain.StepReport)
}

// Engine executes macro steps over an assembled network. It is strictly
// single-threaded: instances run sequentially in topological order, and
// within one macro step every instance completes its full six-stage cycle
// before the next instance begins.
type Engine struct {
	net      *network.Network
	integ    *solver.Integrator
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	recorder Recorder

	stages   map[string]Stage
	problems map[string]*solver.Problem
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithRecorder registers a step-report recorder.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates a scheduler over the given network with the given
// solver configuration.
func NewEngine(net *network.Network, cfg solver.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		net:      net,
		integ:    solver.New(cfg),
		logger:   logging.NewNop(),
		stages:   make(map[string]Stage),
		problems: make(map[string]*solver.Problem),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stage returns the current protocol stage of the named instance. Outside
// a running macro step every instance is Idle.
func (e *Engine) Stage(model string) Stage {
	return e.stages[model]
}

// StepOnce advances the whole network by one macro step starting at t0
// with length H, and returns one report per instance in execution order.
// Feedback couplings are delivered after the last instance finished, so
// RECEIVER methods always observe the previous step's SENDER output.
func (e *Engine) StepOnce(ctx context.Context, t0, H float64) ([]domain.StepReport, error) {
	if H <= 0 {
		return nil, fmt.Errorf("step at t=%v: %w", t0, domain.ErrNonPositiveStep)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order, err := e.net.ExecutionOrder()
	if err != nil {
		return nil, err
	}

	reports := make([]domain.StepReport, 0, len(order))
	for _, m := range order {
		report, err := e.runMacroStep(m, t0, H)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
		if e.recorder != nil {
			e.recorder.ObserveStep(&report)
		}
		if e.hooks.OnStepDone != nil {
			e.hooks.OnStepDone(&report)
		}
	}
	e.net.DeliverFeedback()
	return reports, nil
}

// Run advances the network by the given number of macro steps. The
// context is checked between macro steps only; the protocol has no
// mid-step cancellation point.
func (e *Engine) Run(ctx context.Context, t0, H float64, steps int) ([]domain.StepReport, error) {
	var last []domain.StepReport
	t := t0
	for i := 0; i < steps; i++ {
		reports, err := e.StepOnce(ctx, t, H)
		if err != nil {
			return last, fmt.Errorf("macro step %d: %w", i, err)
		}
		last = reports
		t += H
	}
	return last, nil
}

// runMacroStep drives one instance through the six-stage protocol. A
// failed step leaves the instance Idle again, so a later StepOnce call
// starts a fresh cycle instead of tripping the stage check.
func (e *Engine) runMacroStep(m *domain.Model, t0, H float64) (report domain.StepReport, err error) {
	defer func() {
		if err != nil {
			e.stages[m.Name] = StageIdle
			m.DT = 0
		}
	}()

	groups := &m.Type.Groups
	m.DT = H

	report = domain.StepReport{Model: m.Name, Start: t0, Length: H}
	if err = e.runStage(m, t0, StageInletDone, groups.Inlet); err != nil {
		return report, err
	}
	if err = e.runStage(m, t0, StageReceiverDone, groups.Receiver); err != nil {
		return report, err
	}

	report, err = e.integrate(m, t0, H)
	if err != nil {
		return report, err
	}
	m.DT = H

	if err = e.runStage(m, t0, StageOutletDone, groups.Outlet); err != nil {
		return report, err
	}
	if err = e.runStage(m, t0, StageSenderDone, groups.Sender); err != nil {
		return report, err
	}

	// The transient integrator context ends with the step.
	e.stages[m.Name] = StageIdle
	m.DT = 0
	return report, nil
}

func (e *Engine) integrate(m *domain.Model, t0, H float64) (domain.StepReport, error) {
	e.enterStage(m, t0, StageIntegrated)
	p, ok := e.problems[m.Name]
	if !ok {
		var err error
		p, err = solver.Bind(m)
		if err != nil {
			return domain.StepReport{Model: m.Name, Start: t0, Length: H}, err
		}
		e.problems[m.Name] = p
	}

	report, err := e.integ.Integrate(p, t0, H, m.RelDTMin)
	report.Model = m.Name
	if err != nil {
		return report, err
	}
	if report.Degraded() {
		e.logger.Warn("sub-step floor reached, accuracy degraded",
			"model", m.Name, "t0", t0,
			"violations", len(report.Violations), "maxError", report.MaxError)
	}
	e.leaveStage(m, t0, StageIntegrated)
	return report, nil
}

func (e *Engine) runStage(m *domain.Model, t0 float64, target Stage, methods []domain.Method) error {
	e.enterStage(m, t0, target)
	for _, method := range methods {
		if err := method.Fn(m); err != nil {
			return fmt.Errorf("model %s: %s: method %s: %w", m.Name, target, method.Name, err)
		}
	}
	e.leaveStage(m, t0, target)
	return nil
}

func (e *Engine) enterStage(m *domain.Model, t0 float64, target Stage) {
	current := e.stages[m.Name]
	if current.next() != target {
		// Stage order is fixed by runMacroStep; a mismatch here is a bug
		// in the scheduler itself.
		panic(fmt.Sprintf("engine: model %s: stage %s cannot follow %s", m.Name, target, current))
	}
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(&domain.StageEvent{Model: m.Name, Stage: target.String(), Time: t0})
	}
	e.logger.Debug("stage", "model", m.Name, "stage", target.String(), "t0", t0)
}

func (e *Engine) leaveStage(m *domain.Model, t0 float64, target Stage) {
	e.stages[m.Name] = target
	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(&domain.StageEvent{Model: m.Name, Stage: target.String(), Time: t0})
	}
}
