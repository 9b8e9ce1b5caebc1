/*
Package solver implements the adaptive integration of a model's ODE
subsystem over one macro step.

The integrator advances the ODE state variables with an embedded Heun–Euler
pair: the explicit Euler increment (order one) and the Heun increment (order
two) share the first right-hand-side evaluation, and their difference
estimates the local truncation error. Sub-steps whose worst-component error
exceeds the configured maximum absolute error are halved and retried; once
the sub-step would fall below the minimum relative width, the step is
accepted anyway and the violation is recorded, trading a bounded, reported
accuracy loss for guaranteed termination.

Fluxes play the role of the right-hand side: the PART_ODE callback fills
the flux variables from the current state, and the FULL_ODE callback
advances the states from the fluxes over a given width. On top of the
sub-stepping, the integrator accumulates the time-weighted integral of each
flux, so that after the macro step the flux variables hold their mean rates
over the whole step; downstream instances therefore receive mass-consistent
outputs no matter how the step was subdivided.
*/
package solver

import (
	"fmt"
	"math"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

// Config carries the two numeric tolerances of the integrator.
type Config struct {
	// MaxAbsError is the largest acceptable local error estimate, taken as
	// the worst case over all ODE state components.
	MaxAbsError float64

	// RelDTMin is the smallest admissible sub-step width as a fraction of
	// the macro step length. Below it, sub-steps are force-accepted.
	RelDTMin float64
}

// DefaultMaxAbsError applies when a configuration leaves the error bound
// unset.
const DefaultMaxAbsError = 0.01

func (c Config) withDefaults() Config {
	if c.MaxAbsError <= 0 {
		c.MaxAbsError = DefaultMaxAbsError
	}
	if c.RelDTMin <= 0 {
		c.RelDTMin = domain.DefaultRelDTMin
	}
	return c
}

// Integrator advances one Problem per call. It owns reusable scratch
// buffers; an Integrator must not be shared between concurrently running
// schedulers (the engine is single-threaded, so one per engine suffices).
type Integrator struct {
	cfg Config

	y0    [][]float64 // states at the sub-step start
	yLow  [][]float64 // first-order candidate states
	k1    [][]float64 // fluxes at the sub-step start
	kMean [][]float64 // embedded combination of the stage fluxes
	sums  [][]float64 // time-weighted flux integrals over the macro step
}

// New creates an integrator with the given tolerances, applying defaults
// for unset values.
func New(cfg Config) *Integrator {
	return &Integrator{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (it *Integrator) Config() Config { return it.cfg }

// Integrate advances p from t0 to t0+H and reports the sub-step
// statistics. The final sub-step is shortened to land on t0+H exactly.
//
// A per-call relDTMin overrides the configured floor when positive, so
// that each model instance can carry its own solver parameter.
func (it *Integrator) Integrate(p *Problem, t0, H, relDTMin float64) (domain.StepReport, error) {
	report := domain.StepReport{Start: t0, Length: H}
	if H <= 0 {
		return report, fmt.Errorf("integrate from t=%v over %v: %w", t0, H, domain.ErrNonPositiveStep)
	}
	if relDTMin <= 0 {
		relDTMin = it.cfg.RelDTMin
	}

	// Models without integrated states run their ODE groups once over the
	// full step: the fluxes are algebraic and need no error control.
	if len(p.States) == 0 {
		if err := p.evalPartODE(t0); err != nil {
			return report, err
		}
		report.Evaluations++
		if err := p.evalFullODE(H); err != nil {
			return report, err
		}
		return report, nil
	}

	it.prepare(p)
	tol := it.cfg.MaxAbsError
	floor := relDTMin * H
	tEnd := t0 + H
	t := t0
	h := H
	haveK1 := false

	for t < tEnd {
		if remaining := tEnd - t; h > remaining {
			h = remaining
		}
		snapshot(it.y0, p.States)

		// The state at t has not changed across retries of the same
		// sub-step, so the first stage is evaluated only once.
		if !haveK1 {
			if err := p.evalPartODE(t); err != nil {
				return report, err
			}
			report.Evaluations++
			snapshot(it.k1, p.Fluxes)
			haveK1 = true
		}

		// First-order candidate: explicit Euler over h.
		if err := p.evalFullODE(h); err != nil {
			return report, err
		}
		snapshot(it.yLow, p.States)

		// Second stage at the Euler endpoint.
		if err := p.evalPartODE(t + h); err != nil {
			return report, err
		}
		report.Evaluations++

		// Second-order candidate: Heun, from the averaged stage fluxes.
		for i, flux := range p.Fluxes {
			mean := it.kMean[i]
			vals := flux.Values()
			for j, k2 := range vals {
				mean[j] = 0.5 * (it.k1[i][j] + k2)
			}
			copy(vals, mean)
		}
		restore(p.States, it.y0)
		if err := p.evalFullODE(h); err != nil {
			return report, err
		}

		errEst := 0.0
		for i, state := range p.States {
			for j, hi := range state.Values() {
				if d := math.Abs(hi - it.yLow[i][j]); d > errEst {
					errEst = d
				}
			}
		}

		if errEst > tol && h/2 >= floor {
			// Reject: halve and retry. The states go back to t and the
			// flux variables back to the cached first stage, so the next
			// Euler attempt needs no re-evaluation.
			report.Rejected++
			restore(p.States, it.y0)
			restore(p.Fluxes, it.k1)
			h /= 2
			continue
		}

		if errEst > tol {
			// The floor was reached: accept anyway and record it.
			report.Violations = append(report.Violations, domain.ToleranceViolation{
				Time: t, Step: h, Error: errEst,
			})
		}
		report.Accepted++
		if errEst > report.MaxError {
			report.MaxError = errEst
		}
		for i, flux := range p.Fluxes {
			sum := it.sums[i]
			for j, v := range flux.Values() {
				sum[j] += v * h
			}
		}
		t += h
		haveK1 = false

		// Propose the next width. Growth is bounded by a factor of two
		// and a tie between growing and holding favors holding.
		factor := 2.0
		if errEst > 0 {
			factor = math.Min(2, math.Sqrt(tol/errEst))
		}
		if factor > 1 {
			h *= factor
		}
	}

	// Replace the point fluxes of the last stage by their macro-step means.
	for i, flux := range p.Fluxes {
		vals := flux.Values()
		for j := range vals {
			vals[j] = it.sums[i][j] / H
		}
	}
	return report, nil
}

// prepare sizes the scratch buffers for p and zeroes the flux integrals.
func (it *Integrator) prepare(p *Problem) {
	it.y0 = resize(it.y0, p.States)
	it.yLow = resize(it.yLow, p.States)
	it.k1 = resize(it.k1, p.Fluxes)
	it.kMean = resize(it.kMean, p.Fluxes)
	it.sums = resize(it.sums, p.Fluxes)
	for _, s := range it.sums {
		for j := range s {
			s[j] = 0
		}
	}
}

func resize(bufs [][]float64, vars []*domain.Variable) [][]float64 {
	if len(bufs) != len(vars) {
		bufs = make([][]float64, len(vars))
	}
	for i, v := range vars {
		if len(bufs[i]) != v.Len() {
			bufs[i] = make([]float64, v.Len())
		}
	}
	return bufs
}

func snapshot(dst [][]float64, vars []*domain.Variable) {
	for i, v := range vars {
		copy(dst[i], v.Values())
	}
}

func restore(vars []*domain.Variable, src [][]float64) {
	for i, v := range vars {
		copy(v.Values(), src[i])
	}
}
