package domain

// ToleranceViolation records a sub-step that was force-accepted at the
// minimum sub-step floor although its local error estimate exceeded the
// configured maximum absolute error. The simulation continues; the caller
// inspects these records afterwards.
type ToleranceViolation struct {
	Time  float64 // sub-step start time
	Step  float64 // accepted sub-step length
	Error float64 // local error estimate of the accepted sub-step
}

// StepReport summarises one macro step of one model instance.
type StepReport struct {
	Model  string
	Start  float64
	Length float64

	// Accepted and Rejected count solver sub-steps; Evaluations counts
	// PART_ODE group executions. MaxError is the largest local error
	// estimate among the accepted sub-steps.
	Accepted    int
	Rejected    int
	Evaluations int
	MaxError    float64

	Violations []ToleranceViolation
}

// Degraded reports whether any sub-step was force-accepted beyond the
// error tolerance.
func (r *StepReport) Degraded() bool { return len(r.Violations) > 0 }
