package domain

// StageEvent reports that a model instance entered or left one protocol
// stage of a macro step.
type StageEvent struct {
	Model string
	Stage string
	Time  float64
}

// LifecycleHooks defines optional callbacks for engine observability. Nil
// members are skipped. Hooks run synchronously on the scheduler's
// goroutine; keep them cheap.
type LifecycleHooks struct {
	OnStageEnter func(*StageEvent)
	OnStageLeave func(*StageEvent)
	OnStepDone   func(*StepReport)
}
