package runtime

// Stage tracks a model instance's progress through one macro step. The
// protocol is a fixed cycle: Idle -> InletDone -> ReceiverDone ->
// Integrated -> OutletDone -> SenderDone -> Idle.
type Stage int

const (
	StageIdle Stage = iota
	StageInletDone
	StageReceiverDone
	StageIntegrated
	StageOutletDone
	StageSenderDone
)

var stageNames = [...]string{"Idle", "InletDone", "ReceiverDone", "Integrated", "OutletDone", "SenderDone"}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "Stage(?)"
}

// next returns the successor stage within the cycle.
func (s Stage) next() Stage {
	if s == StageSenderDone {
		return StageIdle
	}
	return s + 1
}
