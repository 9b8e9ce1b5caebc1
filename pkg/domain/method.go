package domain

// MethodFunc is the signature shared by all computation units. Methods read
// and write variables on the instance store; the active integration width
// is available as m.DT (the macro step length for stage methods, the
// current sub-step length inside FULL_ODE methods).
type MethodFunc func(m *Model) error

// Method is a stateless unit of computation together with its declared
// variable usage. The declarations drive the advisory consistency check
// only; dispatch at run time goes straight through Fn.
type Method struct {
	Name string

	// Requires lists variables the method reads, Updates the ones it
	// modifies in place, and Results the ones it (re)computes from scratch.
	Requires []string
	Updates  []string
	Results  []string

	Fn MethodFunc
}

// Group identifies one of the six ordered method lists of the simulation
// protocol.
type Group int

const (
	GroupInlet Group = iota
	GroupReceiver
	GroupPartODE
	GroupFullODE
	GroupOutlet
	GroupSender
)

var groupNames = [...]string{"INLET", "RECEIVER", "PART_ODE", "FULL_ODE", "OUTLET", "SENDER"}

func (g Group) String() string {
	if g >= 0 && int(g) < len(groupNames) {
		return groupNames[g]
	}
	return "GROUP(?)"
}

// Groups returns all six groups in protocol order.
func Groups() []Group {
	return []Group{GroupInlet, GroupReceiver, GroupPartODE, GroupFullODE, GroupOutlet, GroupSender}
}

// GroupSet holds the six ordered method lists of a model type. It is built
// once at type-definition time and never mutated afterwards.
type GroupSet struct {
	Inlet    []Method
	Receiver []Method
	PartODE  []Method
	FullODE  []Method
	Outlet   []Method
	Sender   []Method
}

// Methods returns the ordered method list of the given group.
func (gs *GroupSet) Methods(g Group) []Method {
	switch g {
	case GroupInlet:
		return gs.Inlet
	case GroupReceiver:
		return gs.Receiver
	case GroupPartODE:
		return gs.PartODE
	case GroupFullODE:
		return gs.FullODE
	case GroupOutlet:
		return gs.Outlet
	case GroupSender:
		return gs.Sender
	}
	return nil
}
