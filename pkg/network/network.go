/*
Package network assembles model instances into a directed graph. Link
connections alias the storage of a producer's Link variable into one or
more consumers (zero-copy, established once at assembly time) and define
the topological execution order. Feedback couplings carry values the other
way around cycles: they are copy-based, have capacity one, and are
delivered between macro steps, which lags them by exactly one step and
keeps the remaining graph acyclic.
*/
package network

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hydpy-dev/hydronet/pkg/domain"
)

type edge struct {
	from, to string // model names, producer -> consumer
}

// Feedback is a lagged, capacity-one coupling from a source variable to a
// destination variable on another instance. Deliver copies the value; the
// destination observes it one macro step after it was published.
type Feedback struct {
	From string // "model.variable" of the published value
	To   string // "model.variable" receiving it next step
	src  *domain.Variable
	dst  *domain.Variable
}

// Network is the assembled graph of model instances.
type Network struct {
	models    map[string]*domain.Model
	names     []string // insertion order
	edges     []edge
	feedbacks []*Feedback
	order     []*domain.Model // cached topological order
}

// New creates an empty network.
func New() *Network {
	return &Network{models: make(map[string]*domain.Model)}
}

// Add registers a model instance under its name.
func (n *Network) Add(m *domain.Model) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("add: model without a name")
	}
	if _, exists := n.models[m.Name]; exists {
		return fmt.Errorf("add %q: model name already in use", m.Name)
	}
	n.models[m.Name] = m
	n.names = append(n.names, m.Name)
	n.order = nil
	return nil
}

// Model returns the instance with the given name.
func (n *Network) Model(name string) (*domain.Model, bool) {
	m, ok := n.models[name]
	return m, ok
}

// Names returns the model names in insertion order.
func (n *Network) Names() []string {
	return append([]string(nil), n.names...)
}

// Len returns the number of model instances.
func (n *Network) Len() int { return len(n.models) }

// Connect aliases the producer's Link variable into the consumer: after
// assembly both instances observe the same backing storage, and the
// connection contributes a producer-before-consumer ordering constraint.
func (n *Network) Connect(producer, producerVar, consumer, consumerVar string) error {
	pm, ok := n.models[producer]
	if !ok {
		return &domain.ConnectionError{Producer: producer, Consumer: consumer, Variable: producerVar, Reason: "unknown producer model"}
	}
	cm, ok := n.models[consumer]
	if !ok {
		return &domain.ConnectionError{Producer: producer, Consumer: consumer, Variable: consumerVar, Reason: "unknown consumer model"}
	}
	pv, ok := pm.Vars.Get(producerVar)
	if !ok {
		return &domain.ConnectionError{Producer: producer, Consumer: consumer, Variable: producerVar, Reason: "no such variable on the producer"}
	}
	if _, ok := cm.Vars.Get(consumerVar); !ok {
		return &domain.ConnectionError{Producer: producer, Consumer: consumer, Variable: consumerVar, Reason: "no such variable on the consumer"}
	}
	if err := cm.Vars.Alias(consumerVar, pv); err != nil {
		return &domain.ConnectionError{Producer: producer, Consumer: consumer, Variable: consumerVar, Reason: err.Error()}
	}
	n.edges = append(n.edges, edge{from: producer, to: consumer})
	n.order = nil
	return nil
}

// Couple registers a feedback coupling between two variables given as
// "model.variable" references. Shapes must match; kinds are free, since
// feedback sources are typically Log or Flux variables and destinations
// Input variables.
func (n *Network) Couple(from, to string) error {
	src, err := n.resolve(from)
	if err != nil {
		return err
	}
	dst, err := n.resolve(to)
	if err != nil {
		return err
	}
	if src.Len() != dst.Len() {
		return &domain.ConnectionError{Producer: from, Consumer: to, Variable: to, Reason: "feedback shape mismatch"}
	}
	n.feedbacks = append(n.feedbacks, &Feedback{From: from, To: to, src: src, dst: dst})
	return nil
}

// DeliverFeedback copies every feedback source into its destination. The
// engine calls it once after all instances finished a macro step, so the
// destinations observe the previous step's published values throughout the
// following step.
func (n *Network) DeliverFeedback() {
	for _, fb := range n.feedbacks {
		copy(fb.dst.Values(), fb.src.Values())
	}
}

// Feedbacks returns the registered couplings.
func (n *Network) Feedbacks() []*Feedback {
	return append([]*Feedback(nil), n.feedbacks...)
}

func (n *Network) resolve(ref string) (*domain.Variable, error) {
	model, variable, ok := SplitRef(ref)
	if !ok {
		return nil, &domain.ConnectionError{Variable: ref, Reason: "reference must have the form model.variable"}
	}
	m, exists := n.models[model]
	if !exists {
		return nil, &domain.ConnectionError{Producer: model, Variable: variable, Reason: "unknown model"}
	}
	v, exists := m.Vars.Get(variable)
	if !exists {
		return nil, &domain.ConnectionError{Producer: model, Variable: variable, Reason: "no such variable"}
	}
	return v, nil
}

// SplitRef splits a "model.variable" reference. The variable part may not
// contain further dots; model names may not contain dots at all.
func SplitRef(ref string) (model, variable string, ok bool) {
	parts := strings.Split(ref, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ExecutionOrder returns the model instances sorted topologically along
// the Link connections, producers first. Feedback couplings do not
// constrain the order; a cycle through Link connections alone is an
// assembly error. The order is deterministic: ties are broken by model
// name.
func (n *Network) ExecutionOrder() ([]*domain.Model, error) {
	if n.order != nil {
		return n.order, nil
	}

	indegree := make(map[string]int, len(n.models))
	successors := make(map[string][]string, len(n.models))
	for _, name := range n.names {
		indegree[name] = 0
	}
	for _, e := range n.edges {
		successors[e.from] = append(successors[e.from], e.to)
		indegree[e.to]++
	}

	ready := make([]string, 0, len(n.models))
	for _, name := range n.names {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]*domain.Model, 0, len(n.models))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, n.models[name])

		next := successors[name]
		sort.Strings(next)
		var freed []string
		for _, succ := range next {
			indegree[succ]--
			if indegree[succ] == 0 {
				freed = append(freed, succ)
			}
		}
		if len(freed) > 0 {
			ready = append(ready, freed...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(n.models) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("link connections form a cycle involving %s; lag the loop with a feedback coupling instead", strings.Join(stuck, ", "))
	}
	n.order = order
	return order, nil
}
