/*
Package yamlcfg loads simulation projects from YAML files and assembles
them into runnable networks. A project file declares the simulation
settings, the model instances with their free-form parameter maps, the
link connections, and the lagged feedback couplings:

	simulation:
	  start: 0
	  step: 1
	  steps: 10
	  maxabserror: 0.0001
	models:
	  - name: land
	    type: storage.linear
	    params: {k: 0.3}
	  - name: reach
	    type: storage.gauged
	    params: {k: 0.8}
	links:
	  - from: land.outlet
	    to: reach.inlet
	feedbacks:
	  - from: reach.signal
	    to: dam.remote
*/
package yamlcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hydpy-dev/hydronet/pkg/network"
	"github.com/hydpy-dev/hydronet/pkg/registry"
)

// Simulation holds the run-wide settings of a project.
type Simulation struct {
	Start       float64 `yaml:"start"`
	Step        float64 `yaml:"step"`
	Steps       int     `yaml:"steps"`
	MaxAbsError float64 `yaml:"maxabserror"`
}

// ModelConfig declares one model instance.
type ModelConfig struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Params   map[string]any `yaml:"params"`
	RelDTMin float64        `yaml:"reldtmin"`
}

// Coupling declares a directed connection between two "model.variable"
// references; it serves both links and feedbacks.
type Coupling struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Project is the parsed form of a project file.
type Project struct {
	Simulation Simulation    `yaml:"simulation"`
	Models     []ModelConfig `yaml:"models"`
	Links      []Coupling    `yaml:"links"`
	Feedbacks  []Coupling    `yaml:"feedbacks"`
}

// Load reads and parses a project file.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return Parse(raw)
}

// Parse parses project YAML.
func Parse(raw []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Project) check() error {
	if p.Simulation.Step <= 0 {
		return fmt.Errorf("project: simulation.step must be positive, got %v", p.Simulation.Step)
	}
	if p.Simulation.Steps < 0 {
		return fmt.Errorf("project: simulation.steps must not be negative, got %d", p.Simulation.Steps)
	}
	if len(p.Models) == 0 {
		return fmt.Errorf("project: no models declared")
	}
	seen := make(map[string]bool)
	for i, mc := range p.Models {
		if mc.Name == "" || mc.Type == "" {
			return fmt.Errorf("project: model %d: name and type are required", i)
		}
		if seen[mc.Name] {
			return fmt.Errorf("project: duplicate model name %q", mc.Name)
		}
		seen[mc.Name] = true
	}
	for _, c := range append(append([]Coupling(nil), p.Links...), p.Feedbacks...) {
		for _, ref := range []string{c.From, c.To} {
			if _, _, ok := network.SplitRef(ref); !ok {
				return fmt.Errorf("project: bad reference %q (want model.variable)", ref)
			}
		}
	}
	return nil
}

// Assemble builds the network declared by the project, constructing every
// instance through the registry, wiring the links, and registering the
// feedback couplings.
func (p *Project) Assemble(reg *registry.Registry) (*network.Network, error) {
	net := network.New()
	for _, mc := range p.Models {
		m, err := reg.NewModel(mc.Type, mc.Name, mc.Params)
		if err != nil {
			return nil, err
		}
		if mc.RelDTMin > 0 {
			m.RelDTMin = mc.RelDTMin
		}
		if err := net.Add(m); err != nil {
			return nil, err
		}
	}
	for _, l := range p.Links {
		fromModel, fromVar, _ := network.SplitRef(l.From)
		toModel, toVar, _ := network.SplitRef(l.To)
		if err := net.Connect(fromModel, fromVar, toModel, toVar); err != nil {
			return nil, err
		}
	}
	for _, f := range p.Feedbacks {
		if err := net.Couple(f.From, f.To); err != nil {
			return nil, err
		}
	}
	if _, err := net.ExecutionOrder(); err != nil {
		return nil, err
	}
	return net, nil
}
