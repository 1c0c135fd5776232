// Package simulation assembles the services that a link simulation needs:
// the event engine, the data recorder, the tracer, and the monitor.
package simulation

import (
	"github.com/satalab/satalink/datarecording"
	"github.com/satalab/satalink/monitoring"
	"github.com/satalab/satalink/sim"
	"github.com/satalab/satalink/tracing"
)

// A Simulation provides the services required to define a simulation.
type Simulation struct {
	id string

	engine       sim.Engine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer

	components map[string]sim.Component
	ports      map[string]sim.Port
}

// ID returns the unique identifier of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the task tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	name := c.Name()
	if _, exists := s.components[name]; exists {
		panic("component " + name + " already registered")
	}

	s.components[name] = c

	for _, p := range c.Ports() {
		s.registerPort(p)
	}

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

func (s *Simulation) registerPort(p sim.Port) {
	name := p.Name()
	if _, exists := s.ports[name]; exists {
		panic("port " + name + " already registered")
	}

	s.ports[name] = p
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	return s.components[name]
}

// GetPortByName returns the port with the given name.
func (s *Simulation) GetPortByName(name string) sim.Port {
	return s.ports[name]
}

// Terminate flushes all pending measurements and ends the simulation.
func (s *Simulation) Terminate() {
	s.dataRecorder.Flush()
}
