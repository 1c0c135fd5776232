package link

import (
	"github.com/satalab/satalink/crc"
	"github.com/satalab/satalink/sim"
)

// Builder can build link components.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	acc         crc.Accumulator
	cfg         Config
	rxCapacity  int
	portBufSize int
	verdict     func(payload []uint32) bool
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		rxCapacity:  2048,
		portBufSize: 4,
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithAccumulator sets the checksum accumulator the engine sequences.
func (b Builder) WithAccumulator(acc crc.Accumulator) Builder {
	b.acc = acc
	return b
}

// WithConfig sets the engine policy knobs.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithRxFifoCapacity sets how many words the receive FIFO can hold before it
// reports not-ready.
func (b Builder) WithRxFifoCapacity(capacity int) Builder {
	b.rxCapacity = capacity
	return b
}

// WithPortBufSize sets the capacity of the port buffers.
func (b Builder) WithPortBufSize(size int) Builder {
	b.portBufSize = size
	return b
}

// WithVerdictFunc sets the transport layer's acceptance check, applied to a
// frame that already passed the checksum. Frames are accepted unconditionally
// when no function is set.
func (b Builder) WithVerdictFunc(f func(payload []uint32) bool) Builder {
	b.verdict = f
	return b
}

// Build creates a link component with the given name.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		core:       NewCore(b.acc, b.cfg),
		rxCapacity: b.rxCapacity,
		verdict:    b.verdict,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.PhyPort = sim.NewPort(c, b.portBufSize, b.portBufSize, name+".PhyPort")
	c.TransportPort = sim.NewPort(
		c, b.portBufSize, b.portBufSize, name+".TransportPort")

	c.AddPort("Phy", c.PhyPort)
	c.AddPort("Transport", c.TransportPort)

	return c
}
