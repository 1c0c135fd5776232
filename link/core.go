package link

import (
	"log"
	"os"

	"github.com/satalab/satalink/crc"
	"github.com/satalab/satalink/primitive"
	"github.com/satalab/satalink/scrambler"
)

// Inputs is the full set of boundary signals sampled by the engine on one
// tick.
type Inputs struct {
	// Reset is the synchronous reset condition. The external pin is active
	// low; the boundary decode maps it so that true here means "reset
	// asserted".
	Reset bool

	Transport TransportStatusIn

	// TxData is the outgoing payload word offered by the transport FIFO.
	TxData uint32

	Phy PhyStatusIn

	// RxWord is the incoming 32-bit word from the physical layer.
	RxWord uint32
}

// Outputs is the complete per-tick output vector of the engine.
//
// The word/status fields follow registered-output semantics: a state that
// does not drive a field leaves it holding the previous tick's value. The
// strobe fields (RxDataValid, DataRead, Phy.ClearStatus and the
// scrambler/CRC pulses) are valid for a single tick only.
type Outputs struct {
	// TxWord is the word to hand to the physical layer.
	TxWord uint32

	Phy PhyStatusOut

	Transport TransportStatusOut

	// RxData is the descrambled payload word forwarded to the transport
	// layer; it is meaningful on ticks where RxDataValid is set.
	RxData uint32

	// RxDataValid strobes when RxData carries a freshly descrambled word.
	RxDataValid bool

	// DataRead strobes when the engine consumed TxData from the transport
	// FIFO this tick.
	DataRead bool

	// RequestLinkInit asks the physical layer to start link initialization.
	RequestLinkInit bool

	// Scrambler and CRC control pulses, exposed for tracing and for tests
	// that assert the sequencing contract.
	ScramblerReset   bool
	ScramblerAdvance bool
	CrcStart         bool
	CrcValid         bool
	CrcStop          bool
}

// Config holds the policy knobs of the engine.
type Config struct {
	// CompareRawReceiveWords makes the receive-side primitive comparisons
	// use the raw incoming word instead of the CONT-expanded one. The
	// default (false) expands everywhere.
	CompareRawReceiveWords bool

	// Logger receives the defensive fallback message when the engine finds
	// its state register corrupted. Defaults to the standard logger.
	Logger *log.Logger
}

// Core is the link-state protocol engine: the 24-state machine plus its
// scrambler and primitive-repeat expander, sequencing an external checksum
// accumulator. One call to Step advances all registered state by exactly
// one tick.
type Core struct {
	cfg Config

	state    State
	expander repeatExpander
	scr      *scrambler.Scrambler
	acc      crc.Accumulator

	out Outputs
}

// NewCore creates a Core in the Reset state, using the given checksum
// accumulator.
func NewCore(acc crc.Accumulator, cfg Config) *Core {
	if acc == nil {
		log.Panic("link core needs a checksum accumulator")
	}

	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	c := &Core{
		cfg:   cfg,
		state: StateReset,
		scr:   scrambler.New(),
		acc:   acc,
	}
	c.out = resetOutputs()

	return c
}

// State returns the current protocol state.
func (c *Core) State() State {
	return c.state
}

// ScramblerState exposes the LFSR register for inspection.
func (c *Core) ScramblerState() uint16 {
	return c.scr.State()
}

func resetOutputs() Outputs {
	return Outputs{
		TxWord: uint32(primitive.Align),
		Phy: PhyStatusOut{
			PrimitivePresent: true,
			ClearStatus:      true,
		},
	}
}

// Step advances the engine by one tick: it samples the inputs, expands the
// incoming word, computes the next state and the output vector, and
// registers both. All registered state moves atomically; there is no
// read-after-write hazard within a tick.
func (c *Core) Step(in Inputs) Outputs {
	if in.Reset {
		c.state = StateReset
		c.expander.reset()
		c.scr.Reset()
		c.out = resetOutputs()

		return c.out
	}

	effective, continuing := c.expander.expand(
		in.RxWord, in.Phy.PrimitivePresent)

	rx := rxView{
		raw:        in.RxWord,
		effective:  effective,
		primitive:  in.Phy.PrimitivePresent,
		continuing: continuing,
	}

	// Carry-forward-unless-overridden merge: the new vector starts as a
	// copy of the registered outputs, the strobes are cleared, and the
	// per-state logic overrides only the fields it drives.
	out := c.out
	clearStrobes(&out)

	next := c.advance(in, rx, &out)

	c.state = next
	c.out = out

	return out
}

func clearStrobes(out *Outputs) {
	out.RxDataValid = false
	out.DataRead = false
	out.Phy.ClearStatus = false
	out.ScramblerReset = false
	out.ScramblerAdvance = false
	out.CrcStart = false
	out.CrcValid = false
	out.CrcStop = false
}

// rxView is the incoming word as seen by the state machine after CONT
// expansion.
type rxView struct {
	raw        uint32
	effective  uint32
	primitive  bool
	continuing bool
}

// is reports whether the effective incoming word is the given primitive.
func (r rxView) is(p primitive.Word) bool {
	return r.primitive && r.effective == uint32(p)
}

// isRaw reports whether the raw (unexpanded) incoming word is the given
// primitive.
func (r rxView) isRaw(p primitive.Word) bool {
	return r.primitive && r.raw == uint32(p)
}

// rxIs applies the configured receive-side comparison policy.
func (c *Core) rxIs(r rxView, p primitive.Word) bool {
	if c.cfg.CompareRawReceiveWords {
		return r.isRaw(p)
	}

	return r.is(p)
}
