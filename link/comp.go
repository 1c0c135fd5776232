package link

import (
	"github.com/satalab/satalink/sim"
)

// HookPosStateTransition marks the engine moving to a different protocol
// state.
var HookPosStateTransition = &sim.HookPos{Name: "Link State Transition"}

// StateTransition is the hook item attached to HookPosStateTransition.
type StateTransition struct {
	From State
	To   State
	Time sim.VTimeInSec
}

// Comp wraps the protocol engine core into a ticking component. It owns the
// transmit FIFO and the receive assembly buffer, generates the per-tick
// transport status signals from them, and exchanges one word per tick with
// the physical layer through the PhyPort.
//
// Transport-side traffic is frame-level: a FrameMsg queues a frame for
// transmission, a TxResultMsg reports its outcome, and an RxFrameMsg
// delivers a received frame.
type Comp struct {
	*sim.TickingComponent

	PhyPort       sim.Port
	TransportPort sim.Port

	core *Core

	phyRemote       sim.RemotePort
	transportRemote sim.RemotePort

	txQueue []*FrameMsg
	txFrame *FrameMsg
	txIndex int

	rxWords    []uint32
	rxActive   bool
	rxCapacity int
	verdict    func(payload []uint32) bool

	pendingGood bool
	pendingBad  bool

	resetPin  bool
	escapePin bool
	pausePin  bool

	stallRemaining int

	toTransport []sim.Msg
}

// Core exposes the protocol engine for inspection.
func (c *Comp) Core() *Core {
	return c.core
}

// SetPhyRemote sets the remote port that receives the transmitted words.
func (c *Comp) SetPhyRemote(remote sim.RemotePort) {
	c.phyRemote = remote
}

// SetTransportRemote sets the remote port that receives frame-level
// responses.
func (c *Comp) SetTransportRemote(remote sim.RemotePort) {
	c.transportRemote = remote
}

// AssertReset drives the synchronous reset condition.
func (c *Comp) AssertReset(asserted bool) {
	c.resetPin = asserted
}

// RequestEscape raises the transport escape flag until the engine reacts.
func (c *Comp) RequestEscape() {
	c.escapePin = true
}

// SetPause drives the transport pause-transmit flag.
func (c *Comp) SetPause(paused bool) {
	c.pausePin = paused
}

// StallFifo makes the receive FIFO report not-ready for the given number of
// ticks, exercising the local backpressure path.
func (c *Comp) StallFifo(ticks int) {
	c.stallRemaining = ticks
}

// Tick advances the component by one cycle.
func (c *Comp) Tick() bool {
	c.acceptFrames()

	prev := c.core.State()
	in := c.buildInputs()
	out := c.core.Step(in)

	c.reactToOutputs(prev, out)
	c.sendWire(out)
	c.flushTransport()

	if state := c.core.State(); state != prev {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStateTransition,
			Item: StateTransition{
				From: prev,
				To:   state,
				Time: c.CurrentTime(),
			},
		})
	}

	return true
}

func (c *Comp) acceptFrames() {
	for {
		msg := c.TransportPort.PeekIncoming()
		if msg == nil {
			return
		}

		frame, ok := msg.(*FrameMsg)
		if !ok {
			panic("link comp can only receive FrameMsg")
		}

		c.txQueue = append(c.txQueue, frame)
		c.TransportPort.RetrieveIncoming()
	}
}

func (c *Comp) buildInputs() Inputs {
	if c.txFrame == nil && len(c.txQueue) > 0 {
		c.txFrame = c.txQueue[0]
		c.txQueue = c.txQueue[1:]
		c.txIndex = 0
	}

	in := Inputs{
		Reset: c.resetPin,
		Transport: TransportStatusIn{
			PauseTx:   c.pausePin,
			FifoReady: c.fifoReady(),
			TxRequest: c.txFrame != nil,
			Escape:    c.escapePin,
			GoodFrame: c.pendingGood,
			BadFrame:  c.pendingBad,
		},
	}

	if c.txFrame != nil {
		if c.txIndex < len(c.txFrame.Payload) {
			in.TxData = c.txFrame.Payload[c.txIndex]
		} else {
			in.Transport.DataDone = true
		}
	}

	if msg := c.PhyPort.PeekIncoming(); msg != nil {
		rx := msg.(*RxWordMsg)
		in.RxWord = rx.Word
		in.Phy = rx.Status
		c.PhyPort.RetrieveIncoming()
	}

	if c.stallRemaining > 0 {
		c.stallRemaining--
		in.Transport.FifoReady = false
	}

	return in
}

func (c *Comp) fifoReady() bool {
	return len(c.rxWords) < c.rxCapacity
}

func (c *Comp) reactToOutputs(prev State, out Outputs) {
	state := c.core.State()

	if out.DataRead {
		c.txIndex++
	}

	if out.RxDataValid {
		c.rxActive = true
		c.rxWords = append(c.rxWords, out.RxData)
	}

	if state == StateSyncEscape {
		c.escapePin = false
	}

	c.updateVerdict(state)
	c.completeTx(prev, state, out)
	c.completeRx(prev, state)

	if state == StateNoCommError {
		c.abortAll()
	}
}

// updateVerdict turns the zero-residual report into the transport layer's
// frame verdict one tick later.
func (c *Comp) updateVerdict(state State) {
	if state != StateGoodCrc {
		c.pendingGood = false
		c.pendingBad = false
		return
	}

	good := true
	if c.verdict != nil {
		good = c.verdict(c.receivedPayload())
	}

	c.pendingGood = good
	c.pendingBad = !good
}

func (c *Comp) completeTx(prev, state State, out Outputs) {
	if c.txFrame == nil || state != StateIdle {
		return
	}

	if !prev.IsTransmit() && prev != StateSyncEscape {
		return
	}

	result := &TxResultMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: c.TransportPort.AsRemote(),
			Dst: c.transportRemote,
		},
		RspTo:   c.txFrame.ID,
		Good:    out.Transport.TxGood,
		Aborted: out.Transport.FailTx,
	}

	c.toTransport = append(c.toTransport, result)
	c.txFrame = nil
	c.txIndex = 0
}

func (c *Comp) completeRx(prev, state State) {
	if !c.rxActive || state != StateIdle {
		return
	}

	if prev != StateGoodEnd && prev != StateBadEnd {
		if !prev.IsReceive() && prev != StateSyncEscape {
			return
		}

		// The reception collapsed without a terminal verdict.
		c.resetRx()

		return
	}

	frame := &RxFrameMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: c.TransportPort.AsRemote(),
			Dst: c.transportRemote,
		},
		Payload: c.receivedPayload(),
		Good:    prev == StateGoodEnd,
	}

	c.toTransport = append(c.toTransport, frame)
	c.resetRx()
}

// receivedPayload strips the trailing checksum word, which reaches the
// assembly buffer like any other payload word.
func (c *Comp) receivedPayload() []uint32 {
	if len(c.rxWords) == 0 {
		return nil
	}

	payload := make([]uint32, len(c.rxWords)-1)
	copy(payload, c.rxWords[:len(c.rxWords)-1])

	return payload
}

func (c *Comp) resetRx() {
	c.rxWords = nil
	c.rxActive = false
	c.pendingGood = false
	c.pendingBad = false
}

func (c *Comp) abortAll() {
	if c.txFrame != nil {
		result := &TxResultMsg{
			MsgMeta: sim.MsgMeta{
				ID:  sim.GetIDGenerator().Generate(),
				Src: c.TransportPort.AsRemote(),
				Dst: c.transportRemote,
			},
			RspTo:   c.txFrame.ID,
			Aborted: true,
		}

		c.toTransport = append(c.toTransport, result)
		c.txFrame = nil
		c.txIndex = 0
	}

	c.resetRx()
}

func (c *Comp) sendWire(out Outputs) {
	if c.phyRemote == "" {
		return
	}

	msg := &TxWordMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: c.PhyPort.AsRemote(),
			Dst: c.phyRemote,
		},
		Word:            out.TxWord,
		Status:          out.Phy,
		RequestLinkInit: out.RequestLinkInit,
	}

	// A full outgoing buffer means the wire stopped draining; the word for
	// this cycle is lost, as it would be on a real cable.
	c.PhyPort.Send(msg)
}

func (c *Comp) flushTransport() {
	if c.transportRemote == "" {
		c.toTransport = nil
		return
	}

	for len(c.toTransport) > 0 {
		err := c.TransportPort.Send(c.toTransport[0])
		if err != nil {
			return
		}

		c.toTransport = c.toTransport[1:]
	}
}
