package link

import (
	"github.com/satalab/satalink/primitive"
)

// advance computes the next state and drives the output vector for one
// tick. Output fields not driven by the current state keep the value copied
// forward by Step.
//
// The phy-not-ready check runs before every state except the ones that
// handle loss of signal themselves: the moment the physical layer drops
// ready, the next state is NoCommError regardless of any other condition.
func (c *Core) advance(in Inputs, rx rxView, out *Outputs) State {
	if !in.Phy.PhyReady && !handlesLinkLoss(c.state) {
		return StateNoCommError
	}

	switch c.state {
	case StateIdle:
		return c.idle(in, rx, out)
	case StateSyncEscape:
		return c.syncEscape(rx, out)
	case StateNoCommError:
		return c.noCommError(out)
	case StateNoComm:
		return c.noComm(out)
	case StateSendAlign:
		return c.sendAlign(in, out)
	case StateReset:
		return c.reset(out)
	case StatePMDeny:
		return c.pmDeny(rx, out)
	case StateSendCheckReady:
		return c.sendCheckReady(rx, out)
	case StateSendStartOfFrame:
		return c.sendStartOfFrame(rx, out)
	case StateSendData:
		return c.sendData(in, rx, out)
	case StateReceiverHold:
		return c.receiverHold(in, rx, out)
	case StateSendHold:
		return c.sendHold(in, rx, out)
	case StateSendCrc:
		return c.sendCrc(rx, out)
	case StateSendEndOfFrame:
		return c.sendEndOfFrame(rx, out)
	case StateWait:
		return c.wait(rx, out)
	case StateReceiveCheckReady:
		return c.receiveCheckReady(rx, out)
	case StateReceiveWaitFifo:
		return c.receiveWaitFifo(in, rx, out)
	case StateReceiveData:
		return c.receiveData(in, rx, out)
	case StateHold:
		return c.hold(in, rx, out)
	case StateReceiveHold:
		return c.receiveHold(in, rx, out)
	case StateReceiveEndOfFrame:
		return c.receiveEndOfFrame(out)
	case StateGoodCrc:
		return c.goodCrc(in, rx, out)
	case StateGoodEnd:
		return c.goodEnd(rx, out)
	case StateBadEnd:
		return c.badEnd(rx, out)
	default:
		// Defensive fallback: a corrupted state register recovers through
		// Idle rather than wedging the engine.
		c.cfg.Logger.Printf(
			"link: state register corrupted (%d), recovering through Idle",
			int(c.state))

		return StateIdle
	}
}

// handlesLinkLoss lists the states whose own transition logic already deals
// with a not-ready physical layer.
func handlesLinkLoss(s State) bool {
	switch s {
	case StateReset, StateNoCommError, StateNoComm, StateSendAlign:
		return true
	default:
		return false
	}
}

func txPrimitive(out *Outputs, p primitive.Word) {
	out.TxWord = uint32(p)
	out.Phy.PrimitivePresent = true
}

func txPayload(out *Outputs, word uint32) {
	out.TxWord = word
	out.Phy.PrimitivePresent = false
}

func (c *Core) scramblerReset(out *Outputs) {
	c.scr.Reset()
	out.ScramblerReset = true
}

func (c *Core) scramble(out *Outputs, word uint32) uint32 {
	c.scr.Advance(word)
	out.ScramblerAdvance = true

	return c.scr.Output()
}

func (c *Core) crcStart(out *Outputs) {
	c.acc.Start()
	out.CrcStart = true
}

func (c *Core) crcFold(out *Outputs, word uint32) {
	c.acc.Fold(word)
	out.CrcValid = true
}

func (c *Core) crcStop(out *Outputs) {
	c.acc.Stop()
	out.CrcStop = true
}

// Link management region.

func (c *Core) idle(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.Sync)
	out.Transport.LinkIdle = true
	out.Transport.CommErr = false

	switch {
	case in.Transport.TxRequest:
		return StateSendCheckReady
	case rx.is(primitive.XRdy):
		return StateReceiveWaitFifo
	case rx.primitive &&
		primitive.Word(rx.effective).IsPowerManagementRequest():
		return StatePMDeny
	default:
		return StateIdle
	}
}

func (c *Core) syncEscape(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.Sync)
	out.Transport.LinkIdle = false
	out.Transport.FailTx = true

	if rx.is(primitive.XRdy) || rx.is(primitive.Sync) {
		return StateIdle
	}

	return StateSyncEscape
}

func (c *Core) noCommError(out *Outputs) State {
	txPrimitive(out, primitive.Align)
	out.Transport.LinkIdle = false
	out.Transport.CommErr = true
	out.Transport.FailTx = true
	out.Phy.ClearStatus = true

	return StateNoComm
}

func (c *Core) noComm(out *Outputs) State {
	txPrimitive(out, primitive.Align)
	out.RequestLinkInit = true

	return StateSendAlign
}

func (c *Core) sendAlign(in Inputs, out *Outputs) State {
	txPrimitive(out, primitive.Align)
	out.RequestLinkInit = false

	if in.Phy.PhyReady {
		return StateIdle
	}

	return StateNoComm
}

func (c *Core) reset(out *Outputs) State {
	// The external reset is no longer asserted once this runs: Step holds
	// the engine here while the pin is active.
	*out = resetOutputs()

	return StateNoComm
}

// Power management region.

func (c *Core) pmDeny(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.PMNak)
	out.Transport.LinkIdle = false

	if rx.primitive &&
		primitive.Word(rx.effective).IsPowerManagementRequest() {
		return StatePMDeny
	}

	return StateIdle
}

// Transmit region.

func (c *Core) sendCheckReady(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.XRdy)
	out.Transport.LinkIdle = false
	out.Transport.TxGood = false
	out.Transport.TxBad = false
	out.Transport.FailTx = false

	switch {
	case rx.is(primitive.XRdy):
		// Both sides raised X_RDY at once; yield to the receive path.
		return StateReceiveWaitFifo
	case rx.is(primitive.RRdy):
		return StateSendStartOfFrame
	default:
		return StateSendCheckReady
	}
}

func (c *Core) sendStartOfFrame(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.SOF)
	c.scramblerReset(out)
	c.crcStart(out)

	if rx.is(primitive.Sync) {
		out.Transport.FailTx = true
		return StateIdle
	}

	return StateSendData
}

func (c *Core) sendData(in Inputs, rx rxView, out *Outputs) State {
	next := StateSendData

	switch {
	case in.Transport.Escape:
		next = StateSyncEscape
	case rx.is(primitive.Sync):
		out.Transport.FailTx = true
		next = StateIdle
	case rx.is(primitive.DMAT):
		next = StateSendCrc
	case in.Transport.DataDone:
		next = StateSendCrc
	case rx.is(primitive.Hold):
		next = StateReceiverHold
	case in.Transport.PauseTx:
		next = StateSendHold
	}

	// The payload word is consumed only on ticks where transmission
	// actually proceeds; transitions freeze the FIFO and the data path.
	// A transition tick still has to put a word on the wire, and a stale
	// payload word would be folded twice on the far side, so the gap
	// carries HOLD.
	if next == StateSendData {
		scrambled := c.scramble(out, in.TxData)
		c.crcFold(out, in.TxData)
		txPayload(out, scrambled)
		out.DataRead = true
	} else {
		txPrimitive(out, primitive.Hold)
	}

	return next
}

func (c *Core) receiverHold(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.HoldA)

	switch {
	case in.Phy.DecodeError:
		// A corrupted symbol while held is treated as a termination
		// condition: finalize the checksum and close the frame.
		return StateSendCrc
	case in.Transport.Escape:
		return StateSyncEscape
	case rx.is(primitive.Sync):
		out.Transport.FailTx = true
		return StateIdle
	case rx.is(primitive.Hold):
		return StateReceiverHold
	default:
		return StateSendData
	}
}

func (c *Core) sendHold(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.Hold)

	switch {
	case in.Phy.DecodeError:
		return StateSendCrc
	case in.Transport.Escape:
		return StateSyncEscape
	case rx.is(primitive.Sync):
		out.Transport.FailTx = true
		return StateIdle
	case rx.is(primitive.DMAT):
		return StateSendCrc
	case in.Transport.DataDone:
		return StateSendCrc
	case rx.is(primitive.Hold):
		return StateReceiverHold
	case in.Transport.PauseTx:
		return StateSendHold
	default:
		return StateSendData
	}
}

func (c *Core) sendCrc(rx rxView, out *Outputs) State {
	scrambled := c.scramble(out, c.acc.Residual())
	txPayload(out, scrambled)
	c.crcStop(out)

	if rx.is(primitive.Sync) {
		out.Transport.FailTx = true
		return StateIdle
	}

	return StateSendEndOfFrame
}

func (c *Core) sendEndOfFrame(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.EOF)

	if rx.is(primitive.Sync) {
		out.Transport.FailTx = true
		return StateIdle
	}

	return StateWait
}

func (c *Core) wait(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.WTrm)

	switch {
	case rx.is(primitive.ROK):
		// Latch the verdict and fall back to Idle. The SYNC transmitted
		// there releases the peer from its end state.
		out.Transport.TxGood = true
		return StateIdle
	case rx.is(primitive.RErr):
		out.Transport.TxBad = true
		return StateIdle
	case rx.is(primitive.Sync):
		return StateIdle
	default:
		return StateWait
	}
}

// Receive region.

func (c *Core) receiveWaitFifo(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.Sync)
	out.Transport.LinkIdle = false

	if !c.rxIs(rx, primitive.XRdy) {
		// The peer withdrew its ready before the FIFO drained.
		return StateIdle
	}

	if in.Transport.FifoReady {
		return StateReceiveCheckReady
	}

	return StateReceiveWaitFifo
}

func (c *Core) receiveCheckReady(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.RRdy)
	out.Transport.CrcGood = false
	out.Transport.FailTx = false

	switch {
	case c.rxIs(rx, primitive.SOF):
		c.scramblerReset(out)
		c.crcStart(out)

		return StateReceiveData
	case c.rxIs(rx, primitive.XRdy):
		return StateReceiveCheckReady
	default:
		return StateIdle
	}
}

func (c *Core) receiveData(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.RIP)
	c.receivePayload(rx, out)

	switch {
	case in.Transport.Escape:
		return StateSyncEscape
	case c.rxIs(rx, primitive.EOF):
		return StateReceiveEndOfFrame
	case c.rxIs(rx, primitive.WTrm):
		// Termination without an EOF: the frame cannot be good.
		return StateBadEnd
	case c.rxIs(rx, primitive.Sync):
		return StateIdle
	case c.rxIs(rx, primitive.Hold):
		return StateReceiveHold
	case !in.Transport.FifoReady:
		return StateHold
	default:
		return StateReceiveData
	}
}

// receivePayload descrambles and forwards one payload word. Words keep
// arriving for a short while after backpressure is raised, so Hold shares
// this path with ReceiveData. The forwarded-word strobe fires exactly on
// the ticks where the scrambler output changed.
func (c *Core) receivePayload(rx rxView, out *Outputs) {
	if rx.primitive {
		return
	}

	descrambled := c.scramble(out, rx.raw)
	c.crcFold(out, descrambled)
	out.RxData = descrambled
	out.RxDataValid = true
}

func (c *Core) hold(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.Hold)
	c.receivePayload(rx, out)

	switch {
	case in.Transport.Escape:
		return StateSyncEscape
	case c.rxIs(rx, primitive.EOF):
		return StateReceiveEndOfFrame
	case c.rxIs(rx, primitive.Sync):
		return StateIdle
	case in.Transport.FifoReady:
		return StateReceiveData
	default:
		return StateHold
	}
}

func (c *Core) receiveHold(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.HoldA)
	// The first word of a resumed transmission arrives while still in this
	// state, one tick before the transition back to ReceiveData lands.
	c.receivePayload(rx, out)

	switch {
	case in.Transport.Escape:
		return StateSyncEscape
	case c.rxIs(rx, primitive.EOF):
		return StateReceiveEndOfFrame
	case c.rxIs(rx, primitive.Sync):
		return StateIdle
	case c.rxIs(rx, primitive.Hold):
		return StateReceiveHold
	default:
		return StateReceiveData
	}
}

func (c *Core) receiveEndOfFrame(out *Outputs) State {
	txPrimitive(out, primitive.RIP)
	c.crcStop(out)

	if c.acc.Residual() == 0 {
		return StateGoodCrc
	}

	return StateBadEnd
}

func (c *Core) goodCrc(in Inputs, rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.RIP)
	out.Transport.CrcGood = true

	switch {
	case in.Transport.GoodFrame:
		return StateGoodEnd
	case in.Transport.BadFrame || in.Transport.Error:
		return StateBadEnd
	case c.rxIs(rx, primitive.Sync):
		return StateIdle
	default:
		return StateGoodCrc
	}
}

func (c *Core) goodEnd(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.ROK)

	if c.rxIs(rx, primitive.Sync) {
		return StateIdle
	}

	return StateGoodEnd
}

func (c *Core) badEnd(rx rxView, out *Outputs) State {
	txPrimitive(out, primitive.RErr)

	if c.rxIs(rx, primitive.Sync) {
		return StateIdle
	}

	return StateBadEnd
}
