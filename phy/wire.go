// Package phy models the physical layer between two link engines: a wire
// that carries one 32-bit word per tick in each direction and owns the
// out-of-band link initialization handshake.
package phy

import (
	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/sim"
)

// HookPosWireDeliver marks the wire delivering a word to a receiver.
var HookPosWireDeliver = &sim.HookPos{Name: "Wire Deliver"}

// A Wire connects exactly two link-engine phy ports. Every word sent on one
// side is delivered to the other side one cycle later, rewritten as an
// incoming word with the receive-side physical status attached.
//
// The wire starts down. A transmitter raising its link-init request starts
// the out-of-band handshake; after LinkUpDelay cycles the wire reports
// ready on both sides. Fault injection can corrupt payload words, flag
// decode errors, or drop the link entirely.
type Wire struct {
	*sim.TickingComponent

	ports   []sim.Port
	portMap map[sim.RemotePort]sim.Port

	ready       bool
	linkUpDelay int
	countdown   int

	downRemaining      int
	corruptRemaining   int
	decodeErrRemaining int
}

// NewWire creates a Wire. The wire ticks with secondary events so that both
// link engines observe its deliveries on their next cycle.
func NewWire(name string, engine sim.Engine, freq sim.Freq) *Wire {
	w := new(Wire)
	w.TickingComponent = sim.NewSecondaryTickingComponent(name, engine, freq, w)
	w.portMap = make(map[sim.RemotePort]sim.Port)
	w.linkUpDelay = 8

	return w
}

// SetLinkUpDelay sets how many cycles the out-of-band handshake takes.
func (w *Wire) SetLinkUpDelay(cycles int) {
	w.linkUpDelay = cycles
}

// SetReady forces the link state, bypassing the handshake.
func (w *Wire) SetReady(ready bool) {
	w.ready = ready
	w.countdown = 0
}

// Ready reports whether the link is established.
func (w *Wire) Ready() bool {
	return w.ready
}

// DropLink takes the link down for the given number of cycles. The engines
// on both sides observe the loss and fall back to their error recovery.
func (w *Wire) DropLink(cycles int) {
	w.ready = false
	w.downRemaining = cycles
}

// CorruptWords flips a bit in the next n payload words crossing the wire.
func (w *Wire) CorruptWords(n int) {
	w.corruptRemaining = n
}

// InjectDecodeErrors flags the next n delivered words as undecodable.
func (w *Wire) InjectDecodeErrors(n int) {
	w.decodeErrRemaining = n
}

// PlugIn connects a link-engine phy port to the wire.
func (w *Wire) PlugIn(port sim.Port) {
	w.Lock()
	defer w.Unlock()

	if len(w.ports) == 2 {
		panic("wire " + w.Name() + " already connects two ports")
	}

	w.ports = append(w.ports, port)
	w.portMap[port.AsRemote()] = port

	port.SetConnection(w)
}

// Unplug is not supported on a wire.
func (w *Wire) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port when it can accept deliveries again.
func (w *Wire) NotifyAvailable(p sim.Port) {
	for _, port := range w.ports {
		if port == p {
			continue
		}

		port.NotifyAvailable()
	}

	w.TickNow()
}

// NotifySend is called by a port when a message is sent through the wire.
func (w *Wire) NotifySend() {
	w.TickNow()
}

// Tick moves words across the wire and advances the handshake.
func (w *Wire) Tick() bool {
	w.updateLinkState()

	madeProgress := false
	for _, port := range w.ports {
		madeProgress = w.forward(port) || madeProgress
	}

	return madeProgress
}

func (w *Wire) updateLinkState() {
	if w.downRemaining > 0 {
		w.downRemaining--
		w.countdown = 0

		return
	}

	if w.countdown > 0 {
		w.countdown--
		if w.countdown == 0 {
			w.ready = true
		}
	}
}

func (w *Wire) forward(port sim.Port) bool {
	madeProgress := false

	for {
		head := port.PeekOutgoing()
		if head == nil {
			break
		}

		txWord, ok := head.(*link.TxWordMsg)
		if !ok {
			panic("wire can only carry TxWordMsg")
		}

		dst, found := w.portMap[txWord.Dst]
		if !found {
			panic("destination port " + string(txWord.Dst) +
				" is not connected to " + w.Name())
		}

		rxWord := w.transform(txWord)

		err := dst.Deliver(rxWord)
		if err != nil {
			break
		}

		w.InvokeHook(sim.HookCtx{
			Domain: w,
			Pos:    HookPosWireDeliver,
			Item:   rxWord,
		})

		madeProgress = true
		port.RetrieveOutgoing()
	}

	return madeProgress
}

// transform rewrites a transmitted word into the word the far side receives,
// applying the handshake state and any pending fault injection.
func (w *Wire) transform(txWord *link.TxWordMsg) *link.RxWordMsg {
	if txWord.RequestLinkInit && !w.ready &&
		w.countdown == 0 && w.downRemaining == 0 {
		w.countdown = w.linkUpDelay
	}

	word := txWord.Word
	if w.corruptRemaining > 0 && !txWord.Status.PrimitivePresent {
		word ^= 1
		w.corruptRemaining--
	}

	status := link.PhyStatusIn{
		PrimitivePresent: txWord.Status.PrimitivePresent,
		PhyReady:         w.ready,
	}

	if w.decodeErrRemaining > 0 {
		status.DecodeError = true
		w.decodeErrRemaining--
	}

	return &link.RxWordMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: txWord.Src,
			Dst: txWord.Dst,
		},
		Word:   word,
		Status: status,
	}
}
