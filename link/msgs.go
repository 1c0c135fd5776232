package link

import (
	"github.com/satalab/satalink/sim"
)

// TxWordMsg is the word the link engine puts on the wire on one tick,
// together with the outgoing physical-layer status.
type TxWordMsg struct {
	sim.MsgMeta

	Word            uint32
	Status          PhyStatusOut
	RequestLinkInit bool
}

// Meta returns the meta data of the message.
func (m *TxWordMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned TxWordMsg with a different ID.
func (m *TxWordMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RxWordMsg is the word arriving from the wire on one tick, together with
// the incoming physical-layer status.
type RxWordMsg struct {
	sim.MsgMeta

	Word   uint32
	Status PhyStatusIn
}

// Meta returns the meta data of the message.
func (m *RxWordMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned RxWordMsg with a different ID.
func (m *RxWordMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// FrameMsg asks the link engine to transmit one frame.
type FrameMsg struct {
	sim.MsgMeta

	Payload []uint32
}

// Meta returns the meta data of the message.
func (m *FrameMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned FrameMsg with a different ID.
func (m *FrameMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// TxResultMsg reports the outcome of a transmitted frame.
type TxResultMsg struct {
	sim.MsgMeta

	// RspTo is the ID of the FrameMsg this result responds to.
	RspTo string

	Good    bool
	Aborted bool
}

// Meta returns the meta data of the message.
func (m *TxResultMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned TxResultMsg with a different ID.
func (m *TxResultMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the original request.
func (m *TxResultMsg) GetRspTo() string {
	return m.RspTo
}

// RxFrameMsg delivers a received frame to the transport layer.
type RxFrameMsg struct {
	sim.MsgMeta

	Payload []uint32
	Good    bool
}

// Meta returns the meta data of the message.
func (m *RxFrameMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned RxFrameMsg with a different ID.
func (m *RxFrameMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}
