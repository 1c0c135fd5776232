package link

// TransportStatusIn carries the per-tick control flags the transport layer
// drives into the link engine.
type TransportStatusIn struct {
	// PauseTx asks the link to pause an ongoing transmission.
	PauseTx bool

	// FifoReady reports that the receive FIFO can accept another word.
	FifoReady bool

	// TxRequest asks the link to start transmitting a frame.
	TxRequest bool

	// DataDone reports that no more payload words remain for this frame.
	DataDone bool

	// Escape aborts an ongoing transmission or reception.
	Escape bool

	// BadFrame is the transport's negative verdict on a received frame.
	BadFrame bool

	// Error reports a transport-level error on a received frame.
	Error bool

	// GoodFrame is the transport's positive verdict on a received frame.
	GoodFrame bool
}

// TransportStatusOut carries the per-tick status flags the link engine
// reports back to the transport layer.
type TransportStatusOut struct {
	// LinkIdle reports that the link is up and no frame is in flight.
	LinkIdle bool

	// TxBad reports that the peer rejected the transmitted frame.
	TxBad bool

	// TxGood reports that the peer accepted the transmitted frame.
	TxGood bool

	// CrcGood reports a zero checksum residual on a received frame.
	CrcGood bool

	// CommErr reports a loss of communication with the peer.
	CommErr bool

	// FailTx reports that a transmission was aborted.
	FailTx bool
}

// PhyStatusIn carries the per-tick flags the physical layer drives into the
// link engine.
type PhyStatusIn struct {
	// PrimitivePresent flags the incoming word as a control primitive
	// rather than payload.
	PrimitivePresent bool

	// PhyReady reports that the physical layer has an established link.
	PhyReady bool

	// DecodeError reports a corrupted symbol in the incoming stream.
	DecodeError bool
}

// PhyStatusOut carries the per-tick flags the link engine drives to the
// physical layer.
type PhyStatusOut struct {
	// PrimitivePresent flags the outgoing word as a control primitive.
	PrimitivePresent bool

	// ClearStatus asks the physical layer to clear its latched status.
	ClearStatus bool
}

// Bit positions of the external interface encoding. The structured records
// above are the only representation used inside the engine; the raw
// bit-vector layout survives solely at this encode/decode boundary.
const (
	TransportInPauseTxBit   = 0
	TransportInFifoReadyBit = 1
	TransportInTxRequestBit = 2
	TransportInDataDoneBit  = 3
	TransportInEscapeBit    = 4
	TransportInBadFrameBit  = 5
	TransportInErrorBit     = 6
	TransportInGoodFrameBit = 7

	TransportOutLinkIdleBit = 0
	TransportOutTxBadBit    = 1
	TransportOutTxGoodBit   = 2
	TransportOutCrcGoodBit  = 3
	TransportOutCommErrBit  = 4
	TransportOutFailTxBit   = 5

	PhyInPrimitivePresentBit = 0
	PhyInPhyReadyBit         = 1
	PhyInDecodeErrorBit      = 2

	PhyOutPrimitivePresentBit = 0
	PhyOutClearStatusBit      = 1
)

func bit(b bool, pos uint) uint8 {
	if b {
		return 1 << pos
	}

	return 0
}

func has(v uint8, pos uint) bool {
	return v&(1<<pos) != 0
}

// Encode packs the flags into the 8-bit wire representation.
func (s TransportStatusIn) Encode() uint8 {
	return bit(s.PauseTx, TransportInPauseTxBit) |
		bit(s.FifoReady, TransportInFifoReadyBit) |
		bit(s.TxRequest, TransportInTxRequestBit) |
		bit(s.DataDone, TransportInDataDoneBit) |
		bit(s.Escape, TransportInEscapeBit) |
		bit(s.BadFrame, TransportInBadFrameBit) |
		bit(s.Error, TransportInErrorBit) |
		bit(s.GoodFrame, TransportInGoodFrameBit)
}

// DecodeTransportStatusIn unpacks the 8-bit wire representation.
func DecodeTransportStatusIn(v uint8) TransportStatusIn {
	return TransportStatusIn{
		PauseTx:   has(v, TransportInPauseTxBit),
		FifoReady: has(v, TransportInFifoReadyBit),
		TxRequest: has(v, TransportInTxRequestBit),
		DataDone:  has(v, TransportInDataDoneBit),
		Escape:    has(v, TransportInEscapeBit),
		BadFrame:  has(v, TransportInBadFrameBit),
		Error:     has(v, TransportInErrorBit),
		GoodFrame: has(v, TransportInGoodFrameBit),
	}
}

// Encode packs the flags into the 6-bit wire representation.
func (s TransportStatusOut) Encode() uint8 {
	return bit(s.LinkIdle, TransportOutLinkIdleBit) |
		bit(s.TxBad, TransportOutTxBadBit) |
		bit(s.TxGood, TransportOutTxGoodBit) |
		bit(s.CrcGood, TransportOutCrcGoodBit) |
		bit(s.CommErr, TransportOutCommErrBit) |
		bit(s.FailTx, TransportOutFailTxBit)
}

// DecodeTransportStatusOut unpacks the 6-bit wire representation.
func DecodeTransportStatusOut(v uint8) TransportStatusOut {
	return TransportStatusOut{
		LinkIdle: has(v, TransportOutLinkIdleBit),
		TxBad:    has(v, TransportOutTxBadBit),
		TxGood:   has(v, TransportOutTxGoodBit),
		CrcGood:  has(v, TransportOutCrcGoodBit),
		CommErr:  has(v, TransportOutCommErrBit),
		FailTx:   has(v, TransportOutFailTxBit),
	}
}

// Encode packs the flags into the 3-bit wire representation.
func (s PhyStatusIn) Encode() uint8 {
	return bit(s.PrimitivePresent, PhyInPrimitivePresentBit) |
		bit(s.PhyReady, PhyInPhyReadyBit) |
		bit(s.DecodeError, PhyInDecodeErrorBit)
}

// DecodePhyStatusIn unpacks the 3-bit wire representation.
func DecodePhyStatusIn(v uint8) PhyStatusIn {
	return PhyStatusIn{
		PrimitivePresent: has(v, PhyInPrimitivePresentBit),
		PhyReady:         has(v, PhyInPhyReadyBit),
		DecodeError:      has(v, PhyInDecodeErrorBit),
	}
}

// Encode packs the flags into the 2-bit wire representation.
func (s PhyStatusOut) Encode() uint8 {
	return bit(s.PrimitivePresent, PhyOutPrimitivePresentBit) |
		bit(s.ClearStatus, PhyOutClearStatusBit)
}

// DecodePhyStatusOut unpacks the 2-bit wire representation.
func DecodePhyStatusOut(v uint8) PhyStatusOut {
	return PhyStatusOut{
		PrimitivePresent: has(v, PhyOutPrimitivePresentBit),
		ClearStatus:      has(v, PhyOutClearStatusBit),
	}
}
