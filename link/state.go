package link

// A State is one of the 24 protocol states of the link engine. Exactly one
// state is current per tick; the next state is computed purely from the
// current state and this tick's inputs.
type State int

// The protocol states, grouped by function.
const (
	// Link management
	StateIdle State = iota
	StateSyncEscape
	StateNoCommError
	StateNoComm
	StateSendAlign
	StateReset

	// Power management
	StatePMDeny

	// Transmit
	StateSendCheckReady
	StateSendStartOfFrame
	StateSendData
	StateReceiverHold
	StateSendHold
	StateSendCrc
	StateSendEndOfFrame
	StateWait

	// Receive
	StateReceiveCheckReady
	StateReceiveWaitFifo
	StateReceiveData
	StateHold
	StateReceiveHold
	StateReceiveEndOfFrame
	StateGoodCrc
	StateGoodEnd
	StateBadEnd

	numStates
)

var stateNames = [numStates]string{
	StateIdle:              "Idle",
	StateSyncEscape:        "SyncEscape",
	StateNoCommError:       "NoCommError",
	StateNoComm:            "NoComm",
	StateSendAlign:         "SendAlign",
	StateReset:             "Reset",
	StatePMDeny:            "PMDeny",
	StateSendCheckReady:    "SendCheckReady",
	StateSendStartOfFrame:  "SendStartOfFrame",
	StateSendData:          "SendData",
	StateReceiverHold:      "ReceiverHold",
	StateSendHold:          "SendHold",
	StateSendCrc:           "SendCrc",
	StateSendEndOfFrame:    "SendEndOfFrame",
	StateWait:              "Wait",
	StateReceiveCheckReady: "ReceiveCheckReady",
	StateReceiveWaitFifo:   "ReceiveWaitFifo",
	StateReceiveData:       "ReceiveData",
	StateHold:              "Hold",
	StateReceiveHold:       "ReceiveHold",
	StateReceiveEndOfFrame: "ReceiveEndOfFrame",
	StateGoodCrc:           "GoodCrc",
	StateGoodEnd:           "GoodEnd",
	StateBadEnd:            "BadEnd",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || s >= numStates {
		return "Unknown"
	}

	return stateNames[s]
}

// IsValid reports whether the value is one of the defined states.
func (s State) IsValid() bool {
	return s >= 0 && s < numStates
}

// IsTransmit reports whether the state belongs to the transmit region.
func (s State) IsTransmit() bool {
	return s >= StateSendCheckReady && s <= StateWait
}

// IsReceive reports whether the state belongs to the receive region.
func (s State) IsReceive() bool {
	return s >= StateReceiveCheckReady && s <= StateBadEnd
}
