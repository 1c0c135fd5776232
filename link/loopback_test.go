package link

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satalab/satalink/crc"
)

// loopback drives two engines in lockstep, each one's transmitted word
// arriving at the other one tick later.
type loopback struct {
	host, dev       *Core
	hostOut, devOut Outputs
}

func newLoopback() *loopback {
	return &loopback{
		host:    NewCore(crc.NewEngine32(), Config{}),
		dev:     NewCore(crc.NewEngine32(), Config{}),
		hostOut: resetOutputs(),
		devOut:  resetOutputs(),
	}
}

func (l *loopback) step(hostIn, devIn Inputs) (Outputs, Outputs) {
	hostIn.RxWord = l.devOut.TxWord
	hostIn.Phy.PrimitivePresent = l.devOut.Phy.PrimitivePresent
	hostIn.Phy.PhyReady = true

	devIn.RxWord = l.hostOut.TxWord
	devIn.Phy.PrimitivePresent = l.hostOut.Phy.PrimitivePresent
	devIn.Phy.PhyReady = true

	l.hostOut = l.host.Step(hostIn)
	l.devOut = l.dev.Step(devIn)

	return l.hostOut, l.devOut
}

type frameOpts struct {
	corruptWord int // payload word index to flip in flight, -1 for none
	stallFrom   int // first step of the receive FIFO stall window
	stallFor    int
	pauseFrom   int // first step of the transmit pause window
	pauseFor    int
	escape      bool // abort from SendData via the escape flag
	reject      bool // transport rejects the frame after a good checksum
}

type frameResult struct {
	txGood, txBad, failTx bool
	delivered             bool
	received              []uint32
	rxValids              int
	rxScramblerAdvances   int
	hostVisited           map[State]bool
	devVisited            map[State]bool
}

func runFrame(l *loopback, payload []uint32, opts frameOpts) frameResult {
	res := frameResult{
		hostVisited: map[State]bool{},
		devVisited:  map[State]bool{},
	}

	idx := 0
	txActive := true
	payloadSeen := 0

	for step := 1; step <= 3000; step++ {
		hostIn := Inputs{}
		hostIn.Transport.TxRequest = txActive
		if txActive {
			if idx < len(payload) {
				hostIn.TxData = payload[idx]
			} else {
				hostIn.Transport.DataDone = true
			}
		}

		inPause := opts.pauseFor > 0 &&
			step >= opts.pauseFrom && step < opts.pauseFrom+opts.pauseFor
		hostIn.Transport.PauseTx = inPause

		if opts.escape && l.host.State() == StateSendData {
			hostIn.Transport.Escape = true
		}

		devIn := Inputs{}
		devIn.Transport.FifoReady = true
		if opts.stallFor > 0 &&
			step >= opts.stallFrom && step < opts.stallFrom+opts.stallFor {
			devIn.Transport.FifoReady = false
		}

		if l.devOut.Transport.CrcGood {
			if opts.reject {
				devIn.Transport.BadFrame = true
			} else {
				devIn.Transport.GoodFrame = true
			}
		}

		// Fault injection happens on the word in flight toward the device.
		if !l.hostOut.Phy.PrimitivePresent {
			if payloadSeen == opts.corruptWord {
				l.hostOut.TxWord ^= 1 << 11
			}
			payloadSeen++
		}

		hostOut, devOut := l.step(hostIn, devIn)

		if hostOut.DataRead {
			idx++
		}

		if devOut.RxDataValid {
			res.received = append(res.received, devOut.RxData)
			res.rxValids++
		}

		if devOut.ScramblerAdvance && l.dev.State().IsReceive() {
			res.rxScramblerAdvances++
		}

		if hostOut.Transport.TxGood {
			res.txGood = true
			txActive = false
		}
		if hostOut.Transport.TxBad {
			res.txBad = true
			txActive = false
		}
		if hostOut.Transport.FailTx {
			res.failTx = true
			txActive = false
		}

		res.hostVisited[l.host.State()] = true
		res.devVisited[l.dev.State()] = true

		if l.dev.State() == StateGoodEnd {
			res.delivered = true
		}

		if !txActive &&
			l.host.State() == StateIdle && l.dev.State() == StateIdle {
			break
		}
	}

	return res
}

func lockstepPayload(n int) []uint32 {
	rng := rand.New(rand.NewSource(int64(n)))

	payload := make([]uint32, n)
	for i := range payload {
		payload[i] = rng.Uint32()
	}

	return payload
}

var _ = Describe("Two engines in lockstep", func() {
	var l *loopback

	BeforeEach(func() {
		l = newLoopback()
	})

	It("should transfer a frame intact", func() {
		payload := lockstepPayload(32)

		res := runFrame(l, payload, frameOpts{corruptWord: -1})

		Expect(res.txGood).To(BeTrue())
		Expect(res.txBad).To(BeFalse())
		Expect(res.failTx).To(BeFalse())
		Expect(res.delivered).To(BeTrue())

		// The forwarded words are the payload plus the trailing checksum.
		Expect(res.received).To(HaveLen(len(payload) + 1))
		Expect(res.received[:len(payload)]).To(Equal(payload))
	})

	It("should advance the receive scrambler exactly once per payload word",
		func() {
			res := runFrame(l, lockstepPayload(16), frameOpts{corruptWord: -1})

			// 16 payload words plus the trailing checksum word, no
			// duplicates from transition ticks.
			Expect(res.rxScramblerAdvances).To(Equal(16 + 1))
			Expect(res.rxValids).To(Equal(16 + 1))
		})

	It("should transfer a one-word frame", func() {
		payload := []uint32{0xA5A5A5A5}

		res := runFrame(l, payload, frameOpts{corruptWord: -1})

		Expect(res.txGood).To(BeTrue())
		Expect(res.received[:1]).To(Equal(payload))
	})

	It("should reject a frame corrupted on the wire", func() {
		res := runFrame(l, lockstepPayload(32), frameOpts{corruptWord: 5})

		Expect(res.txGood).To(BeFalse())
		Expect(res.txBad).To(BeTrue())
		Expect(res.delivered).To(BeFalse())
		Expect(res.devVisited[StateBadEnd]).To(BeTrue())
	})

	It("should survive receive-side backpressure", func() {
		res := runFrame(l, lockstepPayload(64), frameOpts{
			corruptWord: -1,
			stallFrom:   20,
			stallFor:    10,
		})

		Expect(res.txGood).To(BeTrue())
		Expect(res.received[:64]).To(Equal(lockstepPayload(64)))
		Expect(res.devVisited[StateHold]).To(BeTrue())
		Expect(res.hostVisited[StateReceiverHold]).To(BeTrue())
	})

	It("should survive a transmit pause", func() {
		res := runFrame(l, lockstepPayload(64), frameOpts{
			corruptWord: -1,
			pauseFrom:   20,
			pauseFor:    8,
		})

		Expect(res.txGood).To(BeTrue())
		Expect(res.received[:64]).To(Equal(lockstepPayload(64)))
		Expect(res.hostVisited[StateSendHold]).To(BeTrue())
		Expect(res.devVisited[StateReceiveHold]).To(BeTrue())
	})

	It("should abort through the escape path", func() {
		res := runFrame(l, lockstepPayload(4096), frameOpts{
			corruptWord: -1,
			escape:      true,
		})

		Expect(res.failTx).To(BeTrue())
		Expect(res.txGood).To(BeFalse())
		Expect(res.delivered).To(BeFalse())
		Expect(res.hostVisited[StateSyncEscape]).To(BeTrue())
	})

	It("should report a transport rejection back to the sender", func() {
		res := runFrame(l, lockstepPayload(8), frameOpts{
			corruptWord: -1,
			reject:      true,
		})

		Expect(res.txBad).To(BeTrue())
		Expect(res.txGood).To(BeFalse())
		Expect(res.delivered).To(BeFalse())
		Expect(res.devVisited[StateGoodCrc]).To(BeTrue())
		Expect(res.devVisited[StateBadEnd]).To(BeTrue())
	})
})
