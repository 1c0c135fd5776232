// Package transport provides a frame-level traffic agent that sits above a
// link engine. It queues frames for transmission, records their outcomes,
// and collects the frames delivered by the receive side.
package transport

import (
	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/sim"
	"github.com/satalab/satalink/tracing"
)

// A Result records the outcome of one transmitted frame.
type Result struct {
	FrameID string
	Good    bool
	Aborted bool
	Time    sim.VTimeInSec
}

// A ReceivedFrame records one frame delivered by the link engine.
type ReceivedFrame struct {
	Payload []uint32
	Good    bool
	Time    sim.VTimeInSec
}

// An Agent is the transport layer of one side of the link. It feeds frames
// into the link engine and keeps a record of everything that comes back.
type Agent struct {
	*sim.TickingComponent

	LinkPort sim.Port

	linkRemote sim.RemotePort

	pending  []*link.FrameMsg
	sent     int
	Results  []Result
	Received []ReceivedFrame
}

// SetLinkRemote sets the link engine port that frames are sent to.
func (a *Agent) SetLinkRemote(remote sim.RemotePort) {
	a.linkRemote = remote
}

// EnqueueFrame queues a payload for transmission. The trailing checksum word
// is appended by the link engine, not the caller.
func (a *Agent) EnqueueFrame(payload []uint32) string {
	msg := &link.FrameMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: a.LinkPort.AsRemote(),
			Dst: a.linkRemote,
		},
		Payload: payload,
	}

	a.pending = append(a.pending, msg)
	a.TickLater()

	return msg.ID
}

// SentCount returns the number of frames handed to the link engine so far.
func (a *Agent) SentCount() int {
	return a.sent
}

// Tick pushes queued frames to the link engine and drains the responses.
func (a *Agent) Tick() bool {
	madeProgress := a.sendFrames()
	madeProgress = a.drainResponses() || madeProgress

	return madeProgress
}

func (a *Agent) sendFrames() bool {
	madeProgress := false

	for len(a.pending) > 0 {
		err := a.LinkPort.Send(a.pending[0])
		if err != nil {
			break
		}

		tracing.StartTask(
			a.pending[0].ID, "", a, "frame", "transmit")

		a.pending = a.pending[1:]
		a.sent++
		madeProgress = true
	}

	return madeProgress
}

func (a *Agent) drainResponses() bool {
	madeProgress := false

	for {
		msg := a.LinkPort.RetrieveIncoming()
		if msg == nil {
			break
		}

		now := a.CurrentTime()

		switch m := msg.(type) {
		case *link.TxResultMsg:
			a.Results = append(a.Results, Result{
				FrameID: m.RspTo,
				Good:    m.Good,
				Aborted: m.Aborted,
				Time:    now,
			})

			tracing.EndTask(m.RspTo, a)
		case *link.RxFrameMsg:
			a.Received = append(a.Received, ReceivedFrame{
				Payload: m.Payload,
				Good:    m.Good,
				Time:    now,
			})
		default:
			panic("transport agent received an unexpected message")
		}

		madeProgress = true
	}

	return madeProgress
}

// Builder can build transport agents.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	portBufSize int
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		portBufSize: 4,
	}
}

// WithEngine sets the event-driven simulation engine to use.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the agent.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithPortBufSize sets the capacity of the port buffers.
func (b Builder) WithPortBufSize(size int) Builder {
	b.portBufSize = size
	return b
}

// Build creates a transport agent with the given name.
func (b Builder) Build(name string) *Agent {
	a := new(Agent)
	a.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, a)

	a.LinkPort = sim.NewPort(a, b.portBufSize, b.portBufSize, name+".LinkPort")
	a.AddPort("Link", a.LinkPort)

	return a
}
