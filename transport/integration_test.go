package transport_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satalab/satalink/crc"
	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/phy"
	"github.com/satalab/satalink/sim"
	"github.com/satalab/satalink/transport"
)

type testbench struct {
	engine sim.Engine

	hostLink, devLink   *link.Comp
	hostAgent, devAgent *transport.Agent
	wire                *phy.Wire
}

func buildTestbench() *testbench {
	tb := new(testbench)

	tb.engine = sim.NewSerialEngine()
	freq := 1 * sim.GHz

	linkBuilder := link.MakeBuilder().
		WithEngine(tb.engine).
		WithFreq(freq)

	tb.hostLink = linkBuilder.
		WithAccumulator(crc.NewEngine32()).
		Build("Host.Link")
	tb.devLink = linkBuilder.
		WithAccumulator(crc.NewEngine32()).
		Build("Device.Link")

	tb.wire = phy.NewWire("Wire", tb.engine, freq)
	tb.wire.SetLinkUpDelay(4)
	tb.wire.PlugIn(tb.hostLink.PhyPort)
	tb.wire.PlugIn(tb.devLink.PhyPort)
	tb.hostLink.SetPhyRemote(tb.devLink.PhyPort.AsRemote())
	tb.devLink.SetPhyRemote(tb.hostLink.PhyPort.AsRemote())

	agentBuilder := transport.MakeBuilder().
		WithEngine(tb.engine).
		WithFreq(freq)
	tb.hostAgent = agentBuilder.Build("Host.Transport")
	tb.devAgent = agentBuilder.Build("Device.Transport")

	connect(tb.engine, freq, "Host.TransportConn",
		tb.hostAgent, tb.hostLink)
	connect(tb.engine, freq, "Device.TransportConn",
		tb.devAgent, tb.devLink)

	return tb
}

func connect(
	engine sim.Engine,
	freq sim.Freq,
	name string,
	agent *transport.Agent,
	linkComp *link.Comp,
) {
	conn := sim.NewDirectConnection(name, engine, freq)
	conn.PlugIn(agent.LinkPort)
	conn.PlugIn(linkComp.TransportPort)

	agent.SetLinkRemote(linkComp.TransportPort.AsRemote())
	linkComp.SetTransportRemote(agent.LinkPort.AsRemote())
}

// runFor drives the simulation in bounded slices until the host collected
// the wanted number of results.
func (tb *testbench) runFor(results int) {
	for i := 1; i <= 100; i++ {
		err := tb.engine.RunUntil(sim.VTimeInSec(i) * 1e-6)
		Expect(err).To(BeNil())

		if len(tb.hostAgent.Results) >= results {
			return
		}
	}
}

func framePayload(seed, n int) []uint32 {
	payload := make([]uint32, n)
	for i := range payload {
		payload[i] = uint32(seed*1000003+i) * 2654435761
	}

	return payload
}

var _ = Describe("Host to device transfer", func() {
	var tb *testbench

	BeforeEach(func() {
		tb = buildTestbench()
	})

	It("should deliver queued frames in order and intact", func() {
		payloads := make([][]uint32, 4)
		for i := range payloads {
			payloads[i] = framePayload(i, 16)
			tb.hostAgent.EnqueueFrame(payloads[i])
		}

		tb.runFor(4)

		Expect(tb.hostAgent.Results).To(HaveLen(4))
		for i, r := range tb.hostAgent.Results {
			Expect(r.Good).To(BeTrue(), "frame %d not acknowledged", i)
			Expect(r.Aborted).To(BeFalse())
		}

		Expect(tb.devAgent.Received).To(HaveLen(4))
		for i, f := range tb.devAgent.Received {
			Expect(f.Good).To(BeTrue())
			Expect(f.Payload).To(Equal(payloads[i]))
		}
	})

	It("should match results to frames by message ID", func() {
		id := tb.hostAgent.EnqueueFrame(framePayload(9, 8))

		tb.runFor(1)

		Expect(tb.hostAgent.Results).To(HaveLen(1))
		Expect(tb.hostAgent.Results[0].FrameID).To(Equal(id))
	})

	It("should reject a frame corrupted on the wire", func() {
		tb.wire.CorruptWords(1)

		tb.hostAgent.EnqueueFrame(framePayload(1, 16))
		tb.hostAgent.EnqueueFrame(framePayload(2, 16))

		tb.runFor(2)

		Expect(tb.hostAgent.Results).To(HaveLen(2))
		Expect(tb.hostAgent.Results[0].Good).To(BeFalse())
		Expect(tb.hostAgent.Results[1].Good).To(BeTrue())

		// The corrupted frame is handed up flagged bad; the next one is
		// clean.
		Expect(tb.devAgent.Received[0].Good).To(BeFalse())
		Expect(tb.devAgent.Received[1].Good).To(BeTrue())
		Expect(tb.devAgent.Received[1].Payload).To(Equal(framePayload(2, 16)))
	})

	It("should recover after the link drops mid-stream", func() {
		for i := 0; i < 4; i++ {
			tb.hostAgent.EnqueueFrame(framePayload(i, 16))
		}

		ran := false
		for i := 1; i <= 100; i++ {
			err := tb.engine.RunUntil(sim.VTimeInSec(i) * 1e-6)
			Expect(err).To(BeNil())

			if !ran && len(tb.hostAgent.Results) >= 1 {
				tb.wire.DropLink(20)
				ran = true
			}

			if len(tb.hostAgent.Results) >= 4 {
				break
			}
		}

		Expect(len(tb.hostAgent.Results)).To(Equal(4))

		good := 0
		for _, f := range tb.devAgent.Received {
			if f.Good {
				good++
			}
		}

		// Frames in flight during the outage are aborted; everything
		// afterwards goes through cleanly.
		Expect(good).To(BeNumerically(">=", 2))
		Expect(tb.hostAgent.Results[len(tb.hostAgent.Results)-1].Good).
			To(BeTrue())
	})
})
