package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/satalab/satalink/crc"
	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/monitoring"
	"github.com/satalab/satalink/phy"
	"github.com/satalab/satalink/sim"
	"github.com/satalab/satalink/simulation"
	"github.com/satalab/satalink/tracing"
	"github.com/satalab/satalink/transport"
)

var runFlags struct {
	numFrames    int
	payloadSize  int
	seed         int64
	corrupt      int
	decodeErrors int
	dropLink     int
	maxCycles    int
	rawCompare   bool
	monitorPort  int
	noMonitor    bool
	openMonitor  bool
	output       string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a host-to-device frame transfer",
	Run: func(cmd *cobra.Command, _ []string) {
		applyEnvDefaults(cmd)
		runSimulation()
	},
}

// applyEnvDefaults fills in flags the user did not set from the
// environment, which Execute seeds from a .env file when one exists.
func applyEnvDefaults(cmd *cobra.Command) {
	if !cmd.Flags().Changed("monitor-port") {
		if v := os.Getenv("SATALINK_MONITOR_PORT"); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				fmt.Fprintf(os.Stderr,
					"Ignoring SATALINK_MONITOR_PORT %q: %s\n", v, err)
			} else {
				runFlags.monitorPort = port
			}
		}
	}

	if !cmd.Flags().Changed("output") {
		if v := os.Getenv("SATALINK_OUTPUT"); v != "" {
			runFlags.output = v
		}
	}
}

func init() {
	f := runCmd.Flags()

	f.IntVar(&runFlags.numFrames, "frames", 16,
		"number of frames the host transmits")
	f.IntVar(&runFlags.payloadSize, "payload-size", 64,
		"number of 32-bit words per frame")
	f.Int64Var(&runFlags.seed, "seed", 1,
		"random seed for payload generation")
	f.IntVar(&runFlags.corrupt, "corrupt", 0,
		"corrupt this many payload words on the wire")
	f.IntVar(&runFlags.decodeErrors, "decode-errors", 0,
		"inject this many decode errors on the wire")
	f.IntVar(&runFlags.dropLink, "drop-link", 0,
		"drop the link for this many cycles halfway through the run")
	f.IntVar(&runFlags.maxCycles, "max-cycles", 10000000,
		"give up after this many cycles")
	f.BoolVar(&runFlags.rawCompare, "raw-compare", false,
		"compare receive-side primitives before repeat expansion")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server (0 picks a random port)")
	f.BoolVar(&runFlags.noMonitor, "no-monitor", false,
		"disable the monitoring server")
	f.BoolVar(&runFlags.openMonitor, "open", false,
		"open the monitoring page in a browser")
	f.StringVar(&runFlags.output, "output", "",
		"name of the recording database file")

	rootCmd.AddCommand(runCmd)
}

type testbench struct {
	s *simulation.Simulation

	hostLink, devLink   *link.Comp
	hostAgent, devAgent *transport.Agent
	wire                *phy.Wire
}

func runSimulation() {
	tb := buildTestbench()
	defer tb.s.Terminate()

	if runFlags.openMonitor && tb.s.GetMonitor() != nil &&
		runFlags.monitorPort > 0 {
		url := fmt.Sprintf("http://localhost:%d", runFlags.monitorPort)
		_ = browser.OpenURL(url)
	}

	enqueueTraffic(tb)
	drive(tb)
	report(tb)
}

func buildTestbench() *testbench {
	tb := new(testbench)

	simBuilder := simulation.MakeBuilder()
	if runFlags.noMonitor {
		simBuilder = simBuilder.WithoutMonitoring()
	}
	if runFlags.monitorPort > 0 {
		simBuilder = simBuilder.WithMonitorPort(runFlags.monitorPort)
	}
	if runFlags.output != "" {
		simBuilder = simBuilder.WithOutputFileName(runFlags.output)
	}
	tb.s = simBuilder.Build()

	engine := tb.s.GetEngine()
	freq := 1 * sim.GHz
	cfg := link.Config{CompareRawReceiveWords: runFlags.rawCompare}

	linkBuilder := link.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithConfig(cfg)

	tb.hostLink = linkBuilder.
		WithAccumulator(crc.NewEngine32()).
		Build("Host.Link")
	tb.devLink = linkBuilder.
		WithAccumulator(crc.NewEngine32()).
		Build("Device.Link")

	tb.wire = phy.NewWire("Wire", engine, freq)
	tb.wire.PlugIn(tb.hostLink.PhyPort)
	tb.wire.PlugIn(tb.devLink.PhyPort)
	tb.hostLink.SetPhyRemote(tb.devLink.PhyPort.AsRemote())
	tb.devLink.SetPhyRemote(tb.hostLink.PhyPort.AsRemote())

	agentBuilder := transport.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq)
	tb.hostAgent = agentBuilder.Build("Host.Transport")
	tb.devAgent = agentBuilder.Build("Device.Transport")

	connectTransport(engine, freq, "Host.TransportConn",
		tb.hostAgent, tb.hostLink)
	connectTransport(engine, freq, "Device.TransportConn",
		tb.devAgent, tb.devLink)

	for _, c := range []sim.Component{
		tb.hostLink, tb.devLink, tb.hostAgent, tb.devAgent,
	} {
		tb.s.RegisterComponent(c)
	}

	attachTracers(tb)

	tb.wire.CorruptWords(runFlags.corrupt)
	tb.wire.InjectDecodeErrors(runFlags.decodeErrors)

	return tb
}

func connectTransport(
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

func attachTracers(tb *testbench) {
	stateTracer := tracing.NewStateTracer(
		tb.s.GetDataRecorder(), "link_state")
	tracing.CollectStateTrace(tb.hostLink, stateTracer)
	tracing.CollectStateTrace(tb.devLink, stateTracer)

	tracing.CollectTrace(tb.hostAgent, tb.s.GetVisTracer())
}

func enqueueTraffic(tb *testbench) {
	rng := rand.New(rand.NewSource(runFlags.seed))

	for i := 0; i < runFlags.numFrames; i++ {
		payload := make([]uint32, runFlags.payloadSize)
		for j := range payload {
			payload[j] = rng.Uint32()
		}

		tb.hostAgent.EnqueueFrame(payload)
	}
}

func drive(tb *testbench) {
	engine := tb.s.GetEngine()
	freq := 1 * sim.GHz

	var bar *monitoring.ProgressBar
	if monitor := tb.s.GetMonitor(); monitor != nil {
		bar = monitor.CreateProgressBar(
			"Frame transfer", uint64(runFlags.numFrames))
		bar.IncrementInProgress(uint64(runFlags.numFrames))
	}

	chunk := 10000
	dropped := false
	reported := 0

	for cycles := chunk; cycles <= runFlags.maxCycles; cycles += chunk {
		err := engine.RunUntil(freq.Period() * sim.VTimeInSec(cycles))
		if err != nil {
			panic(err)
		}

		if bar != nil && len(tb.hostAgent.Results) > reported {
			bar.MoveInProgressToFinished(
				uint64(len(tb.hostAgent.Results) - reported))
			reported = len(tb.hostAgent.Results)
		}

		if len(tb.hostAgent.Results) >= runFlags.numFrames {
			return
		}

		if runFlags.dropLink > 0 && !dropped &&
			len(tb.hostAgent.Results) >= runFlags.numFrames/2 {
			tb.wire.DropLink(runFlags.dropLink)
			dropped = true
		}
	}

	fmt.Fprintf(os.Stderr,
		"Giving up after %d cycles with %d of %d results.\n",
		runFlags.maxCycles, len(tb.hostAgent.Results), runFlags.numFrames)
}

func report(tb *testbench) {
	good, bad, aborted := 0, 0, 0
	for _, r := range tb.hostAgent.Results {
		switch {
		case r.Good:
			good++
		case r.Aborted:
			aborted++
		default:
			bad++
		}
	}

	received := 0
	for _, f := range tb.devAgent.Received {
		if f.Good {
			received++
		}
	}

	fmt.Printf("Frames sent:        %d\n", tb.hostAgent.SentCount())
	fmt.Printf("Acknowledged good:  %d\n", good)
	fmt.Printf("Acknowledged bad:   %d\n", bad)
	fmt.Printf("Aborted:            %d\n", aborted)
	fmt.Printf("Delivered good:     %d\n", received)
	fmt.Printf("Simulated time:     %.9fs\n",
		float64(tb.s.GetEngine().CurrentTime()))
}
