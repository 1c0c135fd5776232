package simulation

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satalab/satalink/sim"
	"github.com/satalab/satalink/transport"
)

var _ = Describe("Simulation", func() {
	var (
		simulation *Simulation
		agent      *transport.Agent
	)

	BeforeEach(func() {
		simulation = MakeBuilder().WithoutMonitoring().Build()

		agent = transport.MakeBuilder().
			WithEngine(simulation.GetEngine()).
			WithFreq(1 * sim.GHz).
			Build("Host.Transport")
	})

	AfterEach(func() {
		simulation.Terminate()

		os.Remove("satalink_sim_" + simulation.ID() + ".sqlite3")
	})

	It("should register a component with its ports", func() {
		simulation.RegisterComponent(agent)

		Expect(simulation.GetComponentByName("Host.Transport")).
			To(Equal(agent))
		Expect(simulation.GetPortByName("Host.Transport.LinkPort")).
			To(Equal(agent.LinkPort))
	})

	It("should refuse a duplicated component name", func() {
		simulation.RegisterComponent(agent)

		Expect(func() { simulation.RegisterComponent(agent) }).To(Panic())
	})

	It("should provide an engine and a tracer", func() {
		Expect(simulation.GetEngine()).ToNot(BeNil())
		Expect(simulation.GetVisTracer()).ToNot(BeNil())
		Expect(simulation.GetMonitor()).To(BeNil())
	})

	Context("Builder with custom output file", func() {
		var customSim *Simulation

		AfterEach(func() {
			if customSim != nil {
				customSim.Terminate()
				os.Remove("test_custom_output.sqlite3")
				customSim = nil
			}
		})

		It("should allow a custom output file to be set", func() {
			customSim = MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName("test_custom_output").
				Build()

			Expect(customSim.GetDataRecorder()).ToNot(BeNil())
		})
	})

	Context("Builder parameter validation", func() {
		It("should reject a monitor port without monitoring", func() {
			Expect(func() {
				MakeBuilder().
					WithoutMonitoring().
					WithMonitorPort(8080).
					Build()
			}).To(Panic())
		})
	})
})
