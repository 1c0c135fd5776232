package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/sim"
)

type testTimeTeller struct {
	currentTime sim.VTimeInSec
}

func (t *testTimeTeller) CurrentTime() sim.VTimeInSec {
	return t.currentTime
}

type insertedRow struct {
	table string
	entry any
}

// fakeRecorder captures inserted rows instead of writing a database.
type fakeRecorder struct {
	tables  []string
	rows    []insertedRow
	flushed int
}

func (r *fakeRecorder) CreateTable(tableName string, _ any) {
	r.tables = append(r.tables, tableName)
}

func (r *fakeRecorder) InsertData(tableName string, entry any) {
	r.rows = append(r.rows, insertedRow{tableName, entry})
}

func (r *fakeRecorder) ListTables() []string {
	return r.tables
}

func (r *fakeRecorder) Flush() {
	r.flushed++
}

var _ = Describe("DBTracer", func() {
	var (
		timeTeller *testTimeTeller
		recorder   *fakeRecorder
		tracer     *DBTracer
	)

	BeforeEach(func() {
		timeTeller = &testTimeTeller{}
		recorder = &fakeRecorder{}
		tracer = NewDBTracer(timeTeller, recorder)
	})

	It("should create the trace table up front", func() {
		Expect(recorder.tables).To(ContainElement("trace"))
	})

	It("should record a completed task with both timestamps", func() {
		timeTeller.currentTime = 1e-9
		tracer.StartTask(Task{
			ID:       "task-1",
			Kind:     "frame",
			What:     "transmit",
			Location: "Host.Transport",
		})

		timeTeller.currentTime = 5e-9
		tracer.EndTask(Task{ID: "task-1"})

		Expect(recorder.rows).To(HaveLen(1))

		entry := recorder.rows[0].entry.(taskTableEntry)
		Expect(entry.ID).To(Equal("task-1"))
		Expect(entry.Kind).To(Equal("frame"))
		Expect(entry.Location).To(Equal("Host.Transport"))
		Expect(entry.StartTime).To(BeNumerically("==", 1e-9))
		Expect(entry.EndTime).To(BeNumerically("==", 5e-9))
	})

	It("should ignore an end without a matching start", func() {
		tracer.EndTask(Task{ID: "unknown"})

		Expect(recorder.rows).To(BeEmpty())
	})

	It("should drop tasks outside the configured time range", func() {
		tracer.SetTimeRange(1e-9, 2e-9)

		timeTeller.currentTime = 3e-9
		tracer.StartTask(Task{ID: "late"})
		tracer.EndTask(Task{ID: "late"})

		Expect(recorder.rows).To(BeEmpty())
	})

	It("should flush the backend on termination", func() {
		tracer.Terminate()

		Expect(recorder.flushed).To(Equal(1))
	})

	It("should panic on a task without an ID", func() {
		Expect(func() { tracer.StartTask(Task{}) }).To(Panic())
	})
})

type fakeDomain struct {
	sim.HookableBase
	name string
}

func (d *fakeDomain) Name() string {
	return d.name
}

var _ = Describe("StateTracer", func() {
	var (
		recorder *fakeRecorder
		tracer   *StateTracer
	)

	BeforeEach(func() {
		recorder = &fakeRecorder{}
		tracer = NewStateTracer(recorder, "link_state")
	})

	It("should record state transitions", func() {
		tracer.Func(sim.HookCtx{
			Domain: &fakeDomain{name: "Host.Link"},
			Pos:    link.HookPosStateTransition,
			Item: link.StateTransition{
				From: link.StateIdle,
				To:   link.StateSendCheckReady,
				Time: 7e-9,
			},
		})

		Expect(recorder.rows).To(HaveLen(1))

		entry := recorder.rows[0].entry.(stateTableEntry)
		Expect(entry.Location).To(Equal("Host.Link"))
		Expect(entry.From).To(Equal("Idle"))
		Expect(entry.To).To(Equal("SendCheckReady"))
	})

	It("should ignore other hook positions", func() {
		tracer.Func(sim.HookCtx{
			Domain: &fakeDomain{name: "Host.Link"},
			Pos:    HookPosTaskStart,
			Item:   Task{},
		})

		Expect(recorder.rows).To(BeEmpty())
	})
})
