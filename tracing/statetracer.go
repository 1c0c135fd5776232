package tracing

import (
	"github.com/satalab/satalink/datarecording"
	"github.com/satalab/satalink/link"
	"github.com/satalab/satalink/sim"
)

type stateTableEntry struct {
	Location string
	From     string
	To       string
	Time     float64
}

// A StateTracer records every protocol state transition of a link engine
// into a database table.
type StateTracer struct {
	backend datarecording.DataRecorder
	table   string
}

// NewStateTracer creates a StateTracer writing into the given table.
func NewStateTracer(
	dataRecorder datarecording.DataRecorder,
	table string,
) *StateTracer {
	dataRecorder.CreateTable(table, stateTableEntry{})

	return &StateTracer{
		backend: dataRecorder,
		table:   table,
	}
}

// CollectStateTrace attaches the tracer to a link engine.
func CollectStateTrace(comp *link.Comp, tracer *StateTracer) {
	comp.AcceptHook(tracer)
}

// Func records one state transition.
func (t *StateTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != link.HookPosStateTransition {
		return
	}

	transition := ctx.Item.(link.StateTransition)
	domain := ctx.Domain.(sim.Named)

	t.backend.InsertData(t.table, stateTableEntry{
		Location: domain.Name(),
		From:     transition.From.String(),
		To:       transition.To.String(),
		Time:     float64(transition.Time),
	})
}
