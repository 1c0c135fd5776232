package tracing

import (
	"github.com/satalab/satalink/sim"
)

// NamedHookable is a domain that tasks can be collected from.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// HookPosTaskStart is a hook position that triggers when a task starts.
var HookPosTaskStart = &sim.HookPos{Name: "Task Start"}

// HookPosTaskStep is a hook position that triggers when a task makes
// progress.
var HookPosTaskStep = &sim.HookPos{Name: "Task Step"}

// HookPosTaskEnd is a hook position that triggers when a task ends.
var HookPosTaskEnd = &sim.HookPos{Name: "Task End"}

// StartTask notifies the tracers attached to the domain that a task has
// started.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Location: domain.Name(),
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskStart,
		Item:   task,
	})
}

// EndTask notifies the tracers attached to the domain that a task has
// completed.
func EndTask(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID: id,
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskEnd,
		Item:   task,
	})
}

// CollectTrace attaches a tracer to a domain so that the tasks of the domain
// are fed to the tracer.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hook := &taskHook{tracer: tracer}
	domain.AcceptHook(hook)
}

// taskHook translates task hook invocations into tracer calls.
type taskHook struct {
	tracer Tracer
}

func (h *taskHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
