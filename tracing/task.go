// Package tracing collects what happens on the link over simulated time:
// frame-level tasks and protocol state transitions.
package tracing

import (
	"github.com/satalab/satalink/sim"
)

// A Task is a unit of work with a beginning and an end, such as the
// transmission of one frame.
type Task struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Location  string         `json:"location"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
}

// A Tracer can collect task traces.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}

// MsgIDAtReceiver generates a unique task ID for a message on the receiver
// side.
func MsgIDAtReceiver(msg sim.Msg, receiver sim.Named) string {
	return msg.Meta().ID + "@" + receiver.Name()
}
