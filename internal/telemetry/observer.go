// Package telemetry provides an optional, non-blocking notification sink
// for tick activity, grounded on the teacher's
// internal/production/eventpublisher.go ChannelPublisher: fire-and-forget
// delivery that drops on backpressure rather than stalling the tick loop.
package telemetry

import "github.com/ironleaf-farm/farmcore/internal/farmproc"

// TickEvent reports the outcome of one tick's step attempt (or skip).
type TickEvent struct {
	JobID   int64
	Ref     farmproc.Ref
	Kind    farmproc.Kind
	Status  farmproc.Status
	Skipped bool // true if the predicate denied the step or the process was terminal; an empty cursor slot sends no event
}

// Observer receives tick notifications. Implementations MUST NOT block
// the caller for any meaningful duration -- they run on the tick
// goroutine, inside the supervisor's busy window.
type Observer interface {
	Notify(event TickEvent)
}

// ChannelObserver forwards tick events to a buffered channel, dropping
// silently when the channel is full.
type ChannelObserver struct {
	ch chan<- TickEvent
}

// NewChannelObserver creates a ChannelObserver writing to ch.
func NewChannelObserver(ch chan<- TickEvent) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Notify implements Observer.
func (o *ChannelObserver) Notify(event TickEvent) {
	select {
	case o.ch <- event:
	default:
	}
}
