package supervisor

import (
	"time"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"github.com/ironleaf-farm/farmcore/internal/farmware"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

// DefaultTickPeriod is spec.md §6's TICK_PERIOD.
const DefaultTickPeriod = 20 * time.Millisecond

// Option configures a Supervisor at construction time, the same
// functional-options shape the teacher applies to its Machine
// (internal/core/options.go).
type Option func(*Supervisor)

// WithTickPeriod overrides the default 20ms tick period.
func WithTickPeriod(d time.Duration) Option {
	return func(s *Supervisor) { s.tickPeriod = d }
}

// WithInterpreter swaps in a different step(Process) -> Process
// collaborator. Defaults to farmware.NewDefault().
func WithInterpreter(interp farmware.Interpreter) Option {
	return func(s *Supervisor) { s.interp = interp }
}

// WithProcessIO swaps the process_io_layer bound to every queued
// process. Defaults to farmware.NoopProcessIO.
func WithProcessIO(io farmproc.IOCallback) Option {
	return func(s *Supervisor) { s.processIO = io }
}

// WithHyperIO swaps the hyper_io_layer invoked by emergency_lock/unlock.
// Defaults to farmware.NoopHyperIO.
func WithHyperIO(layer farmware.HyperIOLayer) Option {
	return func(s *Supervisor) { s.hyperIO = layer }
}

// WithObserver attaches a telemetry sink notified once per tick.
func WithObserver(obs telemetry.Observer) Option {
	return func(s *Supervisor) { s.observer = obs }
}
