// Package farmcore is the cooperative, single-runner scheduling core for
// farm automation processes: a Circular Table of in-flight farm
// processes, advanced one instruction at a time by a periodic tick loop,
// gated by an Interlock Predicate that arbitrates exclusive firmware
// access against an out-of-band emergency lock.
//
// Package farmcore is the public entry point; the scheduler's moving
// parts (internal/table, internal/interlock, internal/stepexec,
// internal/supervisor) and its default swappable collaborators
// (internal/ast, internal/farmware) live under internal/ because nothing
// outside this module is meant to depend on their shapes directly --
// only on Runtime and the Submission API below.
package farmcore

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironleaf-farm/farmcore/internal/ast"
	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"github.com/ironleaf-farm/farmcore/internal/farmware"
	"github.com/ironleaf-farm/farmcore/internal/supervisor"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

// RPCPageID is the page id every synchronous RPC submission is queued
// under, per spec.md §6.
const RPCPageID int64 = -1

// RPCResult is the outcome `RPCRequest`'s on_complete callback receives:
// `rpc_ok{label}` or `rpc_error{label, explanation{message}}` (spec.md
// §4.6), collapsed into one struct since Go callbacks take one value.
type RPCResult struct {
	Label   string
	OK      bool
	Message string // valid only when !OK
}

// SequenceResult is the outcome `Sequence`'s background waiter delivers:
// `:ok` or `{:error, reason}` (spec.md §4.6).
type SequenceResult struct {
	OK     bool
	Reason string // valid only when !OK
}

// Runtime is the module's handle on a running scheduler: the Supervisor
// plus the bookkeeping the Submission API needs on top of it (tracking
// Sequence's background waiters so Close can wait for them, the derived
// AWAIT_POLL interval).
//
// Grounded on the teacher's realtime.RealtimeRuntime, which also wraps a
// lower-level engine (its embedded *statechartx.Runtime) with exactly the
// async bookkeeping (tickCtx/stopped) its embedding doesn't provide on
// its own; here that bookkeeping is an errgroup tracking waiter
// goroutines instead of a single tick goroutine, since the Supervisor
// already owns its own tick lifecycle.
type Runtime struct {
	sv        *supervisor.Supervisor
	awaitPoll time.Duration
	waiters   errgroup.Group
}

// Option configures a Runtime at construction time.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	supervisorOpts []supervisor.Option
}

// WithTickPeriod overrides the scheduler's tick period (default 20ms).
func WithTickPeriod(d time.Duration) Option {
	return func(c *runtimeConfig) {
		c.supervisorOpts = append(c.supervisorOpts, supervisor.WithTickPeriod(d))
	}
}

// WithProcessIO swaps the process_io_layer bound to every queued farm
// process.
func WithProcessIO(io farmproc.IOCallback) Option {
	return func(c *runtimeConfig) {
		c.supervisorOpts = append(c.supervisorOpts, supervisor.WithProcessIO(io))
	}
}

// WithHyperIO swaps the hyper_io_layer invoked by emergency lock/unlock.
func WithHyperIO(layer farmware.HyperIOLayer) Option {
	return func(c *runtimeConfig) {
		c.supervisorOpts = append(c.supervisorOpts, supervisor.WithHyperIO(layer))
	}
}

// WithObserver attaches a telemetry sink notified once per tick.
func WithObserver(obs telemetry.Observer) Option {
	return func(c *runtimeConfig) {
		c.supervisorOpts = append(c.supervisorOpts, supervisor.WithObserver(obs))
	}
}

// New constructs a Runtime. Call Start to begin ticking.
func New(opts ...Option) *Runtime {
	cfg := &runtimeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	sv := supervisor.New(cfg.supervisorOpts...)
	return &Runtime{
		sv:        sv,
		awaitPoll: 2 * sv.TickPeriod(),
	}
}

// Start begins the tick loop.
func (r *Runtime) Start() { r.sv.Start() }

// Close waits for any Sequence background waiters still in flight to
// observe their process's terminal status, then stops the tick loop, so
// no goroutine outlives the Runtime.
func (r *Runtime) Close() error {
	err := r.waiters.Wait()
	r.sv.Stop()
	return err
}

// RPCRequest is the synchronous submission entry point of spec.md §4.6.
// It takes an already-decoded program (see ast.Decode), extracts its
// required label, and either drives the hyper path (for an emergency
// lock/unlock wrapper) or queues and awaits an ordinary program, invoking
// onComplete with the outcome.
//
// Label failures are argument errors returned directly; they never
// reach onComplete, matching spec.md §7's submission-invalid category.
func (r *Runtime) RPCRequest(program ast.Node, onComplete func(RPCResult)) error {
	label, err := program.Label()
	if err != nil {
		return fmt.Errorf("farmcore: rpc_request: %w", err)
	}

	if hyperKind, ok := program.IsHyperWrapper(); ok {
		if err := r.runHyper(hyperKind); err != nil {
			return err
		}
		safeCallback(func() { onComplete(RPCResult{Label: label, OK: true}) })
		return nil
	}

	jobID, err := r.queueRetrying(program, RPCPageID)
	if err != nil {
		return err
	}

	proc, err := r.Await(jobID)
	if err != nil {
		return err
	}

	switch proc.GetStatus() {
	case farmproc.StatusDone:
		safeCallback(func() { onComplete(RPCResult{Label: label, OK: true}) })
	case farmproc.StatusCrashed:
		safeCallback(func() {
			onComplete(RPCResult{Label: label, OK: false, Message: proc.GetCrashReason()})
		})
	default:
		return fmt.Errorf("farmcore: rpc_request: job %d ended non-terminal (%s)", jobID, proc.GetStatus())
	}
	return nil
}

func (r *Runtime) runHyper(kind farmproc.Kind) error {
	for {
		var err error
		if kind == "emergency_lock" {
			err = r.sv.EmergencyLock()
		} else {
			err = r.sv.EmergencyUnlock()
		}
		if err == supervisor.ErrBusy {
			continue
		}
		return err
	}
}

// Sequence is the asynchronous submission entry point of spec.md §4.6: it
// queues program under page_id and returns immediately, invoking
// onComplete from a tracked background goroutine once the job reaches a
// terminal status.
func (r *Runtime) Sequence(program ast.Node, pageID int64, onComplete func(SequenceResult)) error {
	jobID, err := r.queueRetrying(program, pageID)
	if err != nil {
		return err
	}

	r.waiters.Go(func() error {
		proc, err := r.Await(jobID)
		if err != nil {
			safeCallback(func() { onComplete(SequenceResult{OK: false, Reason: err.Error()}) })
			return nil
		}
		if proc.GetStatus() == farmproc.StatusCrashed {
			safeCallback(func() {
				onComplete(SequenceResult{OK: false, Reason: proc.GetCrashReason()})
			})
			return nil
		}
		safeCallback(func() { onComplete(SequenceResult{OK: true}) })
		return nil
	})
	return nil
}

// Await polls lookup for jobID's terminal status, sleeping awaitPoll
// between observations of a live process and retrying immediately
// (without sleep) on busy, per spec.md §4.6.
func (r *Runtime) Await(jobID int64) (*farmproc.Process, error) {
	for {
		proc, err := r.sv.Lookup(jobID)
		switch err {
		case nil:
			if proc.GetStatus().Terminal() {
				return proc, nil
			}
			time.Sleep(r.awaitPoll)
		case supervisor.ErrBusy:
			// retry without sleep
		case supervisor.ErrNotFound:
			return nil, fmt.Errorf("farmcore: await: job %d: %w", jobID, err)
		default:
			return nil, err
		}
	}
}

func (r *Runtime) queueRetrying(program ast.Node, pageID int64) (int64, error) {
	for {
		jobID, err := r.sv.QueueProgram(program, pageID)
		if err == supervisor.ErrBusy {
			continue
		}
		return jobID, err
	}
}

// safeCallback runs fn, logging and swallowing any panic so user code can
// never crash the scheduler, per spec.md §4.6's callback guard.
func safeCallback(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("farmcore: on_complete callback panicked: %v", rec)
		}
	}()
	fn()
}
