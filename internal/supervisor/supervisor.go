// Package supervisor implements the Supervisor / Request Port and Tick
// Loop of spec.md §4.4–§4.5: the single serialized handler owning the
// Circular Table and Interlock State, and the periodic timer that
// advances exactly one farm process per tick.
package supervisor

import (
	"errors"
	"sync"
	"time"

	"github.com/ironleaf-farm/farmcore/internal/ast"
	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"github.com/ironleaf-farm/farmcore/internal/farmware"
	"github.com/ironleaf-farm/farmcore/internal/interlock"
	"github.com/ironleaf-farm/farmcore/internal/table"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

// ErrBusy is returned by every non-tick request while a tick is in
// progress (spec.md §4.4's busy protocol). Callers MUST retry without
// backoff beyond scheduler responsiveness.
var ErrBusy = errors.New("supervisor: busy")

// ErrNotFound is returned by Lookup for an id that was never queued, or
// whose terminal process was already cleaned up by a prior Lookup.
var ErrNotFound = errors.New("supervisor: job not found")

// Supervisor owns the process table and interlock state behind a single
// mutex. Requests (Queue, Lookup, EmergencyLock, EmergencyUnlock,
// Snapshot) take that one mutex via TryLock while the tick loop's runTick
// holds it with Lock for the whole tick, which is exactly the "two states: ready, busy" design spec.md §4.4 and §9
// call for -- no request queueing, no separate busy flag to keep in sync
// by hand.
//
// Grounded on the teacher's internal/core/machine.go, which also guards
// its whole mutable aggregate (state cache, current path, context) with
// one mutex rather than fine-grained locks; this Supervisor goes one step
// further and uses that same mutex's TryLock as the busy signal itself.
type Supervisor struct {
	mu sync.Mutex

	table     *table.Table[*farmproc.Process]
	interlock *interlock.State

	interp    farmware.Interpreter
	processIO farmproc.IOCallback
	hyperIO   farmware.HyperIOLayer
	observer  telemetry.Observer

	tickPeriod time.Duration
	ticker     *time.Ticker
	stopOnce   sync.Once
	stopCh     chan struct{}
	stopped    chan struct{}
	startOnce  sync.Once
}

// New constructs a Supervisor with an empty process table and an
// unlocked, unowned interlock state.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		table:      table.New[*farmproc.Process](),
		interlock:  interlock.NewState(),
		interp:     farmware.NewDefault(),
		processIO:  farmware.NoopProcessIO,
		hyperIO:    farmware.NoopHyperIO,
		tickPeriod: DefaultTickPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the tick loop goroutine. Idempotent: subsequent calls
// are no-ops.
func (s *Supervisor) Start() {
	s.startOnce.Do(func() {
		s.stopCh = make(chan struct{})
		s.stopped = make(chan struct{})
		s.ticker = time.NewTicker(s.tickPeriod)
		go s.tickLoop()
	})
}

// Stop signals the tick loop to exit and waits for it to do so. Safe to
// call multiple times and safe to call without a prior Start.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker == nil {
			return // Start was never called
		}
		s.ticker.Stop()
		close(s.stopCh)
		<-s.stopped
	})
}

func (s *Supervisor) tickLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			s.runTick()
		}
	}
}

// Queue constructs a new farm process bound to the supervisor's
// process_io_layer, inserts it into the table, and returns its job id,
// per spec.md §4.4. Returns ErrBusy if a tick is in progress.
func (s *Supervisor) Queue(program []farmproc.Instruction, heap *farmproc.Heap, pageID int64) (int64, error) {
	if !s.mu.TryLock() {
		return 0, ErrBusy
	}
	defer s.mu.Unlock()

	heap.PageID = pageID
	proc := farmproc.New(program, heap, s.processIO)
	return s.table.Push(proc), nil
}

// TickPeriod reports the configured tick period, letting callers derive
// AWAIT_POLL (spec.md §6: `2 × TICK_PERIOD`) without hardcoding it twice.
func (s *Supervisor) TickPeriod() time.Duration { return s.tickPeriod }

// QueueProgram slices an already-decoded program and queues it in one
// step, the common path for both RPCRequest and Sequence.
func (s *Supervisor) QueueProgram(program ast.Node, pageID int64) (int64, error) {
	instrs, heap := ast.Slice(program, pageID)
	return s.Queue(instrs, heap, pageID)
}

// Lookup reads the entry at jobID. If its status is terminal, it is
// removed from the table and, if it held the firmware, fw_proc is
// cleared -- in all cases the (final) process is returned to the caller,
// per spec.md §4.4. Returns ErrNotFound if jobID was never queued or was
// already cleaned up by an earlier Lookup, and ErrBusy if a tick is in
// progress.
func (s *Supervisor) Lookup(jobID int64) (*farmproc.Process, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	proc, ok := s.table.At(jobID)
	if !ok {
		return nil, ErrNotFound
	}
	if proc.GetStatus().Terminal() {
		s.table.Remove(jobID)
		s.interlock.ReleaseFirmwareIfOwner(proc.Ref())
	}
	return proc, nil
}

// EmergencyLock invokes the hyper I/O layer with the lock signal and
// transitions to emergency_lock. Neither this nor EmergencyUnlock
// enqueues a process (spec.md §4.4).
func (s *Supervisor) EmergencyLock() error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if _, err := s.hyperIO(farmware.HyperEmergencyLock); err != nil {
		return err
	}
	s.interlock.Lock()
	return nil
}

// EmergencyUnlock is the symmetric hyper call clearing emergency_lock.
func (s *Supervisor) EmergencyUnlock() error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if _, err := s.hyperIO(farmware.HyperEmergencyUnlock); err != nil {
		return err
	}
	s.interlock.Unlock()
	return nil
}

// Snapshot reports a point-in-time view of the table and interlock state
// for telemetry/inspection (dump_info, cmd/farmctl). Participates in the
// busy protocol like any other request.
func (s *Supervisor) Snapshot() (telemetry.TableSnapshot, error) {
	if !s.mu.TryLock() {
		return telemetry.TableSnapshot{}, ErrBusy
	}
	defer s.mu.Unlock()

	snap := telemetry.TableSnapshot{
		EmergencyLock: s.interlock.Locked(),
		CursorJobID:   s.table.CurrentID(),
	}
	if owner, ok := s.interlock.FirmwareOwner(); ok {
		snap.FirmwareOwner = owner.String()
	}
	s.table.Reduce(nil, func(_ *farmproc.Process, id int64, p *farmproc.Process) *farmproc.Process {
		snap.Processes = append(snap.Processes, telemetry.ProcessSnapshot{
			JobID:  id,
			Ref:    p.Ref().String(),
			Status: p.GetStatus().String(),
			Kind:   string(p.GetPCKind()),
		})
		return nil
	})
	return snap, nil
}
