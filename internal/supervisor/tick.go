package supervisor

import (
	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"github.com/ironleaf-farm/farmcore/internal/interlock"
	"github.com/ironleaf-farm/farmcore/internal/stepexec"
	"github.com/ironleaf-farm/farmcore/internal/telemetry"
)

// runTick executes spec.md §4.5's single-step scheduling decision: read
// the cursor, consult the interlock predicate, step at most one process,
// then rotate -- always, regardless of whether a step happened.
//
// Holding s.mu for the whole tick is deliberate: the busy window IS the
// lock-held window, so any request arriving mid-tick sees ErrBusy rather
// than interleaving with a half-finished step. Grounded on the teacher's
// realtime/runtime.go tickLoop, adapted from a recover-wrapped channel
// send to a recover-wrapped mutex-held step (see stepexec.Execute for the
// recover boundary itself).
func (s *Supervisor) runTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.table.Rotate()

	proc, ok := s.table.Current()
	if !ok {
		return
	}

	if proc.GetStatus().Terminal() {
		s.notify(s.table.CurrentID(), proc, true)
		return
	}

	kind := proc.GetPCKind()
	needsFW := kind.IsNeedsFW()
	allowedWhenLocked := kind.IsAllowedWhenLocked()
	locked := s.interlock.Locked()
	ownsOrFree := s.interlock.OwnsOrFree(proc.Ref())

	if !interlock.Permit(locked, needsFW, ownsOrFree, allowedWhenLocked) {
		s.notify(s.table.CurrentID(), proc, true)
		return
	}

	if needsFW {
		if owner, hasOwner := s.interlock.FirmwareOwner(); !hasOwner || owner == proc.Ref() {
			s.interlock.AcquireFirmware(proc.Ref())
		}
	}

	next := stepexec.Execute(s.interp, proc)
	s.table.UpdateCurrent(func(*farmproc.Process) *farmproc.Process { return next })
	s.notify(s.table.CurrentID(), next, false)
}

func (s *Supervisor) notify(jobID int64, proc *farmproc.Process, skipped bool) {
	if s.observer == nil {
		return
	}
	s.observer.Notify(telemetry.TickEvent{
		JobID:   jobID,
		Ref:     proc.Ref(),
		Kind:    proc.GetPCKind(),
		Status:  proc.GetStatus(),
		Skipped: skipped,
	})
}
