package interlock

import (
	"sync"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

// HyperState is the out-of-band lock state (spec.md §3). The zero value
// means unlocked.
type HyperState int

const (
	Unlocked HyperState = iota
	EmergencyLocked
)

// State holds the firmware owner and hyper-call lock flag shared by the
// tick loop and the supervisor's request handlers. It is guarded by its
// own mutex, separate from the process table's, because the predicate
// only ever needs to read it -- mutation happens in exactly three places
// (tick-loop firmware acquisition, firmware release when Lookup cleans up
// a terminal process, and emergency_lock/emergency_unlock).
type State struct {
	mu      sync.Mutex
	fwProc  *farmproc.Ref
	hyper   HyperState
}

// NewState returns an unlocked state with no firmware owner.
func NewState() *State {
	return &State{}
}

// FirmwareOwner returns the ref of the process currently holding the
// firmware, if any.
func (s *State) FirmwareOwner() (farmproc.Ref, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fwProc == nil {
		return farmproc.Ref{}, false
	}
	return *s.fwProc, true
}

// OwnsOrFree reports whether ref currently owns the firmware, or no one
// does -- input b1 to the predicate.
func (s *State) OwnsOrFree(ref farmproc.Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fwProc == nil || *s.fwProc == ref
}

// AcquireFirmware grants firmware ownership to ref. Per spec.md §4.2,
// this happens atomically with the step commitment for a permitted
// NEEDS_FW instruction when fw_proc was none; callers MUST NOT call this
// when another process already owns the firmware.
func (s *State) AcquireFirmware(ref farmproc.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := ref
	s.fwProc = &r
}

// ReleaseFirmwareIfOwner clears fw_proc if it is currently held by ref.
// Called only on terminal-state cleanup (spec.md §9: never release on
// waiting, only on terminal detection).
func (s *State) ReleaseFirmwareIfOwner(ref farmproc.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fwProc != nil && *s.fwProc == ref {
		s.fwProc = nil
	}
}

// Locked reports whether the system is in emergency-lock -- input b0 to
// the predicate.
func (s *State) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hyper == EmergencyLocked
}

// Lock transitions to emergency_lock. Idempotent.
func (s *State) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hyper = EmergencyLocked
}

// Unlock transitions to unlocked. Does not alter fw_proc.
func (s *State) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hyper = Unlocked
}
