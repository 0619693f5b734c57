// Package farmproc defines the farm process data model: the opaque-to-the-
// scheduler unit of work described in spec.md §3, along with the two
// static instruction-kind sets the interlock predicate consults.
package farmproc

import (
	"fmt"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a farm process. ok and waiting are
// live; done and crashed are terminal.
type Status int

const (
	StatusOK Status = iota
	StatusWaiting
	StatusDone
	StatusCrashed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWaiting:
		return "waiting"
	case StatusDone:
		return "done"
	case StatusCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether a process in this status is eligible for
// lookup-triggered cleanup.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCrashed
}

// Ref is a stable identity distinguishing a farm process from all others
// ever created. It is independent of the Circular Table's job_id: job_id
// names a slot in the table, Ref names the process itself, so firmware
// ownership (which outlives table compaction) can be compared safely.
type Ref uuid.UUID

func (r Ref) String() string { return uuid.UUID(r).String() }

// NewRef mints a fresh, globally unique process identity.
func NewRef() Ref { return Ref(uuid.New()) }

// Kind tags the instruction at a process's current program counter.
type Kind string

// IOCallback is the effect layer invoked by the interpreter during step.
// It mirrors spec.md §6's process_io_layer contract.
type IOCallback func(instr Instruction) (any, error)

// Instruction is the minimal shape the interpreter needs to hand an
// instruction to process_io_layer: its kind plus resolved arguments.
type Instruction struct {
	Kind Kind
	Args map[string]any
}

// Process is the farm process record the scheduler observes and mutates.
// Its program counter, heap, and I/O callback are internal state the core
// never inspects directly; it only ever calls the accessor/mutator
// methods below, per spec.md §3.
type Process struct {
	ref         Ref
	status      Status
	crashReason string
	pcKind      Kind

	Heap *Heap
	IO   IOCallback

	// Program is the decoded instruction sequence this process steps
	// through; PC indexes into it. Owned by the interpreter stand-in
	// (package farmware), never mutated by the scheduler.
	Program []Instruction
	PC      int
}

// New constructs a fresh, live farm process bound to an I/O callback and
// heap, per spec.md §6's `new(io_callback, page_address, heap) -> Process`
// construction contract. PageAddress is stored on the heap by the caller
// (ast.Slice) before New is invoked; it is not a Process field because the
// scheduler never reads it.
func New(program []Instruction, heap *Heap, io IOCallback) *Process {
	p := &Process{
		ref:    NewRef(),
		status: StatusOK,
		Heap:   heap,
		IO:     io,
		Program: program,
	}
	p.refreshPCKind()
	return p
}

func (p *Process) refreshPCKind() {
	if p.PC >= 0 && p.PC < len(p.Program) {
		p.pcKind = p.Program[p.PC].Kind
	} else {
		p.pcKind = ""
	}
}

// Ref returns the process's stable identity.
func (p *Process) Ref() Ref { return p.ref }

// GetStatus returns the current lifecycle status.
func (p *Process) GetStatus() Status { return p.status }

// SetStatus mutates the lifecycle status. Only the step executor and
// supervisor call this.
func (p *Process) SetStatus(s Status) { p.status = s }

// GetCrashReason returns the failure message, valid only when
// GetStatus() == StatusCrashed.
func (p *Process) GetCrashReason() string { return p.crashReason }

// SetCrashReason records a failure message.
func (p *Process) SetCrashReason(reason string) { p.crashReason = reason }

// GetPCKind returns the instruction kind at the current program counter.
// Returns "" if the program counter is out of range (e.g. a process that
// has already fallen off the end of its program without reaching an
// explicit terminal instruction).
func (p *Process) GetPCKind() Kind {
	p.refreshPCKind()
	return p.pcKind
}

// Clone returns a shallow copy of p suitable for the step executor to
// hand back on crash (spec.md §4.3: "a clone of p with status = crashed").
// Heap and IO are shared by reference deliberately: they are the
// process's own state, not the scheduler's, and a crash does not erase
// partial progress recorded there.
func (p *Process) Clone() *Process {
	cp := *p
	return &cp
}
