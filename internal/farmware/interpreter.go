// Package farmware is the default, swappable stand-in for the AST
// interpreter and I/O effect layer spec.md §1 places out of scope as
// external collaborators. The scheduler only ever calls Interpreter.Step;
// this package makes that call meaningful without a real robot attached.
package farmware

import (
	"errors"
	"fmt"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

// Interpreter is the external collaborator contract of spec.md §6:
// `step(Process) -> Process`, potentially raising a recoverable
// "interpreter exception" carrying partial progress.
type Interpreter interface {
	Step(p *farmproc.Process) (*farmproc.Process, error)
}

// PartialProgressError is the "dedicated interpreter exception" of
// spec.md §6: it carries a process whose partial progress the step
// executor should preserve verbatim rather than marking crashed.
type PartialProgressError struct {
	FarmProc *farmproc.Process
}

func (e *PartialProgressError) Error() string {
	return fmt.Sprintf("farmware: recoverable interpreter error at pc=%d", e.FarmProc.PC)
}

// Default is the default Interpreter: it executes one instruction per
// Step call by invoking the process's I/O callback and advancing PC,
// evaluating any starlark-expression arguments along the way (see
// expr.go). It has no notion of program semantics beyond "call IO, then
// advance" -- real movement/servo/home control lives on the other side of
// IOCallback, which is exactly the boundary spec.md §1 draws.
type Default struct {
	// Waits, if set, marks instruction kinds that Step reports as "still
	// in progress" (status -> waiting) instead of advancing past them.
	// The IO callback's result is not inspected, so each later Step calls
	// the callback again and reports waiting again; the program counter
	// never moves past such an instruction.
	Waits map[farmproc.Kind]struct{}
}

// NewDefault returns a Default interpreter with no waiting instruction
// kinds configured.
func NewDefault() *Default {
	return &Default{Waits: map[farmproc.Kind]struct{}{}}
}

// Step executes the instruction at p's program counter by invoking its
// I/O callback, then advances the program counter. Returns a process
// whose status reflects the outcome: ok/waiting if there is more program
// left to run, done if the program counter has run off the end.
//
// Step never panics on farm-process-originated failures -- the IO
// callback is expected to return an error to signal instruction failure,
// which Step converts to a *PartialProgressError carrying the process
// unchanged (its status is whatever the caller already set), matching
// spec.md §6's "may raise a dedicated interpreter exception carrying a
// farm_proc field".
func (d *Default) Step(p *farmproc.Process) (*farmproc.Process, error) {
	if p == nil {
		return nil, errors.New("farmware: step called with nil process")
	}
	if p.GetStatus().Terminal() {
		return p, nil
	}

	kind := p.GetPCKind()
	if kind == "" {
		p.SetStatus(farmproc.StatusDone)
		return p, nil
	}

	instr := p.Program[p.PC]
	args, err := resolveArgs(p.Heap, instr.Args)
	if err != nil {
		return p, &PartialProgressError{FarmProc: p}
	}

	if p.IO != nil {
		if _, ioErr := p.IO(farmproc.Instruction{Kind: kind, Args: args}); ioErr != nil {
			return p, &PartialProgressError{FarmProc: p}
		}
	}

	if _, waits := d.Waits[kind]; waits {
		p.SetStatus(farmproc.StatusWaiting)
		return p, nil
	}

	p.PC++
	if p.PC >= len(p.Program) {
		p.SetStatus(farmproc.StatusDone)
	} else {
		p.SetStatus(farmproc.StatusOK)
	}
	return p, nil
}
