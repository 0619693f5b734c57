// Package stepexec implements the Step Executor of spec.md §4.3: it
// invokes the external interpreter's step and converts any failure into
// a terminal crashed process, never propagating failure to its caller.
package stepexec

import (
	"fmt"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"github.com/ironleaf-farm/farmcore/internal/farmware"
)

// Execute invokes interp.Step(p) and absorbs every possible failure mode:
//
//   - A *farmware.PartialProgressError carries a process whose partial
//     progress must be preserved verbatim (spec.md §4.3).
//   - Any other error, or a recovered Go panic, is converted into a clone
//     of p with status = crashed and a crash reason.
//
// This is the boundary the spec calls out by name: "a misbehaving
// sequence must not crash the scheduler or other processes." Grounded on
// the teacher's realtime/runtime.go tickLoop, which wraps each tick's
// work in a recover-guarded closure for the identical reason.
func Execute(interp farmware.Interpreter, p *farmproc.Process) (result *farmproc.Process) {
	defer func() {
		if r := recover(); r != nil {
			crashed := p.Clone()
			crashed.SetStatus(farmproc.StatusCrashed)
			crashed.SetCrashReason(fmt.Sprintf("panic during step: %v", r))
			result = crashed
		}
	}()

	next, err := interp.Step(p)
	if err == nil {
		return next
	}

	if partial, ok := err.(*farmware.PartialProgressError); ok {
		return partial.FarmProc
	}

	crashed := p.Clone()
	crashed.SetStatus(farmproc.StatusCrashed)
	crashed.SetCrashReason(err.Error())
	return crashed
}
