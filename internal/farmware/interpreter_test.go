package farmware

import (
	"testing"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

func TestDefaultStepAdvancesAndCompletes(t *testing.T) {
	interp := NewDefault()
	program := []farmproc.Instruction{{Kind: "home"}, {Kind: "write_pin"}}
	p := farmproc.New(program, farmproc.NewHeap(-1), NoopProcessIO)

	p, err := interp.Step(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GetStatus() != farmproc.StatusOK {
		t.Fatalf("got status %v, want ok", p.GetStatus())
	}
	if p.PC != 1 {
		t.Fatalf("got pc %d, want 1", p.PC)
	}

	p, err = interp.Step(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GetStatus() != farmproc.StatusDone {
		t.Fatalf("got status %v, want done", p.GetStatus())
	}
}

func TestDefaultStepWaitingKind(t *testing.T) {
	interp := NewDefault()
	interp.Waits["wait"] = struct{}{}
	program := []farmproc.Instruction{{Kind: "wait"}}
	p := farmproc.New(program, farmproc.NewHeap(-1), NoopProcessIO)

	p, err := interp.Step(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GetStatus() != farmproc.StatusWaiting {
		t.Fatalf("got status %v, want waiting", p.GetStatus())
	}
	if p.PC != 0 {
		t.Fatalf("waiting instruction must not advance pc, got %d", p.PC)
	}
}

func TestDefaultStepIOFailureIsRecoverable(t *testing.T) {
	interp := NewDefault()
	boom := func(farmproc.Instruction) (any, error) { return nil, errBoom }
	program := []farmproc.Instruction{{Kind: "move_absolute"}}
	p := farmproc.New(program, farmproc.NewHeap(-1), boom)

	_, err := interp.Step(p)
	if err == nil {
		t.Fatal("expected a recoverable interpreter error")
	}
	var partial *PartialProgressError
	if !asPartial(err, &partial) {
		t.Fatalf("expected *PartialProgressError, got %T: %v", err, err)
	}
	if partial.FarmProc != p {
		t.Fatal("expected the partial-progress error to carry the same process")
	}
}

func TestDefaultStepOnTerminalProcessIsNoop(t *testing.T) {
	interp := NewDefault()
	p := farmproc.New([]farmproc.Instruction{{Kind: "home"}}, farmproc.NewHeap(-1), NoopProcessIO)
	p.SetStatus(farmproc.StatusCrashed)

	got, err := interp.Step(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.GetStatus() != farmproc.StatusCrashed {
		t.Fatalf("terminal process should be left alone, got %v", got.GetStatus())
	}
}

type errBoomType struct{}

func (errBoomType) Error() string { return "boom" }

var errBoom = errBoomType{}

func asPartial(err error, target **PartialProgressError) bool {
	p, ok := err.(*PartialProgressError)
	if ok {
		*target = p
	}
	return ok
}
