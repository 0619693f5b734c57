package farmcore

import (
	"sync"
	"testing"
	"time"

	"github.com/ironleaf-farm/farmcore/internal/ast"
	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

func rpcLeaf(label string, bodyKind farmproc.Kind) ast.Node {
	return ast.Node{
		Kind: "rpc_request",
		Args: map[string]any{"label": label},
		Body: []ast.Node{{Kind: bodyKind}},
	}
}

func TestRPCRequestMissingLabelIsArgumentError(t *testing.T) {
	r := New(WithTickPeriod(time.Millisecond))
	r.Start()
	defer r.Close()

	prog := ast.Node{Kind: "rpc_request"}
	err := r.RPCRequest(prog, func(RPCResult) { t.Fatal("on_complete must not run on argument error") })
	if err == nil {
		t.Fatal("expected an argument error for missing label")
	}
}

func TestRPCRequestEmergencyLockNeverQueuesAJob(t *testing.T) {
	r := New(WithTickPeriod(time.Millisecond))
	r.Start()
	defer r.Close()

	var got RPCResult
	var mu sync.Mutex
	err := r.RPCRequest(rpcLeaf("lockdown", "emergency_lock"), func(res RPCResult) {
		mu.Lock()
		got = res
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The hyper path consumed no job id, so the first job queued gets id 0.
	if id, err := r.queueRetrying(ast.Node{Kind: "read_status"}, RPCPageID); err != nil || id != 0 {
		t.Fatalf("got job id %d, %v after emergency-lock rpc, want 0", id, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !got.OK || got.Label != "lockdown" {
		t.Fatalf("got %+v, want ok rpc result for lockdown", got)
	}
}

func TestRPCRequestOrdinaryProgramCompletesSynchronously(t *testing.T) {
	r := New(WithTickPeriod(time.Millisecond))
	r.Start()
	defer r.Close()

	done := make(chan RPCResult, 1)
	err := r.RPCRequest(ast.Node{Kind: "rpc_request", Args: map[string]any{"label": "ping"}, Body: []ast.Node{{Kind: "read_status"}}}, func(res RPCResult) {
		done <- res
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case res := <-done:
		if !res.OK || res.Label != "ping" {
			t.Fatalf("got %+v, want ok result", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("on_complete never invoked")
	}
}

func TestSequenceRunsInBackgroundAndReportsOK(t *testing.T) {
	r := New(WithTickPeriod(time.Millisecond))
	r.Start()
	defer r.Close()

	done := make(chan SequenceResult, 1)
	err := r.Sequence(ast.Node{Kind: "read_status"}, 3, func(res SequenceResult) { done <- res })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case res := <-done:
		if !res.OK {
			t.Fatalf("got %+v, want ok result", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("on_complete never invoked")
	}
}

func TestAwaitUnknownJobIsArgumentError(t *testing.T) {
	r := New()
	if _, err := r.Await(12345); err == nil {
		t.Fatal("expected an argument error for an unknown job id")
	}
}

func TestCloseWaitsForInFlightSequenceWaiters(t *testing.T) {
	r := New(WithTickPeriod(time.Millisecond))
	r.Start()

	done := make(chan SequenceResult, 1)
	if err := r.Sequence(ast.Node{Kind: "read_status"}, 1, func(res SequenceResult) { done <- res }); err != nil {
		t.Fatal(err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close returned error: %v", err)
	}

	select {
	case <-done:
	default:
		t.Fatal("expected on_complete to have run before Close returned")
	}
}
