package ast

import "testing"

func TestDecodeRequiresKind(t *testing.T) {
	_, err := Decode(map[string]any{"args": map[string]any{}})
	if err == nil {
		t.Fatal("expected error for missing kind")
	}
}

func TestDecodeBasic(t *testing.T) {
	n, err := Decode(map[string]any{
		"kind": "move_absolute",
		"args": map[string]any{"x": 1.0, "y": 2.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind != "move_absolute" {
		t.Fatalf("got kind %q", n.Kind)
	}
	if n.Args["x"] != 1.0 {
		t.Fatalf("got args %v", n.Args)
	}
}

func TestDecodeNestedBody(t *testing.T) {
	n, err := Decode(map[string]any{
		"kind": "sequence",
		"body": []any{
			map[string]any{"kind": "home"},
			map[string]any{"kind": "write_pin", "args": map[string]any{"pin": 13.0}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Body) != 2 || n.Body[0].Kind != "home" || n.Body[1].Kind != "write_pin" {
		t.Fatalf("got body %+v", n.Body)
	}
}

func TestDecodeYAMLUntypedMapKeys(t *testing.T) {
	doc := []byte("kind: rpc_request\nargs:\n  label: ping\nbody:\n  - kind: emergency_lock\n")
	n, err := DecodeYAML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, err := n.Label()
	if err != nil || label != "ping" {
		t.Fatalf("got label %q err %v", label, err)
	}
	kind, ok := n.IsHyperWrapper()
	if !ok || kind != "emergency_lock" {
		t.Fatalf("expected hyper wrapper emergency_lock, got %q %v", kind, ok)
	}
}

func TestLabelMissing(t *testing.T) {
	n, _ := Decode(map[string]any{"kind": "rpc_request"})
	if _, err := n.Label(); err == nil {
		t.Fatal("expected error for missing label")
	}
}

func TestIsHyperWrapperRejectsOrdinaryRPC(t *testing.T) {
	n, _ := Decode(map[string]any{
		"kind": "rpc_request",
		"args": map[string]any{"label": "x"},
		"body": []any{map[string]any{"kind": "move_absolute"}},
	})
	if _, ok := n.IsHyperWrapper(); ok {
		t.Fatal("ordinary RPC body should not be treated as a hyper wrapper")
	}
}

func TestFlattenDepthFirst(t *testing.T) {
	n, _ := Decode(map[string]any{
		"kind": "sequence",
		"body": []any{
			map[string]any{"kind": "home"},
			map[string]any{
				"kind": "_if",
				"body": []any{map[string]any{"kind": "write_pin"}},
			},
		},
	})
	instrs := Flatten(n)
	kinds := make([]string, len(instrs))
	for i, instr := range instrs {
		kinds[i] = string(instr.Kind)
	}
	want := []string{"sequence", "home", "_if", "write_pin"}
	if len(kinds) != len(want) {
		t.Fatalf("got %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v want %v", kinds, want)
		}
	}
}

func TestSliceBindsPageID(t *testing.T) {
	n, _ := Decode(map[string]any{"kind": "read_status"})
	instrs, heap := Slice(n, -1)
	if len(instrs) != 1 {
		t.Fatalf("got %d instructions, want 1", len(instrs))
	}
	if heap.PageID != -1 {
		t.Fatalf("got page id %d, want -1", heap.PageID)
	}
}
