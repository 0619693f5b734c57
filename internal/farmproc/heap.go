package farmproc

import "sync"

// Heap is the interpreter-facing register file a farm process carries
// across steps. It is produced once by ast.Slice and mutated only by the
// interpreter stand-in (package farmware) during step.
//
// Grounded on the teacher's primitives.Context: a sync.Map-backed store
// rather than a mutex-guarded one, since reads vastly outnumber writes
// during a typical sequence of pin/servo instructions.
type Heap struct {
	PageID int64
	data   sync.Map
}

// NewHeap creates an empty heap bound to the given page (spec.md §6:
// page_id defaults to -1 for RPC submissions).
func NewHeap(pageID int64) *Heap {
	return &Heap{PageID: pageID}
}

// Get retrieves a register value.
func (h *Heap) Get(key string) (any, bool) {
	return h.data.Load(key)
}

// Set stores a register value.
func (h *Heap) Set(key string, val any) {
	h.data.Store(key, val)
}

// Snapshot returns a copy of the register file, e.g. for telemetry dumps.
func (h *Heap) Snapshot() map[string]any {
	snap := map[string]any{}
	h.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}
