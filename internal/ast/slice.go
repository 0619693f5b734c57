package ast

import "github.com/ironleaf-farm/farmcore/internal/farmproc"

// Slice produces the interpreter's executable representation of a
// decoded program: a flat instruction sequence plus a fresh heap bound to
// pageID, per spec.md §6's `slice(AST) -> Heap` contract (the heap is
// what the core actually threads through queue/new; the instruction
// sequence travels alongside it on the Process).
func Slice(n Node, pageID int64) ([]farmproc.Instruction, *farmproc.Heap) {
	return Flatten(n), farmproc.NewHeap(pageID)
}
