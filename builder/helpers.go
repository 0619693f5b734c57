// Package builder provides a fluent constructor for farm AST programs,
// the same functional-options shape the teacher's builder package used
// for statechart construction (New/Composite/On/WithGuard), retargeted
// here at ast.Node trees instead of states and transitions.
package builder

import (
	"github.com/ironleaf-farm/farmcore/internal/ast"
	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

// Option configures a Node at construction time.
type Option func(*ast.Node)

// New creates a leaf or parent instruction node of the given kind.
func New(kind farmproc.Kind, opts ...Option) ast.Node {
	n := ast.Node{Kind: kind}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// WithArg sets a single instruction argument. Prefix value with "=" to
// have it resolved as a starlark expression against the process heap at
// step time (internal/farmware/expr.go).
func WithArg(key string, value any) Option {
	return func(n *ast.Node) {
		if n.Args == nil {
			n.Args = map[string]any{}
		}
		n.Args[key] = value
	}
}

// WithArgs merges a whole argument map at once.
func WithArgs(args map[string]any) Option {
	return func(n *ast.Node) {
		if n.Args == nil {
			n.Args = make(map[string]any, len(args))
		}
		for k, v := range args {
			n.Args[k] = v
		}
	}
}

// WithBody appends child instructions, executed depth-first by
// ast.Flatten.
func WithBody(children ...ast.Node) Option {
	return func(n *ast.Node) {
		n.Body = append(n.Body, children...)
	}
}

// Sequence wraps children under a "sequence" instruction, the NEEDS_FW
// and ALLOWED_WHEN_LOCKED kind used for grouping a program's steps.
func Sequence(children ...ast.Node) ast.Node {
	return New("sequence", WithBody(children...))
}

// RPC wraps program under an rpc_request carrying the required label
// argument (spec.md §4.6).
func RPC(label string, program ast.Node) ast.Node {
	return New("rpc_request", WithArg("label", label), WithBody(program))
}

// EmergencyLock builds the hyper-wrapper RPC that trips emergency-lock
// (spec.md §6's `AST{kind: rpc_request, body: [AST{kind: emergency_lock}]}`).
func EmergencyLock(label string) ast.Node {
	return RPC(label, New("emergency_lock"))
}

// EmergencyUnlock is the symmetric hyper-wrapper RPC for clearing
// emergency-lock.
func EmergencyUnlock(label string) ast.Node {
	return RPC(label, New("emergency_unlock"))
}
