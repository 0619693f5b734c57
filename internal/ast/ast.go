// Package ast implements the AST decoder and AST-to-heap slicer from
// spec.md §6: `decode(map) -> AST{kind, args, body[]}` and
// `slice(AST) -> Heap`. Both are treated by the core as external
// collaborators; this package is the default, swappable implementation
// that makes the scheduler runnable without a real robot attached.
package ast

import (
	"fmt"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"gopkg.in/yaml.v3"
)

// Node is the decoded AST contract of spec.md §6: a kind tag, a key->value
// argument mapping, and a nested instruction body.
type Node struct {
	Kind farmproc.Kind
	Args map[string]any
	Body []Node
}

// Decode builds an AST from a generic map, the shape produced by
// unmarshalling either JSON or YAML farm programs. "kind" is required;
// "args" and "body" are optional.
func Decode(raw map[string]any) (Node, error) {
	kindVal, ok := raw["kind"]
	if !ok {
		return Node{}, fmt.Errorf("ast: decode: missing required %q field", "kind")
	}
	kindStr, ok := kindVal.(string)
	if !ok || kindStr == "" {
		return Node{}, fmt.Errorf("ast: decode: %q field must be a non-empty string", "kind")
	}

	node := Node{Kind: farmproc.Kind(kindStr)}

	if argsVal, ok := raw["args"]; ok {
		args, ok := toStringMap(argsVal)
		if !ok {
			return Node{}, fmt.Errorf("ast: decode: %q field must be a map", "args")
		}
		node.Args = args
	}

	if bodyVal, ok := raw["body"]; ok {
		items, ok := bodyVal.([]any)
		if !ok {
			return Node{}, fmt.Errorf("ast: decode: %q field must be a list", "body")
		}
		node.Body = make([]Node, 0, len(items))
		for i, item := range items {
			childRaw, ok := toStringMap(item)
			if !ok {
				return Node{}, fmt.Errorf("ast: decode: body[%d] must be a map", i)
			}
			child, err := Decode(childRaw)
			if err != nil {
				return Node{}, fmt.Errorf("ast: decode: body[%d]: %w", i, err)
			}
			node.Body = append(node.Body, child)
		}
	}

	return node, nil
}

// DecodeYAML parses a YAML-encoded farm program document and decodes it,
// letting farm programs and config files share the same underlying
// map[string]any shape (mirrors the teacher's production.YAMLPersister
// reuse of yaml.v3 for config-shaped data).
func DecodeYAML(data []byte) (Node, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Node{}, fmt.Errorf("ast: decode yaml: %w", err)
	}
	return Decode(raw)
}

// Label extracts the required top-level "label" argument an RPC program
// carries, per spec.md §4.6's rpc_request contract.
func (n Node) Label() (string, error) {
	v, ok := n.Args["label"]
	if !ok {
		return "", fmt.Errorf("ast: rpc_request missing required %q argument", "label")
	}
	label, ok := v.(string)
	if !ok || label == "" {
		return "", fmt.Errorf("ast: rpc_request %q argument must be a non-empty string", "label")
	}
	return label, nil
}

// IsHyperWrapper reports whether n is an RPC wrapping a single
// emergency_lock or emergency_unlock instruction, per spec.md §6:
// `AST{kind: rpc_request, body: [AST{kind: emergency_lock|emergency_unlock}]}`.
func (n Node) IsHyperWrapper() (farmproc.Kind, bool) {
	if n.Kind != "rpc_request" || len(n.Body) != 1 {
		return "", false
	}
	child := n.Body[0].Kind
	if child == "emergency_lock" || child == "emergency_unlock" {
		return child, true
	}
	return "", false
}

// Flatten walks the AST in document order, producing the flat
// instruction sequence a farm process steps through one program-counter
// position at a time. Nested body nodes for control-flow instructions
// (e.g. "_if", "sequence") are inlined depth-first; this is a
// simplification of the real interpreter's control flow, sufficient for
// the scheduler to have something concrete to step.
func Flatten(n Node) []farmproc.Instruction {
	var out []farmproc.Instruction
	flattenInto(n, &out)
	return out
}

func flattenInto(n Node, out *[]farmproc.Instruction) {
	*out = append(*out, farmproc.Instruction{Kind: n.Kind, Args: n.Args})
	for _, child := range n.Body {
		flattenInto(child, out)
	}
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		// yaml.v3 decodes untyped maps with any keys; farm programs only
		// ever use string keys, so convert and reject otherwise.
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
