package farmware

import (
	"fmt"
	"strings"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
	"go.starlark.net/starlark"
)

// resolveArgs evaluates any dynamic expression arguments before an
// instruction reaches the I/O callback. An argument value that is a
// string starting with "=" is treated as a starlark expression evaluated
// against the process's heap registers as predeclared names -- e.g.
// args: {x: "=home_x + 10"} lets move_absolute compute its target from a
// prior calibrate step's recorded home_x register.
//
// This plays the same "small embeddable expression language" role the
// teacher's extensibility.ExpressionGuardEvaluator fills with a
// hand-rolled 3-token parser, swapped for a real sandboxed interpreter.
func resolveArgs(heap *farmproc.Heap, args map[string]any) (map[string]any, error) {
	if len(args) == 0 {
		return args, nil
	}
	resolved := make(map[string]any, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, "=") {
			resolved[k] = v
			continue
		}
		val, err := evalExpr(heap, strings.TrimPrefix(s, "="))
		if err != nil {
			return nil, fmt.Errorf("farmware: resolving arg %q: %w", k, err)
		}
		resolved[k] = val
	}
	return resolved, nil
}

func evalExpr(heap *farmproc.Heap, expr string) (any, error) {
	predeclared := starlark.StringDict{}
	if heap != nil {
		for k, v := range heap.Snapshot() {
			val, err := toStarlarkValue(v)
			if err != nil {
				continue
			}
			predeclared[k] = val
		}
	}

	thread := &starlark.Thread{Name: "farmware-expr"}
	result, err := starlark.Eval(thread, "<arg>", expr, predeclared)
	if err != nil {
		return nil, err
	}
	return fromStarlarkValue(result)
}

func toStarlarkValue(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case int:
		return starlark.MakeInt(x), nil
	case int64:
		return starlark.MakeInt64(x), nil
	case float64:
		return starlark.Float(x), nil
	case string:
		return starlark.String(x), nil
	case bool:
		return starlark.Bool(x), nil
	default:
		return nil, fmt.Errorf("farmware: unsupported heap value type %T", v)
	}
}

func fromStarlarkValue(v starlark.Value) (any, error) {
	switch x := v.(type) {
	case starlark.Int:
		i, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("farmware: starlark int overflow")
		}
		return i, nil
	case starlark.Float:
		return float64(x), nil
	case starlark.String:
		return string(x), nil
	case starlark.Bool:
		return bool(x), nil
	default:
		return nil, fmt.Errorf("farmware: unsupported expression result type %s", v.Type())
	}
}
