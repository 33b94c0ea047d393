// Package script implements the two context-enrichment ScriptEngines that a
// workflow description's enrich_engine field selects: "expr" (github.com/expr-lang/expr) and "js"
// (github.com/dop251/goja). Both derive extra `info` entries from a
// component's declared parameters; neither is permitted to synthesize
// obligations or activation conditions, only to enrich the map those are
// evaluated against.
package script

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngine evaluates expr-lang expressions, one compiled program per
// distinct source string, caching compiled programs across calls.
type ExprEngine struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// NewExprEngine returns an ExprEngine with an empty compile cache.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{programs: map[string]*vm.Program{}}
}

func (e *ExprEngine) Name() string { return "expr" }

// Eval compiles (or reuses the cached compilation of) source against params
// and expects it to return a map; every value is stringified via fmt.Sprint
// so the result slots directly into an activation info map.
func (e *ExprEngine) Eval(source string, params map[string]any) (map[string]string, error) {
	e.mu.Lock()
	program, ok := e.programs[source]
	if !ok {
		compiled, err := expr.Compile(source, expr.Env(params), expr.AllowUndefinedVariables(), expr.AsKind(reflect.Map))
		if err != nil {
			e.mu.Unlock()
			return nil, fmt.Errorf("compile expr script: %w", err)
		}
		program = compiled
		e.programs[source] = program
	}
	e.mu.Unlock()

	out, err := expr.Run(program, params)
	if err != nil {
		return nil, fmt.Errorf("run expr script: %w", err)
	}
	result, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expr script must return a map, got %T", out)
	}
	return stringifyMap(result), nil
}

func stringifyMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
