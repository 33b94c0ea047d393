package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// enrichFuncName is the function every "js" engine source must define;
// it receives params and must return an object of derived info entries.
const enrichFuncName = "enrich"

// JSEngine evaluates goja scripts that declare an `enrich(params)` function.
type JSEngine struct{}

// NewJSEngine returns a JSEngine. Unlike ExprEngine, it runs each source in
// a fresh goja.Runtime per call, since a component's parameters (and so the
// bindings a script closes over) can legitimately vary call to call.
func NewJSEngine() *JSEngine { return &JSEngine{} }

func (e *JSEngine) Name() string { return "js" }

func (e *JSEngine) Eval(source string, params map[string]any) (map[string]string, error) {
	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("load js script: %w", err)
	}

	fn, ok := goja.AssertFunction(vm.Get(enrichFuncName))
	if !ok {
		return nil, fmt.Errorf("js script does not define %s(params)", enrichFuncName)
	}

	res, err := fn(goja.Undefined(), vm.ToValue(params))
	if err != nil {
		return nil, fmt.Errorf("run js script: %w", err)
	}

	exported, ok := res.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return an object, got %T", enrichFuncName, res.Export())
	}
	return stringifyMap(exported), nil
}
