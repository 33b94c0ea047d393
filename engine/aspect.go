package engine

import (
	"context"
	"strings"

	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/types"
)

// ComponentAspect is a cross-cutting hook the driver runs around each
// component it processes, in the style of the teacher's chain-level
// Aspect interface: PointCut decides whether the aspect applies to a given
// component, Before/After run immediately outside the component's own
// processing.
type ComponentAspect interface {
	PointCut(component string) bool
	Before(ctx context.Context, g graph.Wrapper, component string) error
	After(ctx context.Context, g graph.Wrapper, component string) error
}

// ValidatorAspect rejects a component whose declared port names collide
// with the "#import" suffix reserved for the virtual import port
// (graph.VirtualImportPort): such a component could never have its
// imported rule addressed unambiguously by a FlowRule action.
type ValidatorAspect struct{}

func (ValidatorAspect) PointCut(string) bool { return true }

func (ValidatorAspect) Before(_ context.Context, g graph.Wrapper, component string) error {
	for _, port := range append(g.InputPorts(component), g.OutputPorts(component)...) {
		if strings.HasSuffix(port, "#import") {
			return &types.IllegalCaseError{Msg: "component " + component + " declares a reserved port name " + port}
		}
	}
	return nil
}

func (ValidatorAspect) After(context.Context, graph.Wrapper, string) error { return nil }

// DebugAspect logs every component entry/exit through the driver's
// configured Logger.
type DebugAspect struct {
	Logger interface{ Printf(string, ...any) }
}

func (DebugAspect) PointCut(string) bool { return true }

func (d DebugAspect) Before(_ context.Context, _ graph.Wrapper, component string) error {
	if d.Logger != nil {
		d.Logger.Printf("enter component %s", component)
	}
	return nil
}

func (d DebugAspect) After(_ context.Context, _ graph.Wrapper, component string) error {
	if d.Logger != nil {
		d.Logger.Printf("exit component %s", component)
	}
	return nil
}
