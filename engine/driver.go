// Package engine implements the propagation driver: it walks a workflow
// graph batch by batch, and within each batch, component by component,
// merging upstream data-rule containers, evaluating obligation activation,
// interpreting the component's flow rule, and writing the resulting
// containers back onto the graph.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/renyuneyun/dr.aid/graph"
	"github.com/renyuneyun/dr.aid/interp"
	"github.com/renyuneyun/dr.aid/merge"
	"github.com/renyuneyun/dr.aid/types"
	"github.com/renyuneyun/dr.aid/utils/maps"
)

// enrichConfig is the Config struct a component's declared Parameters decode
// into ahead of an enrichment run, in the shape of the teacher's per-node
// Configuration-to-Config decoding (components/transform/expr_assign_node.go
// and friends): one recognized key, "script", naming the ScriptEngine source.
type enrichConfig struct {
	Script string `mapstructure:"script"`
}

// Driver runs a propagation pass over a graph.Wrapper.
type Driver struct {
	config  types.Config
	aspects []ComponentAspect
}

// New returns a Driver built from config, with any given aspects attached
// (evaluated in order, Before all running ahead of the component, After
// all running behind it).
func New(config types.Config, aspects ...ComponentAspect) *Driver {
	return &Driver{config: config, aspects: aspects}
}

// Run performs one full propagation pass: it batches g's components
// topologically and, within each batch, processes every component.
// Components within a batch are independent by construction (no
// intra-batch edges), so they are processed concurrently via an
// errgroup; a force-failed component is logged and does not abort its
// batch, while any other error aborts the run.
func (d *Driver) Run(ctx context.Context, g graph.Wrapper) error {
	batches, err := g.ComponentBatches()
	if err != nil {
		propagationRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("batch components: %w", err)
	}
	for i, batch := range batches {
		d.config.Logger.Printf("batch %d/%d: %d component(s)", i+1, len(batches), len(batch))
		grp, gctx := errgroup.WithContext(ctx)
		for _, component := range batch {
			component := component
			grp.Go(func() error {
				err := d.processComponent(gctx, g, component)
				var ffe *types.ForceFailedError
				if errors.As(err, &ffe) && ffe.Recoverable() {
					d.config.Logger.Printf("%v", ffe)
					return nil
				}
				return err
			})
		}
		if err := grp.Wait(); err != nil {
			propagationRunsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("batch %d: %w", i, err)
		}
	}
	propagationRunsTotal.WithLabelValues("ok").Inc()
	return nil
}

// evalEnrichment runs the component's declared script engine against its
// parameters to derive extra activation-info entries, per SPEC_FULL.md's
// extra_info term in the driver's info-composition order. An unknown engine
// name is ill-configured input, not a recoverable per-component failure.
func (d *Driver) evalEnrichment(ci graph.ComponentInfo) (map[string]string, error) {
	engine, ok := d.config.ScriptEngines[ci.EnrichEngine]
	if !ok {
		return nil, fmt.Errorf("unknown script engine %q", ci.EnrichEngine)
	}
	params := make(map[string]any, len(ci.Parameters))
	for k, v := range ci.Parameters {
		params[k] = v
	}
	var cfg enrichConfig
	if err := maps.Map2Struct(params, &cfg); err != nil {
		return nil, fmt.Errorf("decode enrichment configuration: %w", err)
	}
	return engine.Eval(cfg.Script, params)
}

func (d *Driver) processComponent(ctx context.Context, g graph.Wrapper, component string) error {
	start := time.Now()
	ci := g.ComponentInfo(component)
	defer func() {
		componentProcessDuration.WithLabelValues(ci.Function).Observe(time.Since(start).Seconds())
	}()

	for _, a := range d.aspects {
		if a.PointCut(component) {
			if err := a.Before(ctx, g, component); err != nil {
				return err
			}
		}
	}

	info := g.GraphInfo()
	if ci.EnrichEngine != "" {
		extra, err := d.evalEnrichment(ci)
		if err != nil {
			return fmt.Errorf("component %s: enrichment: %w", component, err)
		}
		for k, v := range extra {
			info[k] = v
		}
	}
	for k, v := range ci.Parameters {
		info[k] = v
	}
	info["processId"] = component

	inputs := map[string]*types.DataRuleContainer{}
	for _, port := range g.InputPorts(component) {
		portID := g.PortID(component, port)
		var upstreamContainers []*types.DataRuleContainer
		for _, upPort := range g.UpstreamOutputPorts(portID) {
			if c, ok := g.PortRule(upPort); ok {
				upstreamContainers = append(upstreamContainers, c)
			}
		}
		if len(upstreamContainers) == 0 {
			continue
		}
		inputs[port] = merge.Merge(upstreamContainers[0], upstreamContainers[1:]...)
	}

	var activated []types.ActivatedObligation
	for _, port := range g.InputPorts(component) {
		c, ok := inputs[port]
		if !ok {
			continue
		}
		activated = append(activated, c.OnStage(types.Processing, ci.Function, info)...)
	}

	if imported, ok := g.ImportedRule(component); ok {
		inputs[graph.VirtualImportPort(component)] = imported
		activated = append(activated, imported.OnStage(types.Imported, ci.Function, info)...)
	}

	if len(activated) > 0 {
		g.RecordObligations(component, activated)
		for _, ob := range activated {
			obligationsActivatedTotal.WithLabelValues(ob.Action).Inc()
			if d.config.OnObligation != nil {
				d.config.OnObligation(component, ob)
			}
		}
	}

	flowRule, ok := g.FlowRule(component)
	if !ok {
		inPorts := append(g.InputPorts(component), graph.VirtualImportPort(component))
		flowRule = types.DefaultFlow(inPorts, g.OutputPorts(component))
	}

	outputs := interp.Apply(flowRule, inputs)
	for _, outPort := range g.OutputPorts(component) {
		c, ok := outputs[outPort]
		if !ok {
			continue
		}
		g.SetPortRule(g.PortID(component, outPort), c)
	}

	for _, a := range d.aspects {
		if a.PointCut(component) {
			if err := a.After(ctx, g, component); err != nil {
				return err
			}
		}
	}
	return nil
}
