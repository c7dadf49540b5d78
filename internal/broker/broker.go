// Package broker implements the per-tick routing pass: it gathers the full
// cohort of module outputs behind a barrier, expands them through the
// connectivity map and assembles each destination's input buffers for the
// next tick.
package broker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"neuroplex/internal/circuit"
	"neuroplex/internal/module"
	"neuroplex/internal/port"
)

// TickTimeoutError reports producers that failed to publish within the tick
// deadline. The run is halted rather than proceeding with stale data.
type TickTimeoutError struct {
	Tick    int
	Missing []string
}

func (e *TickTimeoutError) Error() string {
	return fmt.Sprintf("tick %d timed out waiting for modules: %s", e.Tick, strings.Join(e.Missing, ", "))
}

type Broker struct {
	cmap  *circuit.Map
	order []string
	decls map[string]circuit.Decl
}

// New builds a broker over a frozen connectivity map and the slot
// declarations of every registered module (declared or not in the map).
func New(cmap *circuit.Map, decls map[string]circuit.Decl) *Broker {
	order := make([]string, 0, len(decls))
	for id := range decls {
		order = append(order, id)
	}
	sort.Strings(order)
	return &Broker{cmap: cmap, order: order, decls: decls}
}

// Gather waits for every module scheduled for the tick to publish, up to
// deadline. A module that published an error contributes a zero-shaped
// output and an isolated fault; a module that published nothing at all by
// the deadline aborts the tick with TickTimeoutError.
func (b *Broker) Gather(ctx context.Context, tick int, channels map[string]*port.Channel, deadline time.Duration) (map[string]module.Output, []*module.Fault, error) {
	waitCtx := ctx
	if deadline > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	outputs := make(map[string]module.Output, len(b.order))
	var faults []*module.Fault
	for i, id := range b.order {
		ch, ok := channels[id]
		if !ok {
			return nil, nil, fmt.Errorf("no channel registered for module %s", id)
		}
		res, err := ch.Collect(waitCtx)
		if err != nil {
			missing := append([]string(nil), b.order[i:]...)
			return nil, nil, &TickTimeoutError{Tick: tick, Missing: missing}
		}
		if res.Err != nil {
			faults = append(faults, &module.Fault{ModuleID: id, Tick: tick, Err: res.Err})
			outputs[id] = module.ZeroOutput(tick, b.decls[id].GpotSlots)
			continue
		}
		outputs[id] = res.Output
	}
	return outputs, faults, nil
}

// Assemble expands tick-t outputs through the connectivity map into the
// input buffers each destination consumes on tick t+1. Buffers exist for
// every connected source, zero-filled when the source produced nothing.
// Fan-in onto one gpot slot sums weighted contributions; fan-in onto one
// spike slot unions.
func (b *Broker) Assemble(tick int, outputs map[string]module.Output) map[string]module.Inputs {
	inputs := make(map[string]module.Inputs, len(b.order))
	for _, id := range b.order {
		inputs[id] = module.NewInputs(tick)
	}

	for _, dst := range b.order {
		in := inputs[dst]
		dstDecl := b.decls[dst]
		for _, edge := range b.cmap.RoutesInto(dst) {
			srcOut, produced := outputs[edge.Src]
			switch edge.DstKind {
			case circuit.KindGpot:
				buf, ok := in.Gpot[edge.Src]
				if !ok {
					buf = make([]float64, dstDecl.GpotSlots)
					in.Gpot[edge.Src] = buf
				}
				if produced {
					buf[edge.DstIndex] += edge.Weight * sourceValue(edge, srcOut)
				}
			case circuit.KindSpike:
				set, ok := in.Spike[edge.Src]
				if !ok {
					set = make(module.SpikeSet)
					in.Spike[edge.Src] = set
				}
				if produced && sourceFired(edge, srcOut) {
					set.Add(edge.DstIndex)
				}
			}
		}
	}
	return inputs
}

func sourceValue(edge circuit.Edge, out module.Output) float64 {
	switch edge.SrcKind {
	case circuit.KindGpot:
		if edge.SrcIndex < len(out.Gpot) {
			return out.Gpot[edge.SrcIndex]
		}
		return 0
	case circuit.KindSpike:
		if out.Spike.Contains(edge.SrcIndex) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// sourceFired maps a source slot onto a spike destination. A gpot source
// delivers a spike when its weighted value is positive.
func sourceFired(edge circuit.Edge, out module.Output) bool {
	switch edge.SrcKind {
	case circuit.KindSpike:
		return out.Spike.Contains(edge.SrcIndex)
	case circuit.KindGpot:
		if edge.SrcIndex >= len(out.Gpot) {
			return false
		}
		return edge.Weight*out.Gpot[edge.SrcIndex] > 0
	default:
		return false
	}
}
