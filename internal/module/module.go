package module

import (
	"context"
	"fmt"
	"sort"
)

// SpikeSet is the sparse spike payload: the set of source slot indices that
// fired during one tick.
type SpikeSet map[int]struct{}

func NewSpikeSet(indices ...int) SpikeSet {
	s := make(SpikeSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

func (s SpikeSet) Add(index int) {
	s[index] = struct{}{}
}

func (s SpikeSet) Contains(index int) bool {
	_, ok := s[index]
	return ok
}

func (s SpikeSet) Union(other SpikeSet) {
	for i := range other {
		s[i] = struct{}{}
	}
}

func (s SpikeSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Inputs is the full input set handed to a module for one tick, keyed by the
// producing source id. Buffers are always present and shaped for connected
// sources: zero-filled gpot vectors and empty spike sets, never nil maps.
type Inputs struct {
	Tick  int
	Gpot  map[string][]float64
	Spike map[string]SpikeSet
}

func NewInputs(tick int) Inputs {
	return Inputs{
		Tick:  tick,
		Gpot:  make(map[string][]float64),
		Spike: make(map[string]SpikeSet),
	}
}

// Output is one module's published payloads for a single tick. Produced once
// per tick and never mutated after publication.
type Output struct {
	Tick  int
	Gpot  []float64
	Spike SpikeSet
}

// ZeroOutput is the shape-correct empty output used for modules that have
// not produced anything for a tick (first tick, or a faulted step).
func ZeroOutput(tick, gpotSlots int) Output {
	return Output{
		Tick:  tick,
		Gpot:  make([]float64, gpotSlots),
		Spike: make(SpikeSet),
	}
}

// Module is one independently stepped simulation unit. Step must be
// deterministic given identical inputs and internal state; it may mutate the
// module's own state but nothing shared.
type Module interface {
	ID() string
	GpotSlots() int
	SpikeSlots() int
	Step(ctx context.Context, in Inputs) (Output, error)
}

// Fault wraps an error raised inside one module's Step. The fault is isolated
// to that module's tick output and never corrupts other modules.
type Fault struct {
	ModuleID string
	Tick     int
	Err      error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("module %s faulted on tick %d: %v", f.ModuleID, f.Tick, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
