// Package stimulus provides the time-series collaborators of the engine:
// per-tick input sources feeding external graded-potential slots, and sinks
// receiving raw per-tick output arrays.
package stimulus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"neuroplex/internal/model"
)

const (
	KindConstant = "constant"
	KindArray    = "array"
)

// Source supplies the stimulus values destined for one module's external
// input slots on each tick. Ticks are 1-based.
type Source interface {
	Name() string
	Read(ctx context.Context, tick int) ([]float64, error)
}

// Sink receives one module's raw output arrays per tick.
type Sink interface {
	Name() string
	Write(ctx context.Context, tick int, values []float64) error
}

type ConstantSource struct {
	name   string
	values []float64
}

func NewConstantSource(name string, values []float64) *ConstantSource {
	return &ConstantSource{name: name, values: append([]float64(nil), values...)}
}

func (s *ConstantSource) Name() string { return s.name }

func (s *ConstantSource) Read(_ context.Context, _ int) ([]float64, error) {
	return append([]float64(nil), s.values...), nil
}

// ArraySource replays a pre-loaded stimulus array one frame per tick. Past
// the final frame it emits either zeros or, when hold is set, the last frame.
type ArraySource struct {
	name   string
	frames [][]float64
	hold   bool
}

func NewArraySource(name string, frames [][]float64, hold bool) (*ArraySource, error) {
	if len(frames) == 0 {
		return nil, errors.New("array source requires at least one frame")
	}
	copied := make([][]float64, len(frames))
	for i, frame := range frames {
		copied[i] = append([]float64(nil), frame...)
	}
	return &ArraySource{name: name, frames: copied, hold: hold}, nil
}

func (s *ArraySource) Name() string { return s.name }

func (s *ArraySource) Read(_ context.Context, tick int) ([]float64, error) {
	if tick < 1 {
		return nil, fmt.Errorf("tick must be >= 1, got %d", tick)
	}
	idx := tick - 1
	if idx >= len(s.frames) {
		if s.hold {
			idx = len(s.frames) - 1
		} else {
			return make([]float64, len(s.frames[0])), nil
		}
	}
	return append([]float64(nil), s.frames[idx]...), nil
}

// FromSpec builds a source from its persisted description. The source name
// defaults to "stim:<module>" when unset.
func FromSpec(spec model.StimulusSpec) (Source, error) {
	if spec.Module == "" {
		return nil, errors.New("stimulus module is required")
	}
	name := spec.Name
	if name == "" {
		name = "stim:" + spec.Module
	}

	switch spec.Kind {
	case KindConstant:
		if len(spec.Constant) == 0 {
			return nil, fmt.Errorf("constant stimulus for %s has no values", spec.Module)
		}
		return NewConstantSource(name, spec.Constant), nil
	case KindArray:
		return NewArraySource(name, spec.Frames, spec.Hold)
	default:
		return nil, fmt.Errorf("unknown stimulus kind: %s", spec.Kind)
	}
}

// MemorySink retains every frame written to it. Used by tests and by live
// consumers that tap a module's output stream.
type MemorySink struct {
	name string

	mu     sync.Mutex
	frames [][]float64
}

func NewMemorySink(name string) *MemorySink {
	return &MemorySink{name: name}
}

func (s *MemorySink) Name() string { return s.name }

func (s *MemorySink) Write(_ context.Context, _ int, values []float64) error {
	s.mu.Lock()
	s.frames = append(s.frames, append([]float64(nil), values...))
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Frames() [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]float64, len(s.frames))
	for i, frame := range s.frames {
		out[i] = append([]float64(nil), frame...)
	}
	return out
}
