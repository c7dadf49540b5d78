package neuron

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"neuroplex/internal/model"
	"neuroplex/internal/module"
)

const (
	ModelConstant           = "constant"
	ModelLIF                = "lif"
	ModelMorrisLecar        = "morris_lecar"
	ModelAlphaSynapse       = "alpha_synapse"
	ModelConductanceSynapse = "conductance_synapse"
)

var (
	ErrModelExists   = errors.New("model already registered")
	ErrModelNotFound = errors.New("model not found")
)

// Factory builds a runnable module from its persisted spec.
type Factory func(spec model.ModuleSpec) (module.Module, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("model name is required")
	}
	if factory == nil {
		return errors.New("model factory is required")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, name)
	}
	registry[name] = factory
	return nil
}

// New instantiates the numerical model named by spec.Model.
func New(spec model.ModuleSpec) (module.Module, error) {
	registryMu.RLock()
	factory, ok := registry[spec.Model]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, spec.Model)
	}
	return factory(spec)
}

func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	for name, factory := range map[string]Factory{
		ModelConstant: func(spec model.ModuleSpec) (module.Module, error) {
			return NewConstant(spec.ID, spec.GpotSlots, param(spec.Params, "value", 0)), nil
		},
		ModelLIF: func(spec model.ModuleSpec) (module.Module, error) {
			return NewLIF(spec.ID, spec.SpikeSlots, spec.Params)
		},
		ModelMorrisLecar: func(spec model.ModuleSpec) (module.Module, error) {
			return NewMorrisLecar(spec.ID, spec.GpotSlots, spec.Params)
		},
		ModelAlphaSynapse: func(spec model.ModuleSpec) (module.Module, error) {
			return NewAlphaSynapse(spec.ID, spec.GpotSlots, spec.Params)
		},
		ModelConductanceSynapse: func(spec model.ModuleSpec) (module.Module, error) {
			return NewConductanceSynapse(spec.ID, spec.GpotSlots, spec.Params)
		},
	} {
		if err := Register(name, factory); err != nil {
			panic(err)
		}
	}
}

func param(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}
