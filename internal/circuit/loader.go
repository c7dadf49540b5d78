package circuit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"neuroplex/internal/model"
	"neuroplex/internal/module"
)

// ModuleFactory instantiates a runnable module from its persisted spec.
// Keeps this package independent of the concrete numerical models.
type ModuleFactory func(spec model.ModuleSpec) (module.Module, error)

// Load reads a persisted circuit description from a JSON file and validates it.
func Load(path string) (model.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Circuit{}, err
	}
	var c model.Circuit
	if err := json.Unmarshal(data, &c); err != nil {
		return model.Circuit{}, fmt.Errorf("parse circuit %s: %w", path, err)
	}
	if err := ValidateSpec(c); err != nil {
		return model.Circuit{}, err
	}
	return c, nil
}

// ValidateSpec checks the structural consistency of a circuit description
// without instantiating modules.
func ValidateSpec(c model.Circuit) error {
	if c.Name == "" {
		return errors.New("circuit name is required")
	}
	if len(c.Modules) == 0 {
		return fmt.Errorf("circuit %s declares no modules", c.Name)
	}

	seen := make(map[string]model.ModuleSpec, len(c.Modules))
	for i, spec := range c.Modules {
		if spec.ID == "" {
			return fmt.Errorf("module id is required at index %d", i)
		}
		if _, dup := seen[spec.ID]; dup {
			return fmt.Errorf("duplicate module id: %s", spec.ID)
		}
		if spec.Model == "" {
			return fmt.Errorf("module %s: model name is required", spec.ID)
		}
		if spec.GpotSlots < 0 || spec.SpikeSlots < 0 {
			return fmt.Errorf("module %s: negative slot count", spec.ID)
		}
		if spec.Spiking != (spec.SpikeSlots > 0) {
			return fmt.Errorf("module %s: spiking flag inconsistent with %d spike slots", spec.ID, spec.SpikeSlots)
		}
		seen[spec.ID] = spec
	}

	for i, edge := range c.Edges {
		if _, ok := seen[edge.Src]; !ok {
			return fmt.Errorf("edge %d references unknown source module: %s", i, edge.Src)
		}
		if _, ok := seen[edge.Dst]; !ok {
			return fmt.Errorf("edge %d references unknown destination module: %s", i, edge.Dst)
		}
		if _, _, err := edgeKinds(edge.Class); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
		if !seen[edge.Src].Public || !seen[edge.Dst].Public {
			return fmt.Errorf("edge %d connects a non-public module: %s -> %s", i, edge.Src, edge.Dst)
		}
	}
	return nil
}

func edgeKinds(class string) (Kind, Kind, error) {
	switch class {
	case model.EdgeClassGpotGpot:
		return KindGpot, KindGpot, nil
	case model.EdgeClassGpotSpike:
		return KindGpot, KindSpike, nil
	case model.EdgeClassSpikeGpot:
		return KindSpike, KindGpot, nil
	case model.EdgeClassSpikeSpike:
		return KindSpike, KindSpike, nil
	default:
		return "", "", fmt.Errorf("unknown edge class: %s", class)
	}
}

// Build instantiates the circuit's modules through factory and assembles the
// frozen connectivity map. Slot-range violations surface as InvalidSlotError
// before any tick can execute.
func Build(c model.Circuit, factory ModuleFactory) ([]module.Module, *Map, error) {
	if factory == nil {
		return nil, nil, errors.New("module factory is required")
	}
	if err := ValidateSpec(c); err != nil {
		return nil, nil, err
	}

	cmap := NewMap()
	modules := make([]module.Module, 0, len(c.Modules))
	for _, spec := range c.Modules {
		mod, err := factory(spec)
		if err != nil {
			return nil, nil, fmt.Errorf("build module %s: %w", spec.ID, err)
		}
		if mod.GpotSlots() != spec.GpotSlots || mod.SpikeSlots() != spec.SpikeSlots {
			return nil, nil, fmt.Errorf("module %s: factory slot counts (%d gpot, %d spike) disagree with spec (%d gpot, %d spike)",
				spec.ID, mod.GpotSlots(), mod.SpikeSlots(), spec.GpotSlots, spec.SpikeSlots)
		}
		if err := cmap.Declare(spec.ID, spec.GpotSlots, spec.SpikeSlots); err != nil {
			return nil, nil, err
		}
		modules = append(modules, mod)
	}

	for _, edge := range c.Edges {
		srcKind, dstKind, err := edgeKinds(edge.Class)
		if err != nil {
			return nil, nil, err
		}
		if err := cmap.Connect(edge.Src, srcKind, edge.SrcSlot, edge.Dst, dstKind, edge.DstSlot, edge.Weight); err != nil {
			return nil, nil, err
		}
	}

	cmap.Freeze()
	return modules, cmap, nil
}
