package circuit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"neuroplex/internal/model"
	"neuroplex/internal/module"
)

type fakeModule struct {
	id    string
	gpot  int
	spike int
}

func (m *fakeModule) ID() string      { return m.id }
func (m *fakeModule) GpotSlots() int  { return m.gpot }
func (m *fakeModule) SpikeSlots() int { return m.spike }

func (m *fakeModule) Step(_ context.Context, in module.Inputs) (module.Output, error) {
	return module.ZeroOutput(in.Tick, m.gpot), nil
}

func fakeFactory(spec model.ModuleSpec) (module.Module, error) {
	return &fakeModule{id: spec.ID, gpot: spec.GpotSlots, spike: spec.SpikeSlots}, nil
}

func testCircuit() model.Circuit {
	return model.Circuit{
		Name: "two-stage",
		Modules: []model.ModuleSpec{
			{ID: "al", Model: "fake", GpotSlots: 2, SpikeSlots: 2, Public: true, Spiking: true},
			{ID: "mb", Model: "fake", GpotSlots: 1, SpikeSlots: 0, Public: true},
		},
		Edges: []model.EdgeSpec{
			{Src: "al", Dst: "mb", Class: model.EdgeClassSpikeGpot, SrcSlot: 1, DstSlot: 0, Weight: 0.8},
			{Src: "al", Dst: "mb", Class: model.EdgeClassGpotGpot, SrcSlot: 0, DstSlot: 0, Weight: 1.0},
		},
	}
}

func TestBuildAssemblesFrozenMap(t *testing.T) {
	modules, cmap, err := Build(testCircuit(), fakeFactory)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("unexpected module count: %d", len(modules))
	}
	if !cmap.Frozen() {
		t.Fatal("built map should be frozen")
	}

	routes := cmap.RoutesFor("al")
	if len(routes) != 2 {
		t.Fatalf("unexpected route count: %d", len(routes))
	}
	if routes[0].SrcKind != KindSpike || routes[0].DstKind != KindGpot {
		t.Fatalf("edge class mapping wrong: %+v", routes[0])
	}
}

func TestBuildRejectsOutOfRangeEdge(t *testing.T) {
	c := testCircuit()
	c.Edges[0].SrcSlot = 7

	_, _, err := Build(c, fakeFactory)
	var slotErr *InvalidSlotError
	if !errors.As(err, &slotErr) {
		t.Fatalf("expected InvalidSlotError, got %v", err)
	}
}

func TestValidateSpecRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *model.Circuit)
	}{
		{"missing name", func(c *model.Circuit) { c.Name = "" }},
		{"no modules", func(c *model.Circuit) { c.Modules = nil }},
		{"duplicate id", func(c *model.Circuit) { c.Modules[1].ID = "al" }},
		{"missing model", func(c *model.Circuit) { c.Modules[0].Model = "" }},
		{"spiking flag mismatch", func(c *model.Circuit) { c.Modules[0].Spiking = false }},
		{"unknown edge source", func(c *model.Circuit) { c.Edges[0].Src = "nope" }},
		{"unknown edge class", func(c *model.Circuit) { c.Edges[0].Class = "gpot->gpot" }},
		{"non-public endpoint", func(c *model.Circuit) { c.Modules[1].Public = false }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testCircuit()
			tc.mutate(&c)
			if err := ValidateSpec(c); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circuit.json")
	data := `{
		"name": "pair",
		"modules": [
			{"id": "a", "model": "fake", "gpot_slots": 1, "public": true},
			{"id": "b", "model": "fake", "gpot_slots": 1, "public": true}
		],
		"edges": [
			{"src": "a", "dst": "b", "class": "gpot_gpot", "src_slot": 0, "dst_slot": 0, "weight": 1.0}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write circuit: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Name != "pair" || len(c.Modules) != 2 || len(c.Edges) != 1 {
		t.Fatalf("unexpected circuit: %+v", c)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
