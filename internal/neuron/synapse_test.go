package neuron

import (
	"context"
	"math"
	"testing"

	"neuroplex/internal/module"
)

func TestAlphaSynapseRisesOnSpikeThenDecays(t *testing.T) {
	s, err := NewAlphaSynapse("syn", 1, nil)
	if err != nil {
		t.Fatalf("new alpha synapse: %v", err)
	}

	// silent synapse emits nothing
	out, err := s.Step(context.Background(), module.NewInputs(1))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if out.Gpot[0] != 0 {
		t.Fatalf("silent synapse should emit zero, got %v", out.Gpot[0])
	}

	in := module.NewInputs(2)
	in.Spike["pre"] = module.NewSpikeSet(0)
	out, err = s.Step(context.Background(), in)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	peak := out.Gpot[0]
	if peak <= 0 {
		t.Fatalf("conductance should rise after a spike, got %v", peak)
	}

	var last float64
	for tick := 3; tick <= 300; tick++ {
		out, err = s.Step(context.Background(), module.NewInputs(tick))
		if err != nil {
			t.Fatalf("step %d: %v", tick, err)
		}
		last = out.Gpot[0]
	}
	if last < 0 || last > 1e-6 {
		t.Fatalf("conductance should decay back toward zero, got %v", last)
	}
}

func TestConductanceSynapseMidpoint(t *testing.T) {
	s, err := NewConductanceSynapse("syn", 1, nil)
	if err != nil {
		t.Fatalf("new conductance synapse: %v", err)
	}

	// presynaptic voltage at vmid activates exactly half of gmax
	out, err := s.Step(context.Background(), driveInputs(1, "pre", -0.040))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	want := 0.5 * (0 - (-0.040))
	if math.Abs(out.Gpot[0]-want) > 1e-12 {
		t.Fatalf("midpoint output: got=%v want=%v", out.Gpot[0], want)
	}
}

func TestConductanceSynapseIsStateless(t *testing.T) {
	s, err := NewConductanceSynapse("syn", 1, nil)
	if err != nil {
		t.Fatalf("new conductance synapse: %v", err)
	}

	first, err := s.Step(context.Background(), driveInputs(1, "pre", -0.030))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if _, err := s.Step(context.Background(), driveInputs(2, "pre", 0.010)); err != nil {
		t.Fatalf("step: %v", err)
	}
	again, err := s.Step(context.Background(), driveInputs(3, "pre", -0.030))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if first.Gpot[0] != again.Gpot[0] {
		t.Fatalf("same input should give same output: %v != %v", first.Gpot[0], again.Gpot[0])
	}
}

func TestNewSynapseValidation(t *testing.T) {
	if _, err := NewAlphaSynapse("syn", 0, nil); err == nil {
		t.Fatal("zero slot alpha synapse accepted")
	}
	if _, err := NewAlphaSynapse("syn", 1, map[string]float64{"tau": 0}); err == nil {
		t.Fatal("zero tau accepted")
	}
	if _, err := NewConductanceSynapse("syn", 0, nil); err == nil {
		t.Fatal("zero slot conductance synapse accepted")
	}
	if _, err := NewConductanceSynapse("syn", 1, map[string]float64{"slope": 0}); err == nil {
		t.Fatal("zero slope accepted")
	}
}
