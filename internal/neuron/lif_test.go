package neuron

import (
	"context"
	"math"
	"testing"

	"neuroplex/internal/module"
)

func driveInputs(tick int, src string, values ...float64) module.Inputs {
	in := module.NewInputs(tick)
	in.Gpot[src] = values
	return in
}

func TestLIFSpikesAndResets(t *testing.T) {
	l, err := NewLIF("lif", 1, nil)
	if err != nil {
		t.Fatalf("new lif: %v", err)
	}

	// strong drive crosses threshold on the first step
	out, err := l.Step(context.Background(), driveInputs(1, "src", 0.5))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !out.Spike.Contains(0) {
		t.Fatalf("expected a spike, got %v", out.Spike.Sorted())
	}
	if math.Abs(out.Gpot[0]-(-0.070)) > 1e-12 {
		t.Fatalf("voltage should sit at reset after spiking: %v", out.Gpot[0])
	}

	// without drive the voltage relaxes toward rest and stays subthreshold
	out, err = l.Step(context.Background(), module.NewInputs(2))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if out.Spike.Contains(0) {
		t.Fatal("unexpected spike without drive")
	}
	if out.Gpot[0] <= -0.070 || out.Gpot[0] >= -0.050 {
		t.Fatalf("voltage outside (reset, threshold): %v", out.Gpot[0])
	}
}

func TestLIFStaysQuietAtRest(t *testing.T) {
	l, err := NewLIF("lif", 2, nil)
	if err != nil {
		t.Fatalf("new lif: %v", err)
	}

	for tick := 1; tick <= 50; tick++ {
		out, err := l.Step(context.Background(), module.NewInputs(tick))
		if err != nil {
			t.Fatalf("step %d: %v", tick, err)
		}
		if len(out.Spike) != 0 {
			t.Fatalf("tick %d spiked at rest: %v", tick, out.Spike.Sorted())
		}
		for i, v := range out.Gpot {
			if math.Abs(v-(-0.065)) > 1e-9 {
				t.Fatalf("tick %d neuron %d drifted from rest: %v", tick, i, v)
			}
		}
	}
}

func TestLIFSpikeDriveCounts(t *testing.T) {
	l, err := NewLIF("lif", 1, map[string]float64{"spike_gain": 0.5})
	if err != nil {
		t.Fatalf("new lif: %v", err)
	}

	in := module.NewInputs(1)
	in.Spike["a"] = module.NewSpikeSet(0)
	in.Spike["b"] = module.NewSpikeSet(0)

	out, err := l.Step(context.Background(), in)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	// two coincident presynaptic spikes at gain 0.5 carry current 1.0
	if !out.Spike.Contains(0) {
		t.Fatalf("expected spike from summed spike drive, got %v", out.Spike.Sorted())
	}
}

func TestNewLIFValidation(t *testing.T) {
	if _, err := NewLIF("lif", 0, nil); err == nil {
		t.Fatal("zero population accepted")
	}
	if _, err := NewLIF("lif", 1, map[string]float64{"dt": 0}); err == nil {
		t.Fatal("zero dt accepted")
	}
	if _, err := NewLIF("lif", 1, map[string]float64{"tau": -1}); err == nil {
		t.Fatal("negative tau accepted")
	}
}
