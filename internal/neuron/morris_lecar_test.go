package neuron

import (
	"context"
	"math"
	"testing"

	"neuroplex/internal/module"
)

func TestMorrisLecarStaysBoundedWithoutInput(t *testing.T) {
	m, err := NewMorrisLecar("ml", 1, nil)
	if err != nil {
		t.Fatalf("new morris-lecar: %v", err)
	}

	for tick := 1; tick <= 500; tick++ {
		out, err := m.Step(context.Background(), module.NewInputs(tick))
		if err != nil {
			t.Fatalf("step %d: %v", tick, err)
		}
		v := out.Gpot[0]
		if math.IsNaN(v) || v < -90 || v > 130 {
			t.Fatalf("tick %d voltage left physical range: %v", tick, v)
		}
	}
}

func TestMorrisLecarDepolarizesUnderBias(t *testing.T) {
	quiet, err := NewMorrisLecar("quiet", 1, nil)
	if err != nil {
		t.Fatalf("new morris-lecar: %v", err)
	}
	driven, err := NewMorrisLecar("driven", 1, map[string]float64{"bias": 80})
	if err != nil {
		t.Fatalf("new morris-lecar: %v", err)
	}

	var vQuiet, vDriven float64
	for tick := 1; tick <= 200; tick++ {
		outQ, err := quiet.Step(context.Background(), module.NewInputs(tick))
		if err != nil {
			t.Fatalf("quiet step %d: %v", tick, err)
		}
		outD, err := driven.Step(context.Background(), module.NewInputs(tick))
		if err != nil {
			t.Fatalf("driven step %d: %v", tick, err)
		}
		vQuiet, vDriven = outQ.Gpot[0], outD.Gpot[0]
	}

	if vDriven <= vQuiet {
		t.Fatalf("bias current should depolarize: driven=%v quiet=%v", vDriven, vQuiet)
	}
}

func TestMorrisLecarIsDeterministic(t *testing.T) {
	trace := func() []float64 {
		m, err := NewMorrisLecar("ml", 1, map[string]float64{"bias": 40})
		if err != nil {
			t.Fatalf("new morris-lecar: %v", err)
		}
		var out []float64
		for tick := 1; tick <= 100; tick++ {
			o, err := m.Step(context.Background(), driveInputs(tick, "src", 5.0))
			if err != nil {
				t.Fatalf("step %d: %v", tick, err)
			}
			out = append(out, o.Gpot[0])
		}
		return out
	}

	first, second := trace(), trace()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("trace diverged at step %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestNewMorrisLecarValidation(t *testing.T) {
	if _, err := NewMorrisLecar("ml", 0, nil); err == nil {
		t.Fatal("zero population accepted")
	}
	if _, err := NewMorrisLecar("ml", 1, map[string]float64{"dt": -1}); err == nil {
		t.Fatal("negative dt accepted")
	}
}
