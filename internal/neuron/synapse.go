package neuron

import (
	"context"
	"errors"
	"math"

	"neuroplex/internal/module"
)

// AlphaSynapse converts incoming spikes into graded conductance traces using
// the two-state alpha-function integrator. Slot i tracks spikes delivered
// onto slot i and publishes its conductance on gpot slot i.
type AlphaSynapse struct {
	id string
	n  int

	dt   float64
	tau  float64
	gmax float64

	g []float64
	h []float64
}

func NewAlphaSynapse(id string, n int, params map[string]float64) (*AlphaSynapse, error) {
	if n <= 0 {
		return nil, errors.New("alpha synapse slot count must be > 0")
	}

	s := &AlphaSynapse{
		id:   id,
		n:    n,
		dt:   param(params, "dt", 1e-3),
		tau:  param(params, "tau", 5e-3),
		gmax: param(params, "gmax", 1.0),
		g:    make([]float64, n),
		h:    make([]float64, n),
	}
	if s.dt <= 0 || s.tau <= 0 {
		return nil, errors.New("alpha synapse dt and tau must be > 0")
	}
	return s, nil
}

func (s *AlphaSynapse) ID() string      { return s.id }
func (s *AlphaSynapse) GpotSlots() int  { return s.n }
func (s *AlphaSynapse) SpikeSlots() int { return 0 }

func (s *AlphaSynapse) Step(ctx context.Context, in module.Inputs) (module.Output, error) {
	if err := ctx.Err(); err != nil {
		return module.Output{}, err
	}

	decay := s.dt / s.tau
	out := module.ZeroOutput(in.Tick, s.n)
	for i := 0; i < s.n; i++ {
		s.h[i] += spikeDrive(in, i)
		s.g[i] += s.dt * s.h[i] * math.E / s.tau
		s.g[i] -= decay * s.g[i]
		s.h[i] -= decay * s.h[i]
		out.Gpot[i] = s.gmax * s.g[i]
	}
	return out, nil
}

// ConductanceSynapse is a graded-potential synapse: presynaptic voltage on
// slot i drives a sigmoidal conductance published on gpot slot i.
type ConductanceSynapse struct {
	id string
	n  int

	gmax  float64
	vmid  float64
	slope float64
	vrev  float64
}

func NewConductanceSynapse(id string, n int, params map[string]float64) (*ConductanceSynapse, error) {
	if n <= 0 {
		return nil, errors.New("conductance synapse slot count must be > 0")
	}

	s := &ConductanceSynapse{
		id:    id,
		n:     n,
		gmax:  param(params, "gmax", 1.0),
		vmid:  param(params, "vmid", -0.040),
		slope: param(params, "slope", 0.010),
		vrev:  param(params, "vrev", 0),
	}
	if s.slope == 0 {
		return nil, errors.New("conductance synapse slope must be non-zero")
	}
	return s, nil
}

func (s *ConductanceSynapse) ID() string      { return s.id }
func (s *ConductanceSynapse) GpotSlots() int  { return s.n }
func (s *ConductanceSynapse) SpikeSlots() int { return 0 }

func (s *ConductanceSynapse) Step(ctx context.Context, in module.Inputs) (module.Output, error) {
	if err := ctx.Err(); err != nil {
		return module.Output{}, err
	}

	out := module.ZeroOutput(in.Tick, s.n)
	for i := 0; i < s.n; i++ {
		pre := gpotDrive(in, i)
		activation := 1 / (1 + math.Exp(-(pre-s.vmid)/s.slope))
		out.Gpot[i] = s.gmax * activation * (s.vrev - pre)
	}
	return out, nil
}
