package neuron

import (
	"context"
	"errors"
	"math"

	"neuroplex/internal/module"
)

// MorrisLecar is a population of Morris-Lecar neurons exchanged as graded
// potentials: the membrane voltage of neuron i is published on gpot slot i.
type MorrisLecar struct {
	id string
	n  int

	dt   float64
	cap  float64
	phi  float64
	gL   float64
	gCa  float64
	gK   float64
	vL   float64
	vCa  float64
	vK   float64
	v1   float64
	v2   float64
	v3   float64
	v4   float64
	bias float64

	v []float64
	w []float64
}

func NewMorrisLecar(id string, n int, params map[string]float64) (*MorrisLecar, error) {
	if n <= 0 {
		return nil, errors.New("morris-lecar population size must be > 0")
	}

	m := &MorrisLecar{
		id:   id,
		n:    n,
		dt:   param(params, "dt", 1e-4),
		cap:  param(params, "capacitance", 20.0),
		phi:  param(params, "phi", 0.04),
		gL:   param(params, "g_l", 2.0),
		gCa:  param(params, "g_ca", 4.0),
		gK:   param(params, "g_k", 8.0),
		vL:   param(params, "v_l", -60.0),
		vCa:  param(params, "v_ca", 120.0),
		vK:   param(params, "v_k", -84.0),
		v1:   param(params, "v_1", -1.2),
		v2:   param(params, "v_2", 18.0),
		v3:   param(params, "v_3", 2.0),
		v4:   param(params, "v_4", 30.0),
		bias: param(params, "bias", 0),
		v:    make([]float64, n),
		w:    make([]float64, n),
	}
	if m.dt <= 0 || m.cap <= 0 {
		return nil, errors.New("morris-lecar dt and capacitance must be > 0")
	}
	for i := range m.v {
		m.v[i] = m.vL
	}
	return m, nil
}

func (m *MorrisLecar) ID() string      { return m.id }
func (m *MorrisLecar) GpotSlots() int  { return m.n }
func (m *MorrisLecar) SpikeSlots() int { return 0 }

func (m *MorrisLecar) Step(ctx context.Context, in module.Inputs) (module.Output, error) {
	if err := ctx.Err(); err != nil {
		return module.Output{}, err
	}

	out := module.ZeroOutput(in.Tick, m.n)
	for i := 0; i < m.n; i++ {
		v, w := m.v[i], m.w[i]
		current := gpotDrive(in, i) + spikeDrive(in, i) + m.bias

		mInf := 0.5 * (1 + math.Tanh((v-m.v1)/m.v2))
		wInf := 0.5 * (1 + math.Tanh((v-m.v3)/m.v4))
		tauW := 1 / math.Cosh((v-m.v3)/(2*m.v4))

		dv := (current - m.gL*(v-m.vL) - m.gCa*mInf*(v-m.vCa) - m.gK*w*(v-m.vK)) / m.cap
		dw := m.phi * (wInf - w) * tauW

		m.v[i] = v + m.dt*dv
		m.w[i] = w + m.dt*dw
		out.Gpot[i] = m.v[i]
	}
	return out, nil
}
