package neuron

import (
	"context"
	"errors"

	"neuroplex/internal/module"
)

// LIF is a population of leaky integrate-and-fire neurons. Each neuron
// exposes its membrane potential on the matching gpot slot and emits its
// index on the spike payload when it crosses threshold.
type LIF struct {
	id string
	n  int

	dt         float64
	tau        float64
	rest       float64
	reset      float64
	threshold  float64
	resistance float64
	bias       float64
	spikeGain  float64

	v []float64
}

func NewLIF(id string, n int, params map[string]float64) (*LIF, error) {
	if n <= 0 {
		return nil, errors.New("lif population size must be > 0")
	}

	l := &LIF{
		id:         id,
		n:          n,
		dt:         param(params, "dt", 1e-3),
		tau:        param(params, "tau", 20e-3),
		rest:       param(params, "rest", -0.065),
		reset:      param(params, "reset", -0.070),
		threshold:  param(params, "threshold", -0.050),
		resistance: param(params, "resistance", 1.0),
		bias:       param(params, "bias", 0),
		spikeGain:  param(params, "spike_gain", 0.01),
		v:          make([]float64, n),
	}
	if l.tau <= 0 || l.dt <= 0 {
		return nil, errors.New("lif tau and dt must be > 0")
	}
	for i := range l.v {
		l.v[i] = l.rest
	}
	return l, nil
}

func (l *LIF) ID() string      { return l.id }
func (l *LIF) GpotSlots() int  { return l.n }
func (l *LIF) SpikeSlots() int { return l.n }

func (l *LIF) Step(ctx context.Context, in module.Inputs) (module.Output, error) {
	if err := ctx.Err(); err != nil {
		return module.Output{}, err
	}

	out := module.ZeroOutput(in.Tick, l.n)
	for i := 0; i < l.n; i++ {
		current := gpotDrive(in, i) + l.spikeGain*spikeDrive(in, i) + l.bias
		l.v[i] += l.dt / l.tau * (l.rest - l.v[i] + l.resistance*current)
		if l.v[i] >= l.threshold {
			l.v[i] = l.reset
			out.Spike.Add(i)
		}
		out.Gpot[i] = l.v[i]
	}
	return out, nil
}
