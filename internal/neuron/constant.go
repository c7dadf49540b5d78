package neuron

import (
	"context"

	"neuroplex/internal/module"
)

// Constant emits the same graded-potential value on every slot each tick.
// Useful as an external drive and as a deterministic test source.
type Constant struct {
	id    string
	slots int
	value float64
}

func NewConstant(id string, slots int, value float64) *Constant {
	return &Constant{id: id, slots: slots, value: value}
}

func (c *Constant) ID() string      { return c.id }
func (c *Constant) GpotSlots() int  { return c.slots }
func (c *Constant) SpikeSlots() int { return 0 }

func (c *Constant) Step(ctx context.Context, in module.Inputs) (module.Output, error) {
	if err := ctx.Err(); err != nil {
		return module.Output{}, err
	}
	out := module.ZeroOutput(in.Tick, c.slots)
	for i := range out.Gpot {
		out.Gpot[i] = c.value
	}
	return out, nil
}
