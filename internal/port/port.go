// Package port provides the addressed data/control channel pair linking the
// engine to one module runner. Channel identity is an opaque uuid handle
// created during setup; nothing is allocated globally.
package port

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"neuroplex/internal/module"
)

// StepResult is one module's published outcome for a tick: either an output
// payload or the error that aborted its step.
type StepResult struct {
	ModuleID string
	Output   module.Output
	Err      error
}

type Channel struct {
	handle string
	in     chan module.Inputs
	out    chan StepResult
	quit   chan struct{}
	once   sync.Once
}

func New() *Channel {
	return &Channel{
		handle: uuid.NewString(),
		in:     make(chan module.Inputs, 1),
		out:    make(chan StepResult, 1),
		quit:   make(chan struct{}),
	}
}

func (c *Channel) Handle() string {
	return c.handle
}

// Deliver hands the assembled inputs for one tick to the module side.
func (c *Channel) Deliver(ctx context.Context, in module.Inputs) error {
	select {
	case c.in <- in:
		return nil
	case <-c.quit:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next blocks on the module side until the next tick's inputs arrive.
// The second return is false once the channel is closed or ctx ends.
func (c *Channel) Next(ctx context.Context) (module.Inputs, bool) {
	select {
	case in := <-c.in:
		return in, true
	case <-c.quit:
		return module.Inputs{}, false
	case <-ctx.Done():
		return module.Inputs{}, false
	}
}

// Publish posts the module's step result. Returns false if the channel was
// closed before the result could be handed off.
func (c *Channel) Publish(ctx context.Context, res StepResult) bool {
	select {
	case c.out <- res:
		return true
	case <-c.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

// Collect blocks on the engine side until the module publishes its result
// for the current tick, or ctx (carrying the tick deadline) ends.
func (c *Channel) Collect(ctx context.Context) (StepResult, error) {
	select {
	case res := <-c.out:
		return res, nil
	case <-ctx.Done():
		return StepResult{}, ctx.Err()
	}
}

// Close releases the channel. Safe to call more than once; pending Deliver,
// Next and Publish calls unblock.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.quit) })
}
