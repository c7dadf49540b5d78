// Package engine drives the fixed-timestep simulation: it owns the modules,
// their port channels and the broker, and advances the global tick counter
// through the Configured -> Running -> Stopped lifecycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroplex/internal/broker"
	"neuroplex/internal/circuit"
	"neuroplex/internal/logging"
	"neuroplex/internal/model"
	"neuroplex/internal/module"
	"neuroplex/internal/port"
	"neuroplex/internal/stimulus"
	"neuroplex/internal/storage"
)

const defaultTickDeadline = 5 * time.Second

type State string

const (
	StateConfigured State = "configured"
	StateRunning    State = "running"
	StateStopped    State = "stopped"
)

// ConfigurationError reports an invalid topology or module registration,
// detected at the Configured -> Running transition. Fatal to the manager.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// Recorder receives the record of every executed tick. storage.Store
// satisfies it.
type Recorder interface {
	SaveTickRecord(ctx context.Context, rec model.TickRecord) error
}

type Config struct {
	RunID           string
	Logger          *slog.Logger
	TickDeadline    time.Duration
	ContinueOnFault bool
	Connectivity    *circuit.Map
	Recorder        Recorder
	Stimuli         map[string]stimulus.Source
}

type RunResult struct {
	RunID          string
	ExecutedTicks  int
	CompletedTicks int
	Faults         []*module.Fault
	TimedOut       bool
	Stopped        bool
}

type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	modules map[string]module.Module
	order   []string

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config) *Manager {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.TickDeadline <= 0 {
		cfg.TickDeadline = defaultTickDeadline
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		state:   StateConfigured,
		modules: make(map[string]module.Module),
		stopCh:  make(chan struct{}),
	}
}

func (m *Manager) RunID() string {
	return m.cfg.RunID
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Register adds a module while the manager is still in Configured state.
// Topology is frozen once Running begins.
func (m *Manager) Register(mod module.Module) error {
	if mod == nil {
		return errors.New("module is nil")
	}
	if mod.ID() == "" {
		return errors.New("module id is required")
	}
	if mod.GpotSlots() < 0 || mod.SpikeSlots() < 0 {
		return fmt.Errorf("module %s declares negative slot counts", mod.ID())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConfigured {
		return fmt.Errorf("cannot register module in state %s", m.state)
	}
	if _, exists := m.modules[mod.ID()]; exists {
		return fmt.Errorf("module already registered: %s", mod.ID())
	}
	m.modules[mod.ID()] = mod
	m.order = append(m.order, mod.ID())
	sort.Strings(m.order)
	return nil
}

// Stop requests termination. Safe to call at any time: in-flight steps are
// allowed to finish, no new tick begins, and already-recorded tick outputs
// are kept.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateConfigured {
		m.state = StateStopped
	}
	m.mu.Unlock()
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Start validates the configuration, transitions to Running and drives
// exactly steps ticks unless stopped, timed out or halted by a fault.
func (m *Manager) Start(ctx context.Context, steps int) (RunResult, error) {
	result := RunResult{RunID: m.cfg.RunID}

	cmap, err := m.beginRun(steps)
	if err != nil {
		return result, err
	}

	decls := make(map[string]circuit.Decl, len(m.order))
	for _, id := range m.order {
		mod := m.modules[id]
		decls[id] = circuit.Decl{ID: id, GpotSlots: mod.GpotSlots(), SpikeSlots: mod.SpikeSlots()}
	}
	rt := broker.New(cmap, decls)

	runnerCtx, cancelRunners := context.WithCancel(context.Background())
	channels := make(map[string]*port.Channel, len(m.order))
	var wg sync.WaitGroup
	for _, id := range m.order {
		ch := port.New()
		channels[id] = ch
		wg.Add(1)
		go func(mod module.Module, ch *port.Channel) {
			defer wg.Done()
			m.runModule(runnerCtx, mod, ch)
		}(m.modules[id], ch)
	}

	teardown := func() {
		for _, ch := range channels {
			ch.Close()
		}
		cancelRunners()
		wg.Wait()
		m.mu.Lock()
		m.state = StateStopped
		m.mu.Unlock()
	}
	defer teardown()

	m.logger.Info("run starting", "run_id", m.cfg.RunID, "modules", len(m.order), "steps", steps)

	prev := make(map[string]module.Output)
	for t := 1; t <= steps; t++ {
		select {
		case <-m.stopCh:
			m.logger.Info("run stopped", "run_id", m.cfg.RunID, "tick", t-1)
			result.Stopped = true
			return result, nil
		case <-ctx.Done():
			result.Stopped = true
			return result, ctx.Err()
		default:
		}

		inputs := rt.Assemble(t, prev)
		if err := m.injectStimuli(ctx, t, decls, inputs); err != nil {
			return result, err
		}

		for _, id := range m.order {
			if err := channels[id].Deliver(ctx, inputs[id]); err != nil {
				return result, fmt.Errorf("deliver inputs to %s: %w", id, err)
			}
		}

		outputs, faults, err := rt.Gather(ctx, t, channels, m.cfg.TickDeadline)
		if err != nil {
			var timeout *broker.TickTimeoutError
			if errors.As(err, &timeout) {
				m.logger.Error("tick deadline exceeded", "run_id", m.cfg.RunID, "tick", t, "missing", timeout.Missing)
				result.TimedOut = true
			}
			return result, err
		}

		result.ExecutedTicks = t
		complete := len(faults) == 0
		if complete {
			result.CompletedTicks++
		}
		for _, fault := range faults {
			m.logger.Warn("module fault", "run_id", m.cfg.RunID, "tick", t, "module", fault.ModuleID, "err", fault.Err)
			result.Faults = append(result.Faults, fault)
		}

		if err := m.recordTick(ctx, t, complete, outputs, faults); err != nil {
			return result, fmt.Errorf("record tick %d: %w", t, err)
		}

		if !complete && !m.cfg.ContinueOnFault {
			return result, faults[0]
		}

		prev = outputs
		m.logger.Debug("tick complete", "run_id", m.cfg.RunID, "tick", t, "complete", complete)
	}

	m.logger.Info("run finished", "run_id", m.cfg.RunID, "ticks", result.ExecutedTicks)
	return result, nil
}

func (m *Manager) beginRun(steps int) (*circuit.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateConfigured {
		return nil, fmt.Errorf("cannot start in state %s", m.state)
	}
	if steps <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("steps must be > 0, got %d", steps)}
	}
	if len(m.modules) == 0 {
		return nil, &ConfigurationError{Reason: "no modules registered"}
	}

	cmap := m.cfg.Connectivity
	if cmap == nil {
		cmap = circuit.NewMap()
	}
	for _, id := range cmap.DeclaredIDs() {
		mod, ok := m.modules[id]
		if !ok {
			return nil, &ConfigurationError{Reason: "connectivity references unregistered module: " + id}
		}
		decl, _ := cmap.Decl(id)
		if decl.GpotSlots != mod.GpotSlots() || decl.SpikeSlots != mod.SpikeSlots() {
			return nil, &ConfigurationError{Reason: "connectivity slot counts disagree with module: " + id}
		}
	}
	for id := range m.cfg.Stimuli {
		if _, ok := m.modules[id]; !ok {
			return nil, &ConfigurationError{Reason: "stimulus targets unregistered module: " + id}
		}
	}

	cmap.Freeze()
	m.state = StateRunning
	return cmap, nil
}

func (m *Manager) runModule(ctx context.Context, mod module.Module, ch *port.Channel) {
	for {
		in, ok := ch.Next(ctx)
		if !ok {
			return
		}
		res := port.StepResult{ModuleID: mod.ID()}
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.Err = fmt.Errorf("step panic: %v", r)
				}
			}()
			out, err := mod.Step(ctx, in)
			if err != nil {
				res.Err = err
				return
			}
			res.Output = out
		}()
		if !ch.Publish(ctx, res) {
			return
		}
	}
}

// injectStimuli adds each configured source's values for this tick under the
// source's own name, fitted to the target module's gpot slot count.
func (m *Manager) injectStimuli(ctx context.Context, tick int, decls map[string]circuit.Decl, inputs map[string]module.Inputs) error {
	if len(m.cfg.Stimuli) == 0 {
		return nil
	}

	targets := make([]string, 0, len(m.cfg.Stimuli))
	for id := range m.cfg.Stimuli {
		targets = append(targets, id)
	}
	sort.Strings(targets)

	for _, id := range targets {
		src := m.cfg.Stimuli[id]
		values, err := src.Read(ctx, tick)
		if err != nil {
			return fmt.Errorf("read stimulus %s: %w", src.Name(), err)
		}
		buf := make([]float64, decls[id].GpotSlots)
		copy(buf, values)
		inputs[id].Gpot[src.Name()] = buf
	}
	return nil
}

func (m *Manager) recordTick(ctx context.Context, tick int, complete bool, outputs map[string]module.Output, faults []*module.Fault) error {
	if m.cfg.Recorder == nil {
		return nil
	}

	rec := model.TickRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:    m.cfg.RunID,
		Tick:     tick,
		Complete: complete,
		Outputs:  make(map[string]model.ModuleOutput, len(outputs)),
	}
	for id, out := range outputs {
		rec.Outputs[id] = model.ModuleOutput{
			Gpot:   append([]float64(nil), out.Gpot...),
			Spikes: out.Spike.Sorted(),
		}
	}
	for _, fault := range faults {
		rec.Faults = append(rec.Faults, fault.ModuleID)
	}
	return m.cfg.Recorder.SaveTickRecord(ctx, rec)
}
