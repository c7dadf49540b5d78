// Package neuroplex is the embeddable client facade over the simulation
// engine: it loads circuits, drives runs and exposes the recorded artifacts.
package neuroplex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"neuroplex/internal/circuit"
	"neuroplex/internal/engine"
	"neuroplex/internal/logging"
	"neuroplex/internal/model"
	"neuroplex/internal/neuron"
	"neuroplex/internal/stats"
	"neuroplex/internal/stimulus"
	"neuroplex/internal/storage"
)

const defaultDBPath = "neuroplex.db"

type Options struct {
	StoreKind    string
	DBPath       string
	LogLevel     string
	LogWriter    io.Writer
	TickDeadline time.Duration
}

type Client struct {
	store        storage.Store
	logger       *slog.Logger
	tickDeadline time.Duration
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	kind := opts.StoreKind
	if kind == "" {
		kind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(kind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}

	return &Client{
		store:        store,
		logger:       logging.NewLogger(opts.LogLevel, w),
		tickDeadline: opts.TickDeadline,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Store() storage.Store {
	return c.store
}

// RunRequest describes one simulation run over a circuit.
type RunRequest struct {
	RunID           string
	Circuit         model.Circuit
	Steps           int
	TickDeadline    time.Duration
	ContinueOnFault bool
	Stimuli         []model.StimulusSpec
}

// Validate instantiates the circuit without running it, surfacing topology
// and slot-range errors.
func (c *Client) Validate(spec model.Circuit) error {
	_, _, err := circuit.Build(spec, neuron.New)
	return err
}

// Run executes the request and persists the circuit, every tick record and
// the final run summary. The summary is returned even when the run halted
// early on a fault or timeout; the halting error is returned alongside it.
func (c *Client) Run(ctx context.Context, req RunRequest) (model.RunSummary, error) {
	if req.Steps <= 0 {
		return model.RunSummary{}, fmt.Errorf("steps must be > 0, got %d", req.Steps)
	}

	modules, cmap, err := circuit.Build(req.Circuit, neuron.New)
	if err != nil {
		return model.RunSummary{}, err
	}

	byID := make(map[string]model.ModuleSpec, len(req.Circuit.Modules))
	for _, spec := range req.Circuit.Modules {
		byID[spec.ID] = spec
	}
	sources := make(map[string]stimulus.Source, len(req.Stimuli))
	for _, spec := range req.Stimuli {
		target, ok := byID[spec.Module]
		if !ok {
			return model.RunSummary{}, fmt.Errorf("stimulus targets unknown module: %s", spec.Module)
		}
		if !target.Extern {
			return model.RunSummary{}, fmt.Errorf("stimulus targets module %s, which is not flagged extern", spec.Module)
		}
		if _, dup := sources[spec.Module]; dup {
			return model.RunSummary{}, fmt.Errorf("duplicate stimulus for module %s", spec.Module)
		}
		src, err := stimulus.FromSpec(spec)
		if err != nil {
			return model.RunSummary{}, err
		}
		sources[spec.Module] = src
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	deadline := req.TickDeadline
	if deadline <= 0 {
		deadline = c.tickDeadline
	}

	mgr := engine.New(engine.Config{
		RunID:           runID,
		Logger:          c.logger,
		TickDeadline:    deadline,
		ContinueOnFault: req.ContinueOnFault,
		Connectivity:    cmap,
		Recorder:        c.store,
		Stimuli:         sources,
	})
	for _, mod := range modules {
		if err := mgr.Register(mod); err != nil {
			return model.RunSummary{}, err
		}
	}

	result, runErr := mgr.Start(ctx, req.Steps)

	records, _, err := c.store.GetTickRecords(ctx, runID)
	if err != nil {
		return model.RunSummary{}, fmt.Errorf("load tick records: %w", err)
	}
	summary := stats.Summarize(runID, req.Circuit.Name, req.Steps, result.TimedOut, records)

	stamped := req.Circuit
	stamped.SchemaVersion = storage.CurrentSchemaVersion
	stamped.CodecVersion = storage.CurrentCodecVersion
	if err := c.store.SaveCircuit(ctx, stamped); err != nil {
		return model.RunSummary{}, fmt.Errorf("save circuit: %w", err)
	}
	if err := c.store.SaveRunSummary(ctx, summary); err != nil {
		return model.RunSummary{}, fmt.Errorf("save run summary: %w", err)
	}

	return summary, runErr
}

var ErrRunNotFound = errors.New("run not found")

func (c *Client) TickRecords(ctx context.Context, runID string) ([]model.TickRecord, error) {
	records, ok, err := c.store.GetTickRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return records, nil
}

func (c *Client) Summary(ctx context.Context, runID string) (model.RunSummary, error) {
	summary, ok, err := c.store.GetRunSummary(ctx, runID)
	if err != nil {
		return model.RunSummary{}, err
	}
	if !ok {
		return model.RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return summary, nil
}

func (c *Client) Runs(ctx context.Context) ([]string, error) {
	return c.store.ListRuns(ctx)
}

// ExportGpotCSV writes one module's recorded graded-potential trace as CSV.
func (c *Client) ExportGpotCSV(ctx context.Context, runID, moduleID string, w io.Writer) error {
	records, err := c.TickRecords(ctx, runID)
	if err != nil {
		return err
	}
	return stats.WriteGpotCSV(w, moduleID, records)
}
