package storage

import (
	"context"

	"neuroplex/internal/model"
)

// Store defines persistence for circuits, per-tick output records and run
// summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveCircuit(ctx context.Context, circuit model.Circuit) error
	GetCircuit(ctx context.Context, name string) (model.Circuit, bool, error)
	SaveTickRecord(ctx context.Context, rec model.TickRecord) error
	GetTickRecords(ctx context.Context, runID string) ([]model.TickRecord, bool, error)
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
}

// Resetter is an optional capability for stores that can drop all state.
type Resetter interface {
	Reset(ctx context.Context) error
}
