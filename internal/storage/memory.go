package storage

import (
	"context"
	"sort"
	"sync"

	"neuroplex/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	circuits  map[string]model.Circuit
	ticks     map[string][]model.TickRecord
	summaries map[string]model.RunSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.circuits = make(map[string]model.Circuit)
	s.ticks = make(map[string][]model.TickRecord)
	s.summaries = make(map[string]model.RunSummary)
	return nil
}

func (s *MemoryStore) SaveCircuit(_ context.Context, circuit model.Circuit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.circuits[circuit.Name] = circuit
	return nil
}

func (s *MemoryStore) GetCircuit(_ context.Context, name string) (model.Circuit, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	circuit, ok := s.circuits[name]
	return circuit, ok, nil
}

func (s *MemoryStore) SaveTickRecord(_ context.Context, rec model.TickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks[rec.RunID] = append(s.ticks[rec.RunID], rec)
	return nil
}

func (s *MemoryStore) GetTickRecords(_ context.Context, runID string) ([]model.TickRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.ticks[runID]
	if !ok {
		return nil, false, nil
	}
	out := append([]model.TickRecord(nil), records...)
	sort.Slice(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out, true, nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.RunID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, runID string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[runID]
	return summary, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.summaries)+len(s.ticks))
	for runID := range s.summaries {
		seen[runID] = struct{}{}
	}
	for runID := range s.ticks {
		seen[runID] = struct{}{}
	}
	runs := make([]string, 0, len(seen))
	for runID := range seen {
		runs = append(runs, runID)
	}
	sort.Strings(runs)
	return runs, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}
