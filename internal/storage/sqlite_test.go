//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"neuroplex/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := NewSQLiteStore(filepath.Join(t.TempDir(), "neuroplex.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreTickRecordRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := model.TickRecord{
		VersionedRecord: stamped(),
		RunID:           "run-1",
		Tick:            2,
		Complete:        true,
		Outputs: map[string]model.ModuleOutput{
			"al": {Gpot: []float64{0.5}, Spikes: []int{0}},
		},
	}
	if err := s.SaveTickRecord(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, ok, err := s.GetTickRecords(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(records) != 1 || !reflect.DeepEqual(records[0], rec) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", records, rec)
	}

	// upsert replaces the payload for the same (run, tick)
	rec.Complete = false
	if err := s.SaveTickRecord(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	records, _, err = s.GetTickRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if len(records) != 1 || records[0].Complete {
		t.Fatalf("upsert did not replace: %+v", records)
	}
}

func TestSQLiteStoreSummaryAndListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	summary := model.RunSummary{
		VersionedRecord: stamped(),
		RunID:           "a-run",
		Circuit:         "antennal-lobe",
		RequestedSteps:  10,
		CompletedTicks:  10,
	}
	if err := s.SaveRunSummary(ctx, summary); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	if err := s.SaveTickRecord(ctx, model.TickRecord{VersionedRecord: stamped(), RunID: "b-run", Tick: 1}); err != nil {
		t.Fatalf("save tick: %v", err)
	}

	got, ok, err := s.GetRunSummary(ctx, "a-run")
	if err != nil || !ok {
		t.Fatalf("get summary: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, summary) {
		t.Fatalf("summary mismatch: got=%+v want=%+v", got, summary)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := []string{"a-run", "b-run"}; !reflect.DeepEqual(runs, want) {
		t.Fatalf("runs mismatch: got=%v want=%v", runs, want)
	}
}

func TestSQLiteStoreReset(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.SaveCircuit(ctx, model.Circuit{VersionedRecord: stamped(), Name: "c"}); err != nil {
		t.Fatalf("save circuit: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, err := s.GetCircuit(ctx, "c"); err != nil || ok {
		t.Fatalf("circuit survived reset: ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "neuroplex.db"))
	if _, _, err := s.GetCircuit(context.Background(), "c"); err == nil {
		t.Fatal("uninitialized store should error")
	}
}
