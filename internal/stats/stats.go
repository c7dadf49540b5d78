// Package stats derives run summaries and export artifacts from recorded
// tick outputs.
package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"neuroplex/internal/model"
	"neuroplex/internal/storage"
)

// Summarize aggregates a run's recorded ticks into per-module statistics.
// Only complete ticks contribute to the aggregates; incomplete ticks are
// counted through FaultCount.
func Summarize(runID, circuitName string, requestedSteps int, timedOut bool, records []model.TickRecord) model.RunSummary {
	summary := model.RunSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:          runID,
		Circuit:        circuitName,
		RequestedSteps: requestedSteps,
		TimedOut:       timedOut,
		Modules:        make(map[string]model.ModuleRunStats),
	}

	type acc struct {
		spikes int
		min    float64
		max    float64
		sum    float64
		count  int
	}
	accs := make(map[string]*acc)

	for _, rec := range records {
		if !rec.Complete {
			summary.FaultCount += len(rec.Faults)
			continue
		}
		summary.CompletedTicks++
		for id, out := range rec.Outputs {
			a, ok := accs[id]
			if !ok {
				a = &acc{min: math.Inf(1), max: math.Inf(-1)}
				accs[id] = a
			}
			a.spikes += len(out.Spikes)
			for _, v := range out.Gpot {
				if v < a.min {
					a.min = v
				}
				if v > a.max {
					a.max = v
				}
				a.sum += v
				a.count++
			}
		}
	}

	for id, a := range accs {
		s := model.ModuleRunStats{TotalSpikes: a.spikes}
		if a.count > 0 {
			s.GpotMin = a.min
			s.GpotMax = a.max
			s.GpotMean = a.sum / float64(a.count)
		}
		summary.Modules[id] = s
	}
	return summary
}

// WriteGpotCSV exports one module's recorded graded-potential trace as CSV:
// a tick column followed by one column per gpot slot.
func WriteGpotCSV(w io.Writer, moduleID string, records []model.TickRecord) error {
	slots := 0
	for _, rec := range records {
		if out, ok := rec.Outputs[moduleID]; ok && len(out.Gpot) > slots {
			slots = len(out.Gpot)
		}
	}
	if slots == 0 {
		return fmt.Errorf("no recorded gpot output for module %s", moduleID)
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, slots+1)
	header = append(header, "tick")
	for i := 0; i < slots; i++ {
		header = append(header, fmt.Sprintf("gpot_%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	sorted := append([]model.TickRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	for _, rec := range sorted {
		out, ok := rec.Outputs[moduleID]
		if !ok {
			continue
		}
		row := make([]string, 0, slots+1)
		row = append(row, strconv.Itoa(rec.Tick))
		for i := 0; i < slots; i++ {
			v := 0.0
			if i < len(out.Gpot) {
				v = out.Gpot[i]
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
