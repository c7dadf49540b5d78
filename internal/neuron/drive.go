package neuron

import (
	"sort"

	"neuroplex/internal/module"
)

// gpotDrive sums the graded-potential input at slot i across all sources.
// Sources are visited in sorted order so float accumulation is reproducible.
func gpotDrive(in module.Inputs, i int) float64 {
	keys := make([]string, 0, len(in.Gpot))
	for src := range in.Gpot {
		keys = append(keys, src)
	}
	sort.Strings(keys)

	total := 0.0
	for _, src := range keys {
		buf := in.Gpot[src]
		if i < len(buf) {
			total += buf[i]
		}
	}
	return total
}

// spikeDrive counts how many sources delivered a spike onto slot i.
func spikeDrive(in module.Inputs, i int) float64 {
	count := 0.0
	for _, set := range in.Spike {
		if set.Contains(i) {
			count++
		}
	}
	return count
}
