package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Circuit is the persisted description of a simulation topology: the module
// declarations plus the directed slot-to-slot edges between them.
type Circuit struct {
	VersionedRecord
	Name    string       `json:"name"`
	Modules []ModuleSpec `json:"modules"`
	Edges   []EdgeSpec   `json:"edges"`
}

type ModuleSpec struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	GpotSlots  int                `json:"gpot_slots"`
	SpikeSlots int                `json:"spike_slots"`
	Extern     bool               `json:"extern,omitempty"`
	Public     bool               `json:"public,omitempty"`
	Spiking    bool               `json:"spiking,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
}

// EdgeSpec classes follow the synapse class enum: the kind of the source slot
// followed by the kind of the destination slot.
const (
	EdgeClassGpotGpot   = "gpot_gpot"
	EdgeClassGpotSpike  = "gpot_spike"
	EdgeClassSpikeGpot  = "spike_gpot"
	EdgeClassSpikeSpike = "spike_spike"
)

type EdgeSpec struct {
	Src     string  `json:"src"`
	Dst     string  `json:"dst"`
	Class   string  `json:"class"`
	SrcSlot int     `json:"src_slot"`
	DstSlot int     `json:"dst_slot"`
	Weight  float64 `json:"weight"`
}

// StimulusSpec describes a per-tick input source bound to one module's
// external graded-potential slots.
type StimulusSpec struct {
	Module   string      `json:"module" yaml:"module"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Kind     string      `json:"kind" yaml:"kind"`
	Constant []float64   `json:"constant,omitempty" yaml:"constant,omitempty"`
	Frames   [][]float64 `json:"frames,omitempty" yaml:"frames,omitempty"`
	Hold     bool        `json:"hold,omitempty" yaml:"hold,omitempty"`
}

// ModuleOutput is one module's raw output arrays for a single tick. Spike
// indices are kept sorted so encoded records are byte-stable.
type ModuleOutput struct {
	Gpot   []float64 `json:"gpot"`
	Spikes []int     `json:"spikes"`
}

// TickRecord is the recorded outcome of one simulation tick. Complete is
// false when any module faulted or contributed no output; incomplete ticks
// are never presented as complete to downstream consumers.
type TickRecord struct {
	VersionedRecord
	RunID    string                  `json:"run_id"`
	Tick     int                     `json:"tick"`
	Complete bool                    `json:"complete"`
	Outputs  map[string]ModuleOutput `json:"outputs"`
	Faults   []string                `json:"faults,omitempty"`
}

type ModuleRunStats struct {
	TotalSpikes int     `json:"total_spikes"`
	GpotMin     float64 `json:"gpot_min"`
	GpotMean    float64 `json:"gpot_mean"`
	GpotMax     float64 `json:"gpot_max"`
}

type RunSummary struct {
	VersionedRecord
	RunID          string                    `json:"run_id"`
	Circuit        string                    `json:"circuit"`
	RequestedSteps int                       `json:"requested_steps"`
	CompletedTicks int                       `json:"completed_ticks"`
	FaultCount     int                       `json:"fault_count"`
	TimedOut       bool                      `json:"timed_out"`
	Modules        map[string]ModuleRunStats `json:"modules,omitempty"`
}
