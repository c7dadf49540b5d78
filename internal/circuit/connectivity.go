package circuit

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

type Kind string

const (
	KindGpot  Kind = "gpot"
	KindSpike Kind = "spike"
)

var (
	ErrUnknownModule   = errors.New("module not declared")
	ErrDuplicateEdge   = errors.New("edge already registered")
	ErrFrozen          = errors.New("connectivity map is frozen")
	ErrUnsupportedKind = errors.New("unsupported slot kind")
)

// InvalidSlotError reports a connectivity edge referencing a slot index
// outside the declared slot count for a module.
type InvalidSlotError struct {
	ModuleID string
	Kind     Kind
	Index    int
	Limit    int
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid %s slot %d for module %s: declared count is %d", e.Kind, e.Index, e.ModuleID, e.Limit)
}

// Decl is one module's declared slot counts, fixed before any edge that
// references it may be registered.
type Decl struct {
	ID         string
	GpotSlots  int
	SpikeSlots int
}

func (d Decl) slots(kind Kind) (int, error) {
	switch kind {
	case KindGpot:
		return d.GpotSlots, nil
	case KindSpike:
		return d.SpikeSlots, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// Edge is one directed slot-to-slot connection.
type Edge struct {
	Src      string
	SrcKind  Kind
	SrcIndex int
	Dst      string
	DstKind  Kind
	DstIndex int
	Weight   float64
}

func (e Edge) key() string {
	return fmt.Sprintf("%s/%s/%d->%s/%s/%d", e.Src, e.SrcKind, e.SrcIndex, e.Dst, e.DstKind, e.DstIndex)
}

// Map is the static connectivity relation. It is mutable while being built
// and read-only once frozen; a frozen map may be shared across goroutines
// without locking. Cycles and self-edges are permitted.
type Map struct {
	mu     sync.RWMutex
	decls  map[string]Decl
	bySrc  map[string][]Edge
	byDst  map[string][]Edge
	keys   map[string]struct{}
	frozen bool
}

func NewMap() *Map {
	return &Map{
		decls: make(map[string]Decl),
		bySrc: make(map[string][]Edge),
		byDst: make(map[string][]Edge),
		keys:  make(map[string]struct{}),
	}
}

// Declare registers a module's slot counts. Redeclaring an id with different
// counts is an error; redeclaring identical counts is a no-op.
func (m *Map) Declare(id string, gpotSlots, spikeSlots int) error {
	if id == "" {
		return errors.New("module id is required")
	}
	if gpotSlots < 0 || spikeSlots < 0 {
		return fmt.Errorf("negative slot count for module %s", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrFrozen
	}
	if existing, ok := m.decls[id]; ok {
		if existing.GpotSlots != gpotSlots || existing.SpikeSlots != spikeSlots {
			return fmt.Errorf("module %s already declared with different slot counts", id)
		}
		return nil
	}
	m.decls[id] = Decl{ID: id, GpotSlots: gpotSlots, SpikeSlots: spikeSlots}
	return nil
}

// Connect registers one directed edge. Both endpoints must be declared and
// both slot indices must be within the declared counts for their kind.
func (m *Map) Connect(src string, srcKind Kind, srcIndex int, dst string, dstKind Kind, dstIndex int, weight float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return ErrFrozen
	}

	srcDecl, ok := m.decls[src]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, src)
	}
	dstDecl, ok := m.decls[dst]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, dst)
	}

	srcLimit, err := srcDecl.slots(srcKind)
	if err != nil {
		return err
	}
	if srcIndex < 0 || srcIndex >= srcLimit {
		return &InvalidSlotError{ModuleID: src, Kind: srcKind, Index: srcIndex, Limit: srcLimit}
	}
	dstLimit, err := dstDecl.slots(dstKind)
	if err != nil {
		return err
	}
	if dstIndex < 0 || dstIndex >= dstLimit {
		return &InvalidSlotError{ModuleID: dst, Kind: dstKind, Index: dstIndex, Limit: dstLimit}
	}

	edge := Edge{Src: src, SrcKind: srcKind, SrcIndex: srcIndex, Dst: dst, DstKind: dstKind, DstIndex: dstIndex, Weight: weight}
	if _, exists := m.keys[edge.key()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, edge.key())
	}
	m.keys[edge.key()] = struct{}{}
	m.bySrc[src] = append(m.bySrc[src], edge)
	m.byDst[dst] = append(m.byDst[dst], edge)
	return nil
}

// Freeze makes the map immutable. Safe to call more than once.
func (m *Map) Freeze() {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
}

func (m *Map) Frozen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frozen
}

// RoutesFor returns every registered edge whose source is srcID, in
// registration order. The returned slice is a copy.
func (m *Map) RoutesFor(srcID string) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Edge(nil), m.bySrc[srcID]...)
}

// RoutesInto returns every registered edge whose destination is dstID.
func (m *Map) RoutesInto(dstID string) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Edge(nil), m.byDst[dstID]...)
}

// Decl reports the declared slot counts for a module id.
func (m *Map) Decl(id string) (Decl, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	decl, ok := m.decls[id]
	return decl, ok
}

// DeclaredIDs returns all declared module ids in sorted order.
func (m *Map) DeclaredIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.decls))
	for id := range m.decls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns every registered edge ordered by source id, then
// registration order within a source.
func (m *Map) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	srcs := make([]string, 0, len(m.bySrc))
	for src := range m.bySrc {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)

	out := make([]Edge, 0, len(m.keys))
	for _, src := range srcs {
		out = append(out, m.bySrc[src]...)
	}
	return out
}
