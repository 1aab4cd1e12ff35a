package registry

import (
	"errors"
	"fmt"

	"github.com/srediag/atomicx/api"
)

// State is the exported form of one cell.
type State struct {
	Kind Kind
	Bits uint64
}

// Snapshot maps cell names to their exported state.
type Snapshot map[string]State

// Snapshot exports every cell. Each cell is read atomically; the snapshot as
// a whole is not a single point in time.
func (r *Registry) Snapshot() Snapshot {
	snap := make(Snapshot, r.cells.Count())
	for item := range r.cells.IterBuffered() {
		snap[item.Key] = State{Kind: item.Val.Kind, Bits: item.Val.Cell.ExportBits()}
	}
	return snap
}

// Restore imports snap, creating cells that do not exist. Names bound to a
// cell of another kind are skipped and reported in the returned error.
func (r *Registry) Restore(snap Snapshot) error {
	var errs []error
	for name, st := range snap {
		if !st.Kind.valid() {
			errs = append(errs, fmt.Errorf("%s: %w: %v", name, ErrUnknownKind, st.Kind))
			continue
		}
		e, err := r.getOrCreate(name, st.Kind, func() api.Word {
			c, _ := NewCell(st.Kind)
			return c
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.Cell.ImportBits(st.Bits)
	}
	if len(errs) > 0 {
		internalLogger.Warnf("restore skipped %d cells", len(errs))
	}
	return errors.Join(errs...)
}
