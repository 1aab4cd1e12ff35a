// Package registry keeps named atomicx cells and exports or imports all of
// them at once.
package registry

import (
	"errors"
	"fmt"
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/atomicx/api"
	"github.com/srediag/atomicx/internal/logger"
	"github.com/srediag/atomicx/pkg/atomicx"
)

var (
	// ErrKindMismatch is returned when a name is already bound to a cell of another kind.
	ErrKindMismatch = errors.New("cell kind mismatch")
	// ErrUnknownKind is returned for a kind or cell type the registry does not know.
	ErrUnknownKind = errors.New("unknown cell kind")
	// ErrDuplicate is returned by Register when the name is taken.
	ErrDuplicate = errors.New("cell already registered")
)

var internalLogger = logger.New("registry", nil)

// Entry is a named cell.
type Entry struct {
	Name string
	Kind Kind
	Cell api.Word
}

// Registry maps names to cells. It is safe for concurrent use.
type Registry struct {
	cells cmap.ConcurrentMap[string, *Entry]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{cells: cmap.New[*Entry]()}
}

func (r *Registry) getOrCreate(name string, kind Kind, mk func() api.Word) (*Entry, error) {
	for {
		if e, ok := r.cells.Get(name); ok {
			if e.Kind != kind {
				return nil, fmt.Errorf("%s is %v, not %v: %w", name, e.Kind, kind, ErrKindMismatch)
			}
			return e, nil
		}
		e := &Entry{Name: name, Kind: kind, Cell: mk()}
		if r.cells.SetIfAbsent(name, e) {
			internalLogger.Debugf("created %v cell %s", kind, name)
			return e, nil
		}
		// Lost the race to another creator; read theirs.
	}
}

// Int returns the integer cell called name, creating it with initial.
func (r *Registry) Int(name string, initial int64) (*atomicx.IntCell, error) {
	e, err := r.getOrCreate(name, KindInt, func() api.Word { return atomicx.NewInt(initial) })
	if err != nil {
		return nil, err
	}
	return e.Cell.(*atomicx.IntCell), nil
}

// Bool returns the boolean cell called name, creating it with initial.
func (r *Registry) Bool(name string, initial bool) (*atomicx.BoolCell, error) {
	e, err := r.getOrCreate(name, KindBool, func() api.Word { return atomicx.NewBool(initial) })
	if err != nil {
		return nil, err
	}
	return e.Cell.(*atomicx.BoolCell), nil
}

// Float returns the float cell called name, creating it with initial.
func (r *Registry) Float(name string, initial float64) (*atomicx.FloatCell, error) {
	e, err := r.getOrCreate(name, KindFloat, func() api.Word { return atomicx.NewFloat(initial) })
	if err != nil {
		return nil, err
	}
	return e.Cell.(*atomicx.FloatCell), nil
}

// Register binds an existing cell, e.g. one backed by a shared region.
func (r *Registry) Register(name string, cell api.Word) error {
	kind, err := KindOf(cell)
	if err != nil {
		return err
	}
	if !r.cells.SetIfAbsent(name, &Entry{Name: name, Kind: kind, Cell: cell}) {
		return fmt.Errorf("%s: %w", name, ErrDuplicate)
	}
	return nil
}

// Get returns the entry called name.
func (r *Registry) Get(name string) (*Entry, bool) {
	return r.cells.Get(name)
}

// Remove forgets name. Callers holding the cell keep a working cell.
func (r *Registry) Remove(name string) {
	r.cells.Remove(name)
}

// Len returns the number of cells.
func (r *Registry) Len() int {
	return r.cells.Count()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := r.cells.Keys()
	sort.Strings(names)
	return names
}

// Range calls fn for every entry in name order until fn returns false.
func (r *Registry) Range(fn func(e *Entry) bool) {
	for _, name := range r.Names() {
		e, ok := r.cells.Get(name)
		if !ok {
			continue
		}
		if !fn(e) {
			return
		}
	}
}
