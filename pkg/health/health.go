// Package health exposes liveness and readiness endpoints for processes that
// host atomicx cells.
package health

import (
	"errors"
	"fmt"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

// ErrProbeMismatch is returned when the cell probe reads back something it did not write.
var ErrProbeMismatch = errors.New("atomic cell probe mismatch")

// NewHandler returns a healthcheck handler whose liveness check exercises a
// private probe cell. Add readiness checks with AddReadinessCheck.
func NewHandler() healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("atomic-cells", ProbeCheck())
	return h
}

// ProbeCheck stores, compare-exchanges, swaps and loads a fresh cell.
func ProbeCheck() healthcheck.Check {
	return func() error {
		const want = 42
		probe := atomicx.NewInt(0)
		probe.Store(want)
		if ok, seen := probe.CompareExchange(want, -want); !ok {
			return fmt.Errorf("%w: compare-exchange saw %d, want %d", ErrProbeMismatch, seen, want)
		}
		if got := probe.Swap(want); got != -want {
			return fmt.Errorf("%w: swap returned %d, want %d", ErrProbeMismatch, got, -want)
		}
		if got := probe.Load(); got != want {
			return fmt.Errorf("%w: load returned %d, want %d", ErrProbeMismatch, got, want)
		}
		return nil
	}
}

// FlagCheck fails while flag is set, e.g. a "lost updates detected" marker.
func FlagCheck(flag *atomicx.BoolCell, reason string) healthcheck.Check {
	return func() error {
		if flag.Load() {
			return errors.New(reason)
		}
		return nil
	}
}

// CellCheck runs fn against the named registry cell. A missing cell fails.
func CellCheck(reg *registry.Registry, name string, fn func(e *registry.Entry) error) healthcheck.Check {
	return func() error {
		e, ok := reg.Get(name)
		if !ok {
			return fmt.Errorf("cell %s is not registered", name)
		}
		return fn(e)
	}
}
