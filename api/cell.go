// Package api defines public API contracts for atomicx cells.
package api

// Cell is the operation set every atomic cell shares.
type Cell[T any] interface {
	Load() T
	Store(v T)
	Swap(v T) T
	// CompareExchange stores new if the cell holds expected and reports
	// whether it did, together with the value it observed.
	CompareExchange(expected, new T) (bool, T)
}

// Numeric is a Cell with fetch-before arithmetic. Div fails only when the
// divisor is zero.
type Numeric[T int64 | float64] interface {
	Cell[T]
	Add(v T) T
	Sub(v T) T
	Mul(v T) T
	Div(v T) (T, error)
}

// Exporter hands a cell's value to a host for persistence and restores it.
// Import(Export()) leaves the cell unchanged.
type Exporter[T any] interface {
	Export() T
	Import(v T)
}

// Word exposes a cell as its raw 64-bit representation, so cells of any
// kind can be snapshotted bit-exactly.
type Word interface {
	ExportBits() uint64
	ImportBits(bits uint64)
}
