package atomicx

import (
	"fmt"
	"strconv"

	"github.com/srediag/atomicx/internal/shm"
)

// IntCell is an atomic int64. Arithmetic wraps on overflow in two's
// complement, matching hardware fetch-add.
type IntCell struct {
	w word
}

// NewInt returns a cell holding v.
func NewInt(v int64) *IntCell {
	c := &IntCell{}
	c.w.inline.Store(uint64(v))
	return c
}

// NewIntAt returns a cell backed by the word at addr, keeping its current
// contents. addr must be 8-byte aligned and outlive the cell.
func NewIntAt(addr *uint64) *IntCell {
	return &IntCell{w: word{ext: addr}}
}

// Load returns the current value.
func (c *IntCell) Load() int64 {
	return int64(shm.LoadUint64(c.w.addr()))
}

// Store sets the value.
func (c *IntCell) Store(v int64) {
	shm.StoreUint64(c.w.addr(), uint64(v))
}

// Add adds v and returns the previous value.
func (c *IntCell) Add(v int64) int64 {
	return int64(shm.AddUint64(c.w.addr(), uint64(v)))
}

// Sub subtracts v and returns the previous value.
func (c *IntCell) Sub(v int64) int64 {
	return int64(shm.AddUint64(c.w.addr(), uint64(-v)))
}

// Inc is Add(1).
func (c *IntCell) Inc() int64 {
	return c.Add(1)
}

// Dec is Sub(1).
func (c *IntCell) Dec() int64 {
	return c.Sub(1)
}

// Swap stores v and returns the previous value.
func (c *IntCell) Swap(v int64) int64 {
	return int64(shm.SwapUint64(c.w.addr(), uint64(v)))
}

// CompareExchange stores new if the cell holds expected. It makes a single
// attempt and returns whether the store happened together with the value the
// decision was based on: expected on success, the current value on failure.
func (c *IntCell) CompareExchange(expected, new int64) (bool, int64) {
	ok, seen := shm.CompareAndSwapUint64(c.w.addr(), uint64(expected), uint64(new))
	return ok, int64(seen)
}

// Mul multiplies by v and returns the previous value.
func (c *IntCell) Mul(v int64) int64 {
	prev, _ := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		return uint64(int64(old) * v), true
	})
	return int64(prev)
}

// Div divides by v, truncating toward zero, and returns the previous value.
// It returns ErrDivisionByZero and leaves the cell unchanged when v is 0.
// MinInt64 / -1 wraps to MinInt64 instead of returning an error.
func (c *IntCell) Div(v int64) (int64, error) {
	if v == 0 {
		return 0, ErrDivisionByZero
	}
	prev, _ := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		return uint64(int64(old) / v), true
	})
	return int64(prev), nil
}

// AddAssign adds v, discarding the previous value.
func (c *IntCell) AddAssign(v int64) { c.Add(v) }

// SubAssign subtracts v, discarding the previous value.
func (c *IntCell) SubAssign(v int64) { c.Sub(v) }

// MulAssign multiplies by v, discarding the previous value.
func (c *IntCell) MulAssign(v int64) { c.Mul(v) }

// DivAssign divides by v. It returns ErrDivisionByZero and leaves the
// cell unchanged when v is 0.
func (c *IntCell) DivAssign(v int64) error {
	_, err := c.Div(v)
	return err
}

// Int returns the current value.
func (c *IntCell) Int() int64 {
	return c.Load()
}

func (c *IntCell) String() string {
	return strconv.FormatInt(c.Load(), 10)
}

// GoString renders the cell as AtomicInt(<value>).
func (c *IntCell) GoString() string {
	return fmt.Sprintf("AtomicInt(%d)", c.Load())
}

// Export returns the current value for persistence.
func (c *IntCell) Export() int64 {
	return c.Load()
}

// Import stores a value produced by Export.
func (c *IntCell) Import(v int64) {
	c.Store(v)
}

// ExportBits returns the raw 64-bit word.
func (c *IntCell) ExportBits() uint64 {
	return shm.LoadUint64(c.w.addr())
}

// ImportBits stores a word produced by ExportBits.
func (c *IntCell) ImportBits(bits uint64) {
	shm.StoreUint64(c.w.addr(), bits)
}

// MarshalBinary encodes the word as 8 big-endian bytes.
func (c *IntCell) MarshalBinary() ([]byte, error) {
	return encodeState(c.ExportBits()), nil
}

// UnmarshalBinary decodes MarshalBinary output. Any length other than 8
// returns ErrInvalidState.
func (c *IntCell) UnmarshalBinary(data []byte) error {
	bits, err := decodeState(data)
	if err != nil {
		return err
	}
	c.ImportBits(bits)
	return nil
}

// MarshalText renders the value as String does.
func (c *IntCell) MarshalText() ([]byte, error) {
	return strconv.AppendInt(nil, c.Load(), 10), nil
}

// UnmarshalText parses a value rendered by MarshalText.
func (c *IntCell) UnmarshalText(text []byte) error {
	v, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	c.Store(v)
	return nil
}
