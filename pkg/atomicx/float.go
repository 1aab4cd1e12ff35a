package atomicx

import (
	"fmt"
	"math"
	"strconv"

	"github.com/srediag/atomicx/internal/shm"
)

// FloatCell is an atomic float64 stored as its IEEE-754 bit pattern.
// Arithmetic never fails except for division by exact zero; NaN and Inf
// propagate by the usual IEEE rules.
type FloatCell struct {
	w word
}

// NewFloat returns a cell holding v.
func NewFloat(v float64) *FloatCell {
	c := &FloatCell{}
	c.w.inline.Store(math.Float64bits(v))
	return c
}

// NewFloatAt returns a cell backed by the word at addr. addr must be 8-byte
// aligned and outlive the cell.
func NewFloatAt(addr *uint64) *FloatCell {
	return &FloatCell{w: word{ext: addr}}
}

// Load returns the current value.
func (c *FloatCell) Load() float64 {
	return math.Float64frombits(shm.LoadUint64(c.w.addr()))
}

// Store sets the value.
func (c *FloatCell) Store(v float64) {
	shm.StoreUint64(c.w.addr(), math.Float64bits(v))
}

// Swap stores v and returns the previous value.
func (c *FloatCell) Swap(v float64) float64 {
	return math.Float64frombits(shm.SwapUint64(c.w.addr(), math.Float64bits(v)))
}

// CompareExchange stores new if the cell compares equal to expected under
// IEEE-754 rules: NaN never matches and +0 matches -0. It returns whether the
// store happened and the value the decision was based on.
func (c *FloatCell) CompareExchange(expected, new float64) (bool, float64) {
	prev, ok := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		if math.Float64frombits(old) != expected {
			return 0, false
		}
		return math.Float64bits(new), true
	})
	return ok, math.Float64frombits(prev)
}

func (c *FloatCell) update(fn func(float64) float64) float64 {
	prev, _ := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		return math.Float64bits(fn(math.Float64frombits(old))), true
	})
	return math.Float64frombits(prev)
}

// Add adds v and returns the previous value.
func (c *FloatCell) Add(v float64) float64 {
	return c.update(func(old float64) float64 { return old + v })
}

// Sub subtracts v and returns the previous value.
func (c *FloatCell) Sub(v float64) float64 {
	return c.update(func(old float64) float64 { return old - v })
}

// Mul multiplies by v and returns the previous value.
func (c *FloatCell) Mul(v float64) float64 {
	return c.update(func(old float64) float64 { return old * v })
}

// Div divides by v and returns the previous value. Dividing by +0 or -0
// returns ErrDivisionByZero and leaves the cell unchanged instead of
// producing an infinity.
func (c *FloatCell) Div(v float64) (float64, error) {
	if v == 0 {
		return 0, ErrDivisionByZero
	}
	return c.update(func(old float64) float64 { return old / v }), nil
}

// AddAssign adds v, discarding the previous value.
func (c *FloatCell) AddAssign(v float64) { c.Add(v) }

// SubAssign subtracts v, discarding the previous value.
func (c *FloatCell) SubAssign(v float64) { c.Sub(v) }

// MulAssign multiplies by v, discarding the previous value.
func (c *FloatCell) MulAssign(v float64) { c.Mul(v) }

// DivAssign divides by v. It returns ErrDivisionByZero and leaves the
// cell unchanged when v is 0.
func (c *FloatCell) DivAssign(v float64) error {
	_, err := c.Div(v)
	return err
}

// Float returns the current value.
func (c *FloatCell) Float() float64 {
	return c.Load()
}

func (c *FloatCell) String() string {
	return strconv.FormatFloat(c.Load(), 'g', -1, 64)
}

// GoString renders the cell as AtomicFloat(<value>).
func (c *FloatCell) GoString() string {
	return "AtomicFloat(" + c.String() + ")"
}

// Export returns the current value for persistence.
func (c *FloatCell) Export() float64 {
	return c.Load()
}

// Import stores a value produced by Export.
func (c *FloatCell) Import(v float64) {
	c.Store(v)
}

// ExportBits returns the raw IEEE-754 bits, preserving NaN payloads.
func (c *FloatCell) ExportBits() uint64 {
	return shm.LoadUint64(c.w.addr())
}

// ImportBits stores a word produced by ExportBits.
func (c *FloatCell) ImportBits(bits uint64) {
	shm.StoreUint64(c.w.addr(), bits)
}

// MarshalBinary encodes the word as 8 big-endian bytes.
func (c *FloatCell) MarshalBinary() ([]byte, error) {
	return encodeState(c.ExportBits()), nil
}

// UnmarshalBinary decodes MarshalBinary output. Any length other than 8
// returns ErrInvalidState.
func (c *FloatCell) UnmarshalBinary(data []byte) error {
	bits, err := decodeState(data)
	if err != nil {
		return err
	}
	c.ImportBits(bits)
	return nil
}

// MarshalText renders the value as String does.
func (c *FloatCell) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, c.Load(), 'g', -1, 64), nil
}

// UnmarshalText parses a value rendered by MarshalText.
func (c *FloatCell) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	c.Store(v)
	return nil
}
