package atomicx

import (
	"fmt"
	"strconv"

	"github.com/srediag/atomicx/internal/shm"
)

// BoolCell is an atomic bool stored as a 0/1 word.
type BoolCell struct {
	w word
}

func b2w(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// NewBool returns a cell holding v.
func NewBool(v bool) *BoolCell {
	c := &BoolCell{}
	c.w.inline.Store(b2w(v))
	return c
}

// NewBoolAt returns a cell backed by the word at addr. Any nonzero word reads
// as true. addr must be 8-byte aligned and outlive the cell.
func NewBoolAt(addr *uint64) *BoolCell {
	return &BoolCell{w: word{ext: addr}}
}

// Load returns the current value.
func (c *BoolCell) Load() bool {
	return shm.LoadUint64(c.w.addr()) != 0
}

// Store sets the value.
func (c *BoolCell) Store(v bool) {
	shm.StoreUint64(c.w.addr(), b2w(v))
}

// Swap stores v and returns the previous value.
func (c *BoolCell) Swap(v bool) bool {
	return shm.SwapUint64(c.w.addr(), b2w(v)) != 0
}

// CompareExchange stores new if the cell holds expected, in a single attempt.
// It returns whether the store happened and the value the decision was based on.
func (c *BoolCell) CompareExchange(expected, new bool) (bool, bool) {
	prev, ok := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		if (old != 0) != expected {
			return 0, false
		}
		return b2w(new), true
	})
	return ok, prev != 0
}

// Flip inverts the value and returns the value before the flip.
func (c *BoolCell) Flip() bool {
	prev, _ := shm.FetchUpdate(c.w.addr(), func(old uint64) (uint64, bool) {
		if old != 0 {
			return 0, true
		}
		return 1, true
	})
	return prev != 0
}

// Bool returns the current value.
func (c *BoolCell) Bool() bool {
	return c.Load()
}

// Int returns 1 for true and 0 for false.
func (c *BoolCell) Int() int64 {
	if c.Load() {
		return 1
	}
	return 0
}

// Not returns the negation of the current value without changing the cell.
func (c *BoolCell) Not() bool {
	return !c.Load()
}

func (c *BoolCell) String() string {
	return strconv.FormatBool(c.Load())
}

// GoString renders the cell as AtomicBool(<value>).
func (c *BoolCell) GoString() string {
	return fmt.Sprintf("AtomicBool(%t)", c.Load())
}

// Export returns the current value for persistence.
func (c *BoolCell) Export() bool {
	return c.Load()
}

// Import stores a value produced by Export.
func (c *BoolCell) Import(v bool) {
	c.Store(v)
}

// ExportBits returns the raw 64-bit word.
func (c *BoolCell) ExportBits() uint64 {
	return b2w(c.Load())
}

// ImportBits stores a word produced by ExportBits.
func (c *BoolCell) ImportBits(bits uint64) {
	c.Store(bits != 0)
}

// MarshalBinary encodes the word as 8 big-endian bytes.
func (c *BoolCell) MarshalBinary() ([]byte, error) {
	return encodeState(c.ExportBits()), nil
}

// UnmarshalBinary decodes MarshalBinary output. It returns ErrInvalidState
// for a length other than 8 or a word other than 0 or 1.
func (c *BoolCell) UnmarshalBinary(data []byte) error {
	bits, err := decodeState(data)
	if err != nil {
		return err
	}
	if bits > 1 {
		return fmt.Errorf("%w: bool word %#x", ErrInvalidState, bits)
	}
	c.ImportBits(bits)
	return nil
}

// MarshalText renders the value as String does.
func (c *BoolCell) MarshalText() ([]byte, error) {
	return strconv.AppendBool(nil, c.Load()), nil
}

// UnmarshalText parses a value rendered by MarshalText.
func (c *BoolCell) UnmarshalText(text []byte) error {
	v, err := strconv.ParseBool(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	c.Store(v)
	return nil
}
