package atomicx

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/srediag/atomicx/api"
	"github.com/srediag/atomicx/internal/shm"
)

type nocmp [0]func()

// word is the single 64-bit storage location behind every cell. It is either
// the inline value or an external word, e.g. a slot in a shared region.
type word struct {
	_      nocmp
	inline atomic.Uint64
	ext    *uint64
}

func (w *word) addr() *uint64 {
	if w.ext != nil {
		return w.ext
	}
	return shm.Raw(&w.inline)
}

const stateSize = 8

func encodeState(bits uint64) []byte {
	b := make([]byte, stateSize)
	binary.BigEndian.PutUint64(b, bits)
	return b
}

func decodeState(b []byte) (uint64, error) {
	if len(b) != stateSize {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidState, stateSize, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

var (
	_ api.Numeric[int64]    = (*IntCell)(nil)
	_ api.Numeric[float64]  = (*FloatCell)(nil)
	_ api.Cell[bool]        = (*BoolCell)(nil)
	_ api.Exporter[int64]   = (*IntCell)(nil)
	_ api.Exporter[bool]    = (*BoolCell)(nil)
	_ api.Exporter[float64] = (*FloatCell)(nil)
	_ api.Word              = (*IntCell)(nil)
	_ api.Word              = (*BoolCell)(nil)
	_ api.Word              = (*FloatCell)(nil)
)
