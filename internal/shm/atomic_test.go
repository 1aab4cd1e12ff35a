package shm

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareAndSwapUint64(t *testing.T) {
	var w uint64 = 7

	ok, seen := CompareAndSwapUint64(&w, 7, 9)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), seen)
	assert.Equal(t, uint64(9), LoadUint64(&w))

	ok, seen = CompareAndSwapUint64(&w, 7, 11)
	assert.False(t, ok)
	assert.Equal(t, uint64(9), seen)
	assert.Equal(t, uint64(9), LoadUint64(&w))
}

func TestAddUint64ReturnsPrevious(t *testing.T) {
	var w uint64
	StoreUint64(&w, 5)
	assert.Equal(t, uint64(5), AddUint64(&w, 3))
	assert.Equal(t, uint64(8), AddUint64(&w, ^uint64(0)))
	assert.Equal(t, uint64(7), LoadUint64(&w))
	assert.Equal(t, uint64(7), SwapUint64(&w, 1))
	assert.Equal(t, uint64(1), LoadUint64(&w))
}

func TestFetchUpdateRejects(t *testing.T) {
	var w uint64 = 42
	prev, ok := FetchUpdate(&w, func(uint64) (uint64, bool) { return 0, false })
	assert.False(t, ok)
	assert.Equal(t, uint64(42), prev)
	assert.Equal(t, uint64(42), LoadUint64(&w))
}

func TestFetchUpdateNoLostUpdates(t *testing.T) {
	const (
		workers = 16
		rounds  = 2000
	)
	var w uint64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_, ok := FetchUpdate(&w, func(old uint64) (uint64, bool) { return old + 2, true })
				if !ok {
					t.Error("FetchUpdate rejected an accepting transform")
					return
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(2*workers*rounds), LoadUint64(&w))
}

func TestRawSharesStorage(t *testing.T) {
	var a atomic.Uint64
	a.Store(3)
	p := Raw(&a)
	StoreUint64(p, 4)
	assert.Equal(t, uint64(4), a.Load())
}

func TestWordAt(t *testing.T) {
	buf := make([]uint64, 4)
	mem := unsafeBytes(buf)
	StoreUint64(WordAt(mem, 16), 99)
	assert.Equal(t, uint64(99), buf[2])
}
