package shm

import (
	"sync/atomic"
	"unsafe"
)

// All word operations are sequentially consistent: sync/atomic provides a
// single total order over operations on the same address.

// LoadUint64 atomically loads the word at addr.
func LoadUint64(addr *uint64) uint64 {
	return atomic.LoadUint64(addr)
}

// StoreUint64 atomically stores val at addr.
func StoreUint64(addr *uint64, val uint64) {
	atomic.StoreUint64(addr, val)
}

// SwapUint64 atomically stores val at addr and returns the previous word.
func SwapUint64(addr *uint64, val uint64) uint64 {
	return atomic.SwapUint64(addr, val)
}

// AddUint64 atomically adds delta and returns the word before the addition.
// Signed deltas wrap in two's complement.
func AddUint64(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, delta) - delta
}

// CompareAndSwapUint64 is a single CAS attempt. On failure it reports the
// word it observed; on success it reports old.
func CompareAndSwapUint64(addr *uint64, old, new uint64) (bool, uint64) {
	for {
		if atomic.CompareAndSwapUint64(addr, old, new) {
			return true, old
		}
		cur := atomic.LoadUint64(addr)
		if cur != old {
			return false, cur
		}
		// The word changed back to old between the CAS and the load; the
		// attempt is not decided yet.
	}
}

// FetchUpdate applies fn to the current word until a CAS installs its result,
// and returns the word that was replaced. When fn returns false the loop
// stops without writing and returns the current word with ok == false.
//
// The loop spins on CAS failure only; it never sleeps or yields.
func FetchUpdate(addr *uint64, fn func(old uint64) (new uint64, ok bool)) (prev uint64, ok bool) {
	for {
		old := atomic.LoadUint64(addr)
		next, ok := fn(old)
		if !ok {
			return old, false
		}
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return old, true
		}
	}
}

// Raw returns a plain *uint64 view of an atomic.Uint64. The view shares the
// 8-byte alignment atomic.Uint64 guarantees on 32-bit platforms.
func Raw(a *atomic.Uint64) *uint64 {
	return (*uint64)(unsafe.Pointer(a))
}

// WordAt returns the word at byte offset off of mem. off must be a multiple of 8
// and mem must come from an 8-byte aligned mapping.
func WordAt(mem []byte, off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&mem[off]))
}
