// Package shm hosts atomicx cells in a named shared memory region so that
// several processes on one host can operate on the same cells.
//
// A region is a file (by default under /dev/shm) mapped with MAP_SHARED. It
// starts with a header line holding a magic word and the slot count,
// followed by Slots cell words, each on its own cache line. Cells in a region
// keep their values across processes and across restarts for as long as the
// file exists.
//
// Example usage:
//
//	r, err := shm.Open(ctx, shm.OpenOptions{Name: "counters", Slots: 8, Create: true})
//	// ...
//	hits, err := r.Int(0)
//	hits.Inc()
//
// Another process attaches with Create unset; it retries with exponential
// backoff until the creator has initialized the region or ctx is done.
package shm
