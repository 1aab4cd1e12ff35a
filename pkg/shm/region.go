package shm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/cpu"

	"github.com/srediag/atomicx/internal/logger"
	internalshm "github.com/srediag/atomicx/internal/shm"
	"github.com/srediag/atomicx/pkg/atomicx"
)

const (
	// regionMagic is "ATOMICX1" read as a little-endian word.
	regionMagic uint64 = 0x3158_4349_4d4f_5441

	headerMagicOffset = 0
	headerSlotsOffset = 8

	// DefaultAttachRetries bounds attach attempts when OpenOptions.MaxRetries is zero.
	DefaultAttachRetries = 10
)

// SlotStride is the distance between two slots: one cache line, so cells
// written by different processes do not share a line.
var SlotStride = func() int {
	n := int(unsafe.Sizeof(cpu.CacheLinePad{}))
	if n < 8 {
		n = 8
	}
	return n
}()

var (
	// ErrSlotOutOfRange is returned for a slot outside [0, Slots).
	ErrSlotOutOfRange = errors.New("slot out of range")
	// ErrRegionClosed is returned by operations on a closed region.
	ErrRegionClosed = errors.New("shared memory region is closed")
	// ErrInvalidSlots is returned when creating a region without slots.
	ErrInvalidSlots = errors.New("invalid slot count")
	// ErrPlatformUnsupported is returned by Open where shared mappings are
	// not implemented.
	ErrPlatformUnsupported = internalshm.ErrPlatformUnsupported
	// ErrShareMemoryHadNotLeftSpace means /dev/shm cannot hold the region.
	ErrShareMemoryHadNotLeftSpace = internalshm.ErrShareMemoryHadNotLeftSpace

	errNotInitialized = errors.New("shared memory region is not initialized")
)

var internalLogger = logger.New("shm", nil)

// OpenOptions defines options for creating or attaching to a region.
type OpenOptions struct {
	// Name is the identifier for the shared memory region.
	Name string
	// Dir overrides the directory holding the region file (default /dev/shm).
	Dir string
	// Slots is the number of cells. Required with Create; when attaching,
	// zero accepts whatever the creator chose.
	Slots int
	// Create indicates whether to create (if not exists) or attach to an existing region.
	Create bool
	// MaxRetries bounds attach attempts. Zero means DefaultAttachRetries.
	MaxRetries uint64
	// InitialInterval is the first attach backoff delay. Zero uses the backoff default.
	InitialInterval time.Duration
}

// Region is a mapped shared memory region hosting cell slots.
type Region struct {
	mu     sync.Mutex
	region *internalshm.MappedRegion
	slots  int
	closed bool
}

func regionSize(slots int) int {
	return SlotStride * (slots + 1)
}

// Open creates or attaches to the region described by opts.
func Open(ctx context.Context, opts OpenOptions) (*Region, error) {
	if opts.Create && opts.Slots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlots, opts.Slots)
	}
	if opts.Slots < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlots, opts.Slots)
	}
	if opts.Create {
		return create(ctx, opts)
	}
	return attach(ctx, opts)
}

func create(ctx context.Context, opts OpenOptions) (*Region, error) {
	mapped, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
		Name:   opts.Name,
		Dir:    opts.Dir,
		Size:   regionSize(opts.Slots),
		Create: true,
	})
	if err != nil {
		return nil, err
	}
	magic := internalshm.WordAt(mapped.Addr, headerMagicOffset)
	slots := internalshm.WordAt(mapped.Addr, headerSlotsOffset)
	if internalshm.LoadUint64(magic) == regionMagic && internalshm.LoadUint64(slots) >= uint64(opts.Slots) {
		internalLogger.Infof("reusing region %s with %d slots", mapped.Path, internalshm.LoadUint64(slots))
	} else {
		internalshm.StoreUint64(slots, uint64(opts.Slots))
		// The magic goes last: attachers treat a region without it as not ready.
		internalshm.StoreUint64(magic, regionMagic)
		internalLogger.Infof("created region %s with %d slots", mapped.Path, opts.Slots)
	}
	return &Region{region: mapped, slots: opts.Slots}, nil
}

func attach(ctx context.Context, opts OpenOptions) (*Region, error) {
	size := 0
	if opts.Slots > 0 {
		size = regionSize(opts.Slots)
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultAttachRetries
	}
	eb := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		eb.InitialInterval = opts.InitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx)

	var r *Region
	op := func() error {
		mapped, err := internalshm.MapRegion(ctx, internalshm.MapOptions{
			Name: opts.Name,
			Dir:  opts.Dir,
			Size: size,
		})
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, internalshm.ErrRegionTooSmall) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(mapped.Addr) < regionSize(0) ||
			internalshm.LoadUint64(internalshm.WordAt(mapped.Addr, headerMagicOffset)) != regionMagic {
			_ = internalshm.UnmapRegion(ctx, mapped)
			return errNotInitialized
		}
		slots := int(internalshm.LoadUint64(internalshm.WordAt(mapped.Addr, headerSlotsOffset)))
		if len(mapped.Addr) < regionSize(slots) {
			_ = internalshm.UnmapRegion(ctx, mapped)
			return errNotInitialized
		}
		if opts.Slots > slots {
			_ = internalshm.UnmapRegion(ctx, mapped)
			return backoff.Permanent(fmt.Errorf("region has %d slots, want %d: %w", slots, opts.Slots, internalshm.ErrRegionTooSmall))
		}
		r = &Region{region: mapped, slots: slots}
		return nil
	}
	notify := func(err error, d time.Duration) {
		internalLogger.Debugf("attach %s: %v, retrying in %s", opts.Name, err, d)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("attach %s: %w", opts.Name, err)
	}
	internalLogger.Infof("attached region %s with %d slots", r.region.Path, r.slots)
	return r, nil
}

// Slots returns the number of cell slots.
func (r *Region) Slots() int {
	return r.slots
}

// Path returns the backing file path.
func (r *Region) Path() string {
	return r.region.Path
}

func (r *Region) word(slot int) (*uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegionClosed
	}
	if slot < 0 || slot >= r.slots {
		return nil, fmt.Errorf("slot %d of %d: %w", slot, r.slots, ErrSlotOutOfRange)
	}
	return internalshm.WordAt(r.region.Addr, SlotStride*(slot+1)), nil
}

// Int returns an integer cell backed by slot. The cell is valid until Close.
func (r *Region) Int(slot int) (*atomicx.IntCell, error) {
	w, err := r.word(slot)
	if err != nil {
		return nil, err
	}
	return atomicx.NewIntAt(w), nil
}

// Bool returns a boolean cell backed by slot. The cell is valid until Close.
func (r *Region) Bool(slot int) (*atomicx.BoolCell, error) {
	w, err := r.word(slot)
	if err != nil {
		return nil, err
	}
	return atomicx.NewBoolAt(w), nil
}

// Float returns a float cell backed by slot. The cell is valid until Close.
func (r *Region) Float(slot int) (*atomicx.FloatCell, error) {
	w, err := r.word(slot)
	if err != nil {
		return nil, err
	}
	return atomicx.NewFloatAt(w), nil
}

// Close unmaps the region. Cells obtained from it must not be used afterwards.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return internalshm.UnmapRegion(context.Background(), r.region)
}

// Remove closes the region and deletes its backing file.
func (r *Region) Remove() error {
	if err := r.Close(); err != nil {
		return err
	}
	if err := os.Remove(r.region.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	internalLogger.Infof("removed region %s", r.region.Path)
	return nil
}
