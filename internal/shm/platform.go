// Package shm contains the word-level atomic primitives shared by every cell
// type and the platform-specific mapping of shared memory regions.
package shm

import "errors"

// DefaultDir is where named regions live unless MapOptions.Dir says otherwise.
const DefaultDir = "/dev/shm"

var (
	// ErrPlatformUnsupported is returned by MapRegion where shared mappings
	// are not implemented.
	ErrPlatformUnsupported = errors.New("shared memory regions are not supported on this platform")
	// ErrShareMemoryHadNotLeftSpace means the backing filesystem cannot hold the region.
	ErrShareMemoryHadNotLeftSpace = errors.New("share memory had not left space")
	// ErrRegionTooSmall means an existing region is smaller than requested.
	ErrRegionTooSmall = errors.New("shared memory region is smaller than requested")
)

// MappedRegion represents a memory-mapped shared region.
type MappedRegion struct {
	Addr []byte
	Path string
}

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	Name string
	// Dir defaults to DefaultDir.
	Dir string
	// Size is required when Create is set. When attaching, zero means "map
	// the whole file".
	Size   int
	Create bool
}

func (o MapOptions) dir() string {
	if o.Dir == "" {
		return DefaultDir
	}
	return o.Dir
}

// Function implementations are provided in platform-specific files (platform_linux.go, platform_other.go).
