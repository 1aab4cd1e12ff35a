//go:build linux

package shm

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// MapRegion maps or creates a shared memory region (Linux implementation).
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shmPath := filepath.Join(opts.dir(), opts.Name)
	flags := unix.O_RDWR | unix.O_CLOEXEC
	if opts.Create {
		if !canCreateOnDevShm(uint64(opts.Size), shmPath) {
			return nil, fmt.Errorf("path:%s size:%d: %w", shmPath, opts.Size, ErrShareMemoryHadNotLeftSpace)
		}
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(shmPath, flags, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", shmPath, err)
	}
	// The mapping stays valid after the descriptor is closed.
	defer func() {
		_ = unix.Close(fd)
	}()

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("fstat: %w", err)
	}
	size := opts.Size
	switch {
	case opts.Create && st.Size < int64(size):
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			return nil, fmt.Errorf("ftruncate: %w", err)
		}
	case !opts.Create && size == 0:
		size = int(st.Size)
	case !opts.Create && st.Size < int64(size):
		return nil, fmt.Errorf("path:%s has %d bytes, want %d: %w", shmPath, st.Size, size, ErrRegionTooSmall)
	}
	if size <= 0 {
		return nil, fmt.Errorf("path:%s: %w", shmPath, ErrRegionTooSmall)
	}

	addr, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &MappedRegion{
		Addr: addr,
		Path: shmPath,
	}, nil
}

// UnmapRegion unmaps the shared memory region (Linux implementation).
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.Addr == nil {
		return nil
	}
	if err := unix.Munmap(region.Addr); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	region.Addr = nil
	return nil
}
