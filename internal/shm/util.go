package shm

import (
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// canCreateOnDevShm reports whether size bytes fit on /dev/shm. Paths outside
// /dev/shm always pass.
func canCreateOnDevShm(size uint64, path string) bool {
	path = filepath.Clean(path)
	if path != DefaultDir && !strings.HasPrefix(path, DefaultDir+"/") {
		return true
	}
	stat, err := disk.Usage(DefaultDir)
	if err != nil {
		// No usage information; let the mapping itself fail if space is short.
		return true
	}
	return stat.Free >= size
}
