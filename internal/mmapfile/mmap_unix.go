//go:build unix

// Package mmapfile memory-maps a path for ParseFile, grounded in
// entreya-csvquery's common.MmapFile/MunmapFile contract (Windows falls
// back to a full read there, and again here) and in
// shapestone-shape-csv/internal/fastparser/mmap_unix.go's use of
// golang.org/x/sys/unix for the syscalls instead of raw package syscall.
package mmapfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps path read-only. The returned close func must be called once
// the returned bytes are no longer referenced by anything — the mapping
// must outlive any STRING column that borrows it directly.
func Open(path string) (data []byte, close func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}

	size := stat.Size()
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: mmap %s: %w", path, err)
	}

	return data, func() error { return unix.Munmap(data) }, nil
}
