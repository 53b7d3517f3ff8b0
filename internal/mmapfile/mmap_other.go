//go:build !unix

package mmapfile

import (
	"fmt"
	"io"
	"os"
)

// Open falls back to a full read on platforms without mmap(2), mirroring
// entreya-csvquery's mmap_windows.go ("Fallback to ReadAll on Windows for
// now to avoid unsafe pointer arithmetic complexity without external lib").
func Open(path string) (data []byte, close func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("mmapfile: read %s: %w", path, err)
	}
	return data, func() error { return nil }, nil
}
