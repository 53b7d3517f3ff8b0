//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func init() {
	wideWords = cpu.X86.HasAVX2
}

// HasWideWords reports whether the four-word-per-iteration scan path is
// active on this CPU. Exposed for the benchmark driver's stats output.
func HasWideWords() bool {
	return wideWords
}
