//go:build !amd64

package simd

// HasWideWords reports whether the four-word-per-iteration scan path is
// active on this CPU. Non-amd64 platforms always use the narrow path.
func HasWideWords() bool {
	return false
}
