package chunkscan

import (
	"math/bits"

	"github.com/vectorcsv/vectorcsv/internal/simd"
)

// simdRecordEnds is the accelerated half of recordEnds: it is correct only
// for Permissive-mode data that starts outside a quoted region and
// contains no '"' byte at all, which is also exactly the common case
// (most real CSV files are mostly-unquoted, and most chunks of a large
// file contain no quote at all). Under that precondition, a '\n' is
// always a terminator and a lone '\r' is always field-interior content in
// Permissive mode, so the structural-byte bitmap from internal/simd is
// enough to build every boundary directly, without the byte-by-byte
// quote-tracking state machine recordEnds otherwise needs.
//
// ok is false when the precondition doesn't hold (a quote byte was found,
// or mode is Excel, or the chunk starts inside a quote); the caller must
// fall back to the scalar scan in that case.
func simdRecordEnds(data []byte, sep byte, mode QuoteMode, startsInQuote bool) (bounds []boundary, ok bool) {
	if mode != Permissive || startsInQuote || len(data) == 0 {
		return nil, false
	}

	words := (len(data) + 63) / 64
	quotes := make([]uint64, words)
	seps := make([]uint64, words)
	newlines := make([]uint64, words)
	simd.ScanWithSeparator(data, sep, quotes, seps, newlines)

	for _, w := range quotes {
		if w != 0 {
			return nil, false
		}
	}

	n := len(data)
	for wordIdx, w := range newlines {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			w &= w - 1
			pos := wordIdx*64 + bit
			if pos >= n {
				continue
			}
			recStart := pos + 1
			bounds = append(bounds, boundary{TermStart: termStartBefore(data, recStart), RecStart: recStart})
		}
	}
	return bounds, true
}
