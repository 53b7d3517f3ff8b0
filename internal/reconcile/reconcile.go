// Package reconcile implements chunk-boundary reconciliation: it
// propagates each chunk's "ends in quote" outcome into its right-hand
// neighbour's "starts in quote" hypothesis, triggers a rescan when a
// neighbour guessed wrong, and turns each chunk seam into the one record
// that may straddle it. Promoted out of the scanner into its own package,
// mirroring how entreya-csvquery's findSafeRecordBoundary is an
// independently testable step rather than inlined into Scanner.Scan.
package reconcile

import "github.com/vectorcsv/vectorcsv/internal/chunkscan"

// Rescan is called by Propagate when a chunk's StartsInQuote hypothesis
// didn't match what the previous chunk actually ended with; it must return
// a freshly scanned Result for the same byte range with the corrected
// hypothesis.
type Rescan func(chunkIndex int, startsInQuote bool) *chunkscan.Result

// Propagate walks results left to right, correcting each chunk's
// StartsInQuote hypothesis from its predecessor's EndsInQuote and
// rescanning via rescan when a correction was needed. Chunk 0 always
// starts outside quotes, so results[0] is never rescanned here;
// the caller must have already scanned it with startsInQuote=false.
func Propagate(results []*chunkscan.Result, rescan Rescan) {
	for i := 1; i < len(results); i++ {
		want := results[i-1].EndsInQuote
		if results[i].StartsInQuote == want {
			continue
		}
		results[i] = rescan(i, want)
	}
}

// Seam is the record, if any, formed by gluing the trailing partial of one
// chunk to the leading partial of the next. A seam's index in the slice
// BuildSeams returns gives its position in row order: seam i sits between
// chunk i-1's body rows and chunk i's body rows, for i in [0, len(chunks)].
// Seam 0 has no left neighbour and the last seam has no right neighbour.
type Seam struct {
	Record []byte
	// Suppressed marks a seam that produces no row: the final seam when
	// its content is empty (a trailing empty line at end-of-buffer), and
	// the seam before any chunk that contains no record terminator, whose
	// bytes are carried on into the following seam instead.
	Suppressed bool
}

// BuildSeams derives the len(results)+1 seams from a (possibly rescanned)
// set of chunk results. Every seam that is not suppressed yields a row,
// even an empty one (a blank line mid-file still produces a row). A record
// that runs through one or more chunks without a terminator ends up whole
// in a single seam.
func BuildSeams(results []*chunkscan.Result) []Seam {
	seams := make([]Seam, len(results)+1)
	seams[0] = Seam{Record: append([]byte(nil), results[0].LeadingPartial...)}
	for i := 1; i < len(results); i++ {
		left := results[i-1].TrailingPartial
		if prev := results[i-1]; len(prev.LeadingPartial) == prev.EndOffset-prev.StartOffset {
			// The previous chunk holds no terminator: the record open in
			// its seam runs on through it into this one.
			left = seams[i-1].Record
			seams[i-1] = Seam{Suppressed: true}
		}
		right := results[i].LeadingPartial
		rec := make([]byte, 0, len(left)+len(right))
		rec = append(rec, left...)
		rec = append(rec, right...)
		seams[i] = Seam{Record: rec}
	}
	lastRes := results[len(results)-1]
	last := lastRes.TrailingPartial
	if len(lastRes.LeadingPartial) == lastRes.EndOffset-lastRes.StartOffset {
		last = seams[len(results)-1].Record
		seams[len(results)-1] = Seam{Suppressed: true}
	}
	seams[len(results)] = Seam{Record: append([]byte(nil), last...), Suppressed: len(last) == 0}
	return seams
}
