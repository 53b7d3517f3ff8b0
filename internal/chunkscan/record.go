// Package chunkscan implements the chunk scanner described in the design:
// a single-threaded walk over a byte range that tokenises records and
// fields, classifies each field's numeric type, promotes per-column types
// up the lattice, and — once a second call is made after the column types
// are globally known — extracts packed values. Grounded in the callback
// style of entreya-csvquery's Scanner.Scan/parseLineSimd (a handler invoked
// per structural event instead of building an intermediate token slice)
// and in the field-boundary bookkeeping of
// nnnkkk7-go-simdcsv/field_parser.go's parserState.
package chunkscan

import "github.com/vectorcsv/vectorcsv/internal/coltype"

// QuoteMode selects the quoting dialect a scan uses.
type QuoteMode uint8

const (
	Permissive QuoteMode = iota
	Excel
)

// Arena is a per-chunk append-only scratch buffer for field content that
// differs from its source bytes (escaped quotes). Fields that don't need
// rewriting reference the input buffer directly (zero-copy); only quoted
// fields with an embedded "", a dropped Excel-mode '\r', or content after
// the closing quote allocate here.
type Arena struct {
	buf []byte
}

// Alloc reserves n bytes at the end of the arena and returns them for the
// caller to fill. Growing the arena copies into a new buffer and never
// shrinks it, so slices handed out earlier stay valid.
func (a *Arena) Alloc(n int) []byte {
	start := len(a.buf)
	if cap(a.buf)-start < n {
		grown := make([]byte, start, growCap(cap(a.buf), start+n))
		copy(grown, a.buf)
		a.buf = grown
	}
	a.buf = a.buf[:start+n]
	return a.buf[start : start+n]
}

func growCap(have, need int) int {
	if have == 0 {
		have = 256
	}
	for have < need {
		have *= 2
	}
	return have
}

// Column is a per-chunk append-only column buffer. Only one of the three
// value slices is populated, matching Type.
type Column struct {
	Type    coltype.Type
	Ints    []int64
	Floats  []float64
	Strings [][]byte
}

func (c *Column) Len() int {
	switch c.Type {
	case coltype.Int64:
		return len(c.Ints)
	case coltype.Double:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// Result is the chunk record produced by a single Scan call (§3 "Chunk
// record"). Both the inference pass and the extraction pass return one of
// these; ColumnTypes is meaningful after inference, Columns after
// extraction.
type Result struct {
	StartOffset, EndOffset int

	RowCount int
	MaxCols  int

	ColumnTypes []coltype.Type
	Columns     []Column

	// LeadingPartial is the raw bytes of the chunk's first record, deferred
	// because it may be completed only by the previous chunk's trailing
	// partial. Empty if the chunk's data begins with a record terminator.
	// When the chunk contains no terminator at all, LeadingPartial is the
	// whole chunk and TrailingPartial is empty.
	LeadingPartial []byte
	// TrailingPartial is the raw bytes of the chunk's last, possibly
	// incomplete, record.
	TrailingPartial []byte

	StartsInQuote bool
	EndsInQuote   bool

	Scratch *Arena

	// TypeConflict is set when a forced INT64 override saw data requiring
	// DOUBLE.
	TypeConflict bool
	ConflictCol  int
}
