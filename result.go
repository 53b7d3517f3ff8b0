package vectorcsv

import "github.com/vectorcsv/vectorcsv/internal/colstore"

// Column is one result column. Only the slice matching Type holds data;
// the other two are nil.
type Column struct {
	Type    ColumnType
	Ints    []int64
	Floats  []float64
	Strings [][]byte
}

// Len returns the column's row count, equal to every other column's.
func (c Column) Len() int {
	switch c.Type {
	case Int64:
		return len(c.Ints)
	case Double:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// Result is what ParseBytes/ParseFile return on success: an optional
// header row plus one equal-length typed column per field position.
type Result struct {
	// Headers is nil when Options.NHeaderRows == 0, otherwise one
	// byte-string per column, preserving any non-UTF-8 bytes verbatim.
	Headers [][]byte
	Columns []Column

	// Rows is the shared row count of every column.
	Rows int

	// Stats is filled in on every call; it gives cmd/vectorcsvbench
	// something to report beyond wall-clock time, grounded in
	// entreya-csvquery's Scanner.GetStats/ScanProgress.
	Stats Stats

	unmap func() error
}

// Stats reports how a parse was executed, for benchmarking and
// diagnostics only.
type Stats struct {
	BytesScanned int
	RowsScanned  int
	Chunks       int
	// WideSIMD reports whether internal/simd's AVX2-width structural scan
	// was available on this CPU, as a runtime CPU-feature dispatch.
	WideSIMD bool
}

// Close releases resources the result may be borrowing, in particular a
// memory-mapped file when the parse was produced by ParseFile with
// Options.BorrowInput set. It is always safe to call, including on a
// Result for which it is a no-op.
func (r *Result) Close() error {
	if r.unmap == nil {
		return nil
	}
	err := r.unmap()
	r.unmap = nil
	return err
}

func columnsFromStore(cols []colstore.Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Type: c.Type, Ints: c.Ints, Floats: c.Floats, Strings: c.Strings}
	}
	return out
}
