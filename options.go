package vectorcsv

import "github.com/vectorcsv/vectorcsv/internal/coltype"

// Flag is a bitmask of parse options. Only EXCEL_QUOTES is defined;
// every other bit is reserved and must be zero (enforced by ParseBytes).
type Flag uint32

const (
	// ExcelQuotes enables Excel-mode quoting/newline handling: a bare '\r'
	// inside a quoted field is dropped, and outside quotes a lone '\r'
	// terminates a record the same as "\r\n".
	ExcelQuotes Flag = 1 << 0

	allFlags = ExcelQuotes
)

// ColumnType is a column's inferred or forced storage type.
type ColumnType = coltype.Type

const (
	Int64  = coltype.Int64
	Double = coltype.Double
	String = coltype.String
)

// Options configures a parse. The zero value is almost usable: Separator
// must still be set explicitly to ',' (or any other valid byte) because
// the zero byte is not a valid separator.
type Options struct {
	// Separator is the single field-delimiter byte. It must not be '"',
	// '\n', '\r', space, '+', '-', '.', a digit, or 'e'/'E' — all of those
	// are needed to recognize numeric tokens unambiguously.
	Separator byte

	// NThreads is the worker count. 0 is treated as 1. Output is required
	// to be identical for any NThreads >= 1.
	NThreads int

	Flags Flag

	// NHeaderRows is 0 or 1. When 1, the first record becomes Result.Headers
	// and is excluded from the data columns.
	NHeaderRows int

	// MissingInt and MissingFloat substitute for INT64/DOUBLE cells that
	// don't exist because their row was shorter than the final column
	// count, including rows created by ragged data and all-blank lines.
	// Callers commonly pass NaN for MissingFloat.
	MissingInt   int64
	MissingFloat float64

	// ColumnTypeOverride forces specific columns to a type, suppressing
	// inference for them. Keys are either an int column index or a string
	// header name; header names are only honoured when NHeaderRows == 1.
	// A column already at the top of the lattice (STRING) simply takes
	// data as raw bytes; a column forced to INT64 that encounters data
	// requiring DOUBLE fails the whole parse with a TypeOverrideConflict
	// error; unparseable tokens in a forced DOUBLE column become
	// MissingFloat instead of erroring, a hook for NaN-as-missing
	// workflows.
	ColumnTypeOverride map[any]ColumnType

	// BorrowInput, when true, lets STRING columns in the result reference
	// the input buffer (ParseBytes) or the memory-mapped file (ParseFile)
	// directly instead of copying their bytes into owned storage. The
	// caller must then keep that buffer alive — and, for ParseFile, call
	// Result.Close — for as long as the result is used. The default,
	// false, always copies, so the result owns every byte it exposes and
	// ParseFile may unmap the moment it returns.
	BorrowInput bool
}

func (o Options) nThreads() int {
	if o.NThreads <= 0 {
		return 1
	}
	return o.NThreads
}

func (o Options) quoteMode() quoteMode {
	if o.Flags&ExcelQuotes != 0 {
		return excelMode
	}
	return permissiveMode
}

func (o Options) validate() *Error {
	if isReservedSeparator(o.Separator) {
		return invalidArgf("separator %q is not a valid field delimiter", o.Separator)
	}
	if o.Flags&^allFlags != 0 {
		return invalidArgf("flags 0x%x set reserved bits", o.Flags)
	}
	if o.NHeaderRows != 0 && o.NHeaderRows != 1 {
		return invalidArgf("n_header_rows must be 0 or 1, got %d", o.NHeaderRows)
	}
	if o.NThreads < 0 {
		return invalidArgf("nthreads must be >= 1, got %d", o.NThreads)
	}
	return nil
}

func isReservedSeparator(b byte) bool {
	switch {
	case b == 0, b == '"', b == '\n', b == '\r', b == ' ', b == '+', b == '-', b == '.':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == 'e' || b == 'E':
		return true
	default:
		return false
	}
}
