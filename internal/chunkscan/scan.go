package chunkscan

import (
	"github.com/vectorcsv/vectorcsv/internal/coltype"
	"github.com/vectorcsv/vectorcsv/internal/numparse"
)

// Stage selects which of the two scanner passes described in the design
// (inference vs extraction) a Scan call performs.
type Stage uint8

const (
	// StageInfer classifies every field and joins column types up the
	// lattice, but never materialises a value.
	StageInfer Stage = iota
	// StageExtract writes packed values, given each column's already-final
	// type (the product of a prior StageInfer pass over every chunk plus
	// coordinator-side reconciliation).
	StageExtract
)

// Missing carries the caller-supplied substitution values for cells that
// don't exist because their row was shorter than the final column count.
type Missing struct {
	Int   int64
	Float float64
}

// boundary marks one confirmed (non-quoted) record terminator: TermStart is
// where the terminator sequence begins, RecStart is the offset of the
// record that follows it.
type boundary struct {
	TermStart, RecStart int
}

// recordEnds walks data tracking only enough state to tell whether a "\n"
// (or, in Excel mode, a "\r") falls inside an open quoted field. It never
// materialises field content — that's splitRecord's job — so it stays
// cheap enough to run once per chunk even though splitRecord re-walks the
// body afterwards.
func recordEnds(data []byte, sep byte, mode QuoteMode, startsInQuote bool) (bounds []boundary, endsInQuote bool) {
	if fast, ok := simdRecordEnds(data, sep, mode, startsInQuote); ok {
		return fast, false
	}

	n := len(data)
	i := 0
	inQuote := startsInQuote
	atFieldStart := !startsInQuote

	for i < n {
		if atFieldStart && !inQuote {
			j := i
			for j < n && data[j] == ' ' {
				j++
			}
			if j < n && data[j] == '"' {
				inQuote = true
				i = j + 1
				atFieldStart = false
				continue
			}
		}
		atFieldStart = false

		if inQuote {
			if data[i] == '"' {
				if i+1 < n && data[i+1] == '"' {
					i += 2
					continue
				}
				inQuote = false
				i++
			} else {
				i++
			}
			continue
		}

		b := data[i]
		switch {
		case b == sep:
			i++
			atFieldStart = true
		case b == '\n':
			i++
			bounds = append(bounds, boundary{TermStart: termStartBefore(data, i), RecStart: i})
			atFieldStart = true
		case b == '\r':
			if i+1 < n && data[i+1] == '\n' {
				termStart := i
				i += 2
				bounds = append(bounds, boundary{TermStart: termStart, RecStart: i})
				atFieldStart = true
			} else if mode == Excel {
				termStart := i
				i++
				bounds = append(bounds, boundary{TermStart: termStart, RecStart: i})
				atFieldStart = true
			} else {
				i++
			}
		default:
			i++
		}
	}
	return bounds, inQuote
}

// termStartBefore computes where a "\n" terminator (at position i-1,
// already consumed) begins, accounting for a preceding "\r" that belongs
// to the same terminator.
func termStartBefore(data []byte, i int) int {
	nl := i - 1
	if nl > 0 && data[nl-1] == '\r' {
		return nl - 1
	}
	return nl
}

// Field is one cell produced by splitRecord. Raw is either a zero-copy
// slice of the source record or an arena-materialised copy (only needed
// when the field contains an escaped quote, Excel-mode dropped "\r", or
// trailing content glued to a closing quote per the design's "ambiguous
// source behaviour" note).
type Field struct {
	Raw []byte
}

// splitRecord divides one complete record (no terminator, quoting already
// known to be balanced — or, for the last record of the whole input,
// tolerantly treated as closed at end-of-slice) into fields. A zero-length
// record yields zero fields, matching the design's distinction between an
// empty line (no fields at all, later padded to the row width) and a
// record like "," (two empty-content fields).
func splitRecord(record []byte, sep byte, mode QuoteMode, arena *Arena) []Field {
	if len(record) == 0 {
		return nil
	}

	var fields []Field
	n := len(record)
	i := 0
	for {
		start := i
		j := i
		for j < n && record[j] == ' ' {
			j++
		}
		if j < n && record[j] == '"' {
			contentStart := j + 1
			k := contentStart
			hasEscape := false
			for k < n {
				if record[k] == '"' {
					if k+1 < n && record[k+1] == '"' {
						hasEscape = true
						k += 2
						continue
					}
					break
				}
				if mode == Excel && record[k] == '\r' {
					hasEscape = true
				}
				k++
			}
			contentEnd := k
			afterClose := k
			if afterClose < n {
				afterClose++
			}
			g := afterClose
			for g < n && record[g] != sep {
				g++
			}
			hasGarbage := g > afterClose

			var raw []byte
			if hasEscape || hasGarbage {
				raw = materializeQuoted(arena, record[contentStart:contentEnd], mode, record[afterClose:g])
			} else {
				raw = record[contentStart:contentEnd]
			}
			fields = append(fields, Field{Raw: raw})
			i = g
			if i < n && record[i] == sep {
				i++
				continue
			}
			break
		}

		fieldEnd := start
		for fieldEnd < n && record[fieldEnd] != sep {
			fieldEnd++
		}
		fields = append(fields, Field{Raw: record[start:fieldEnd]})
		i = fieldEnd
		if i < n && record[i] == sep {
			i++
			continue
		}
		break
	}
	return fields
}

// materializeQuoted builds a quoted field's logical content into arena:
// "" collapses to a literal '"', a dropped '\r' in Excel mode vanishes,
// and any content glued on after the closing quote (the permissive-mode
// "ab"cd rule from design notes) is appended verbatim.
func materializeQuoted(arena *Arena, inner []byte, mode QuoteMode, garbage []byte) []byte {
	buf := arena.Alloc(len(inner) + len(garbage))
	n := 0
	i := 0
	for i < len(inner) {
		b := inner[i]
		if b == '"' && i+1 < len(inner) && inner[i+1] == '"' {
			buf[n] = '"'
			n++
			i += 2
			continue
		}
		if mode == Excel && b == '\r' {
			i++
			continue
		}
		buf[n] = b
		n++
		i++
	}
	copy(buf[n:], garbage)
	n += len(garbage)
	return buf[:n]
}

// FirstRecordEnd locates the end of data's first record without scanning
// past it, so the coordinator can peel off a header row before dividing
// the remaining bytes into per-worker chunks. ok is false if data contains
// no terminator at all (the whole buffer is one record).
func FirstRecordEnd(data []byte, sep byte, mode QuoteMode) (termStart, recStart int, ok bool) {
	n := len(data)
	i := 0
	inQuote := false
	atFieldStart := true

	for i < n {
		if atFieldStart && !inQuote {
			j := i
			for j < n && data[j] == ' ' {
				j++
			}
			if j < n && data[j] == '"' {
				inQuote = true
				i = j + 1
				atFieldStart = false
				continue
			}
		}
		atFieldStart = false

		if inQuote {
			if data[i] == '"' {
				if i+1 < n && data[i+1] == '"' {
					i += 2
					continue
				}
				inQuote = false
				i++
			} else {
				i++
			}
			continue
		}

		b := data[i]
		switch {
		case b == sep:
			i++
			atFieldStart = true
		case b == '\n':
			i++
			return termStartBefore(data, i), i, true
		case b == '\r':
			if i+1 < n && data[i+1] == '\n' {
				ts := i
				i += 2
				return ts, i, true
			} else if mode == Excel {
				ts := i
				i++
				return ts, i, true
			}
			i++
		default:
			i++
		}
	}
	return 0, 0, false
}

// Overrides maps a column index to a type that suppresses inference for
// that column.
type Overrides map[int]coltype.Type

// SplitFields divides one complete record into its raw field byte slices,
// honouring quoting the same way the scanner's row-handling passes do.
// Exposed for the coordinator's header-row handling, which needs fields
// before any column has been typed.
func SplitFields(record []byte, sep byte, mode QuoteMode, arena *Arena) [][]byte {
	fields := splitRecord(record, sep, mode, arena)
	out := make([][]byte, len(fields))
	for i, f := range fields {
		out[i] = f.Raw
	}
	return out
}

// Scan performs one full pass over data, producing the chunk record
// described in the data model: a leading and trailing partial deferred to
// the coordinator's boundary reconciler, and, for the body records fully
// contained in this chunk, either inferred column types (StageInfer) or
// packed values (StageExtract).
func Scan(data []byte, sep byte, mode QuoteMode, startsInQuote bool, stage Stage, finalTypes []coltype.Type, overrides Overrides, missing Missing) *Result {
	bounds, endsInQuote := recordEnds(data, sep, mode, startsInQuote)

	res := &Result{
		EndOffset:     len(data),
		StartsInQuote: startsInQuote,
		EndsInQuote:   endsInQuote,
		Scratch:       &Arena{},
	}

	if stage == StageExtract {
		// Allocated unconditionally, even when this chunk turns out to
		// have zero body rows (len(bounds)==0 below): the coordinator's
		// merge concatenates every chunk's Columns at the same
		// len(finalTypes) width regardless of row count.
		res.Columns = make([]Column, len(finalTypes))
		for i, t := range finalTypes {
			res.Columns[i].Type = t
		}
	}

	if len(bounds) == 0 {
		res.LeadingPartial = data
		return res
	}

	res.LeadingPartial = data[:bounds[0].TermStart]
	res.TrailingPartial = data[bounds[len(bounds)-1].RecStart:]

	for idx := 1; idx < len(bounds); idx++ {
		record := data[bounds[idx-1].RecStart:bounds[idx].TermStart]
		fields := splitRecord(record, sep, mode, res.Scratch)
		if len(fields) > res.MaxCols {
			res.MaxCols = len(fields)
		}

		switch stage {
		case StageInfer:
			scanInferRow(res, fields, overrides)
		case StageExtract:
			scanExtractRow(res, fields, finalTypes, missing)
		}
		res.RowCount++
		if res.TypeConflict {
			return res
		}
	}

	return res
}

func ensureInferColumn(res *Result, col int) {
	for len(res.ColumnTypes) <= col {
		res.ColumnTypes = append(res.ColumnTypes, coltype.Unknown)
	}
}

func scanInferRow(res *Result, fields []Field, overrides Overrides) {
	for col, f := range fields {
		ensureInferColumn(res, col)

		if forced, ok := overrides[col]; ok {
			switch forced {
			case coltype.String:
				res.ColumnTypes[col] = coltype.String
			case coltype.Int64:
				tok := numparse.Scan(f.Raw)
				if tok.ToType() == coltype.Double {
					res.TypeConflict = true
					res.ConflictCol = col
					return
				}
				res.ColumnTypes[col] = coltype.Int64
			case coltype.Double:
				res.ColumnTypes[col] = coltype.Double
			}
			continue
		}

		tok := numparse.Scan(f.Raw)
		res.ColumnTypes[col] = coltype.Join(res.ColumnTypes[col], tok.ToType())
	}
}

func scanExtractRow(res *Result, fields []Field, finalTypes []coltype.Type, missing Missing) {
	for col := range finalTypes {
		var raw []byte
		present := col < len(fields)
		if present {
			raw = fields[col].Raw
		}

		t := finalTypes[col]
		c := &res.Columns[col]
		switch t {
		case coltype.Int64:
			if present {
				if v, ok := numparse.ParseInt64Field(raw); ok {
					c.Ints = append(c.Ints, v)
					continue
				}
			}
			c.Ints = append(c.Ints, missing.Int)
		case coltype.Double:
			if present {
				if v, ok := numparse.ParseDoubleField(raw); ok {
					c.Floats = append(c.Floats, v)
					continue
				}
			}
			c.Floats = append(c.Floats, missing.Float)
		default:
			if present {
				c.Strings = append(c.Strings, raw)
			} else {
				c.Strings = append(c.Strings, []byte{})
			}
		}
	}
}

// ParseSeamRecord parses the single record formed by concatenating the
// trailing partial of one chunk with the leading partial of the next (or,
// at the very ends of the input, an empty neighbour). It is the boundary
// reconciler's primary per-row operation.
func ParseSeamRecord(record []byte, sep byte, mode QuoteMode, stage Stage, finalTypes []coltype.Type, overrides Overrides, missing Missing, arena *Arena) (fields []Field, colTypes []coltype.Type, conflictCol int, conflict bool, columns []Column) {
	fields = splitRecord(record, sep, mode, arena)

	switch stage {
	case StageInfer:
		tmp := &Result{}
		scanInferRow(tmp, fields, overrides)
		return fields, tmp.ColumnTypes, tmp.ConflictCol, tmp.TypeConflict, nil
	default:
		tmp := &Result{Columns: make([]Column, len(finalTypes))}
		for i, t := range finalTypes {
			tmp.Columns[i].Type = t
		}
		scanExtractRow(tmp, fields, finalTypes, missing)
		return fields, nil, 0, false, tmp.Columns
	}
}
