// Package colstore implements the coordinator's column store: it computes
// each final column's type as the lattice join of every chunk's (and
// seam's) locally inferred type, then concatenates the already-extracted
// per-chunk and per-seam columns into contiguous result columns in row
// order. The teacher has no equivalent coordinator-side merge step — its
// workers index byte offsets independently and never combine partial
// results into a single in-memory column set — so this package follows
// the coordinator's data-flow requirements directly rather than an
// existing teacher file.
package colstore

import "github.com/vectorcsv/vectorcsv/internal/coltype"

// Column is a finished, contiguous result column. Only the slice matching
// Type is populated.
type Column struct {
	Type    coltype.Type
	Ints    []int64
	Floats  []float64
	Strings [][]byte
}

func (c Column) Len() int {
	switch c.Type {
	case coltype.Int64:
		return len(c.Ints)
	case coltype.Double:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// Part is one row-ordered contiguous span of already-extracted columns —
// either a chunk's body rows or a seam's single reconciled row — that the
// final merge concatenates in order. Every Part must already be extracted
// at the same width and the same per-column types (FinalTypes), which is
// what makes the merge a plain append instead of a re-parse.
type Part struct {
	Columns []ColumnSource
}

// ColumnSource is the subset of a chunk or seam column the merge needs:
// just the values, since Type is carried once at the Part/final level.
type ColumnSource struct {
	Ints    []int64
	Floats  []float64
	Strings [][]byte
}

// JoinTypes computes the final per-column type as the lattice join over
// every chunk's and seam's locally inferred type, then clamps each column
// to its override, if any. It returns conflictCol >= 0 and ok=false if a
// column forced to INT64 saw data that required DOUBLE — the only
// data-level error the parse allows.
//
// colCount is the final column count, already known (the max field count
// observed across every chunk and seam) before this call, since inference
// is fully global before any extraction happens.
func JoinTypes(perSource [][]coltype.Type, overrides map[int]coltype.Type, colCount int) (final []coltype.Type, conflictCol int, ok bool) {
	final = make([]coltype.Type, colCount)
	for _, types := range perSource {
		for col, t := range types {
			if col >= colCount {
				continue
			}
			final[col] = coltype.Join(final[col], t)
		}
	}
	for col := range final {
		if forced, has := overrides[col]; has {
			if forced == coltype.Int64 && final[col] == coltype.Double {
				return nil, col, false
			}
			final[col] = forced
		}
	}
	return final, -1, true
}

// Merge concatenates parts, in row order, into final contiguous columns.
// Every part must carry exactly len(finalTypes) columns, already extracted
// at those types — Merge never reinterprets a value, it only appends.
func Merge(parts []Part, finalTypes []coltype.Type, totalRows int) []Column {
	out := make([]Column, len(finalTypes))
	for col, t := range finalTypes {
		out[col].Type = t
		switch t {
		case coltype.Int64:
			out[col].Ints = make([]int64, 0, totalRows)
		case coltype.Double:
			out[col].Floats = make([]float64, 0, totalRows)
		default:
			out[col].Strings = make([][]byte, 0, totalRows)
		}
	}
	for _, part := range parts {
		for col, t := range finalTypes {
			src := part.Columns[col]
			switch t {
			case coltype.Int64:
				out[col].Ints = append(out[col].Ints, src.Ints...)
			case coltype.Double:
				out[col].Floats = append(out[col].Floats, src.Floats...)
			default:
				out[col].Strings = append(out[col].Strings, src.Strings...)
			}
		}
	}
	return out
}

// CopyStrings rebases every STRING column's byte slices into a single
// owned backing buffer, so the result no longer references the input
// buffer (or a chunk's freed scratch arena) after this call returns. This
// is the "rebase into an owned buffer" half of the design notes' scratch-
// arena lifetime policy; BorrowInput opts out of it.
func CopyStrings(columns []Column) {
	for i := range columns {
		c := &columns[i]
		if c.Type != coltype.String {
			continue
		}
		total := 0
		for _, s := range c.Strings {
			total += len(s)
		}
		backing := make([]byte, 0, total)
		for j, s := range c.Strings {
			start := len(backing)
			backing = append(backing, s...)
			c.Strings[j] = backing[start : start+len(s)]
		}
	}
}
