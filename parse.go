// Package vectorcsv is a parallel CSV reader that ingests a byte buffer or
// memory-mapped file and emits an optional header row plus a set of typed
// columnar arrays (INT64, DOUBLE or STRING). See Options and ParseBytes.
package vectorcsv

import (
	"github.com/vectorcsv/vectorcsv/internal/chunkscan"
	"github.com/vectorcsv/vectorcsv/internal/coltype"
	"github.com/vectorcsv/vectorcsv/internal/colstore"
	"github.com/vectorcsv/vectorcsv/internal/mmapfile"
	"github.com/vectorcsv/vectorcsv/internal/reconcile"
	"github.com/vectorcsv/vectorcsv/internal/simd"
	"github.com/vectorcsv/vectorcsv/internal/taskqueue"
)

type quoteMode = chunkscan.QuoteMode

const (
	permissiveMode = chunkscan.Permissive
	excelMode      = chunkscan.Excel
)

type byteRange struct{ start, end int }

// ParseBytes is the coordinator's public entry point: it splits
// buffer into chunks, scans them in parallel, reconciles quoting across
// chunk boundaries, merges the result into contiguous columns, and applies
// caller overrides and substitutions. buffer is never copied by the
// coordinator itself; see Options.BorrowInput for what that means for the
// result's STRING columns.
func ParseBytes(buffer []byte, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	mode := opts.quoteMode()
	sep := opts.Separator

	data := buffer
	var headers [][]byte
	if opts.NHeaderRows == 1 && len(data) > 0 {
		termStart, recStart, ok := chunkscan.FirstRecordEnd(data, sep, mode)
		var headerRecord []byte
		if ok {
			headerRecord = data[:termStart]
			data = data[recStart:]
		} else {
			headerRecord = data
			data = data[len(data):]
		}
		arena := &chunkscan.Arena{}
		headers = chunkscan.SplitFields(headerRecord, sep, mode, arena)
		if !opts.BorrowInput {
			headers = copyFields(headers)
		}
	}

	overrides, err := resolveOverrides(opts.ColumnTypeOverride, headers)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return &Result{Headers: headers, Columns: nil, Rows: 0, Stats: Stats{BytesScanned: len(buffer), WideSIMD: simd.HasWideWords()}}, nil
	}

	ranges := splitRanges(len(data), chunkCount(len(data), opts.nThreads()))
	missing := chunkscan.Missing{Int: opts.MissingInt, Float: opts.MissingFloat}

	results := make([]*chunkscan.Result, len(ranges))
	inferJobs := make([]taskqueue.Job, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		inferJobs[i] = func() {
			results[i] = chunkscan.Scan(data[r.start:r.end], sep, mode, false, chunkscan.StageInfer, nil, overrides, missing)
		}
	}
	taskqueue.Run(opts.nThreads(), inferJobs)

	rescan := func(idx int, startsInQuote bool) *chunkscan.Result {
		r := ranges[idx]
		return chunkscan.Scan(data[r.start:r.end], sep, mode, startsInQuote, chunkscan.StageInfer, nil, overrides, missing)
	}
	reconcile.Propagate(results, rescan)

	if e := conflictError(results, headers); e != nil {
		return nil, e
	}

	arenas := make([]*chunkscan.Arena, len(ranges)+1)
	for i := range arenas {
		arenas[i] = &chunkscan.Arena{}
	}
	seams := reconcile.BuildSeams(results)
	seamInfer := make([]struct {
		colTypes []coltype.Type
		conflict bool
		col      int
	}, len(seams))
	for i, seam := range seams {
		if seam.Suppressed {
			continue
		}
		_, colTypes, conflictCol, conflict, _ := chunkscan.ParseSeamRecord(seam.Record, sep, mode, chunkscan.StageInfer, nil, overrides, missing, arenas[i])
		seamInfer[i].colTypes = colTypes
		seamInfer[i].conflict = conflict
		seamInfer[i].col = conflictCol
	}
	for _, s := range seamInfer {
		if s.conflict {
			return nil, overrideConflictErr(s.col, headers)
		}
	}

	colCount := 0
	perSource := make([][]coltype.Type, 0, 2*len(results)+1)
	for _, r := range results {
		if r.MaxCols > colCount {
			colCount = r.MaxCols
		}
		perSource = append(perSource, r.ColumnTypes)
	}
	for _, s := range seamInfer {
		if len(s.colTypes) > colCount {
			colCount = len(s.colTypes)
		}
		perSource = append(perSource, s.colTypes)
	}

	if colCount == 0 && len(headers) > 0 {
		// A header row was parsed but every data record was empty: keep
		// the header-declared width instead of collapsing to one column.
		colCount = len(headers)
	}

	if colCount == 0 {
		// A file consisting only of whitespace/newlines (every record
		// empty) produces a single empty column with zero rows, not a
		// zero-column result nor a row per blank line.
		return &Result{
			Headers: headers,
			Columns: []Column{{Type: String, Strings: [][]byte{}}},
			Rows:    0,
			Stats:   Stats{BytesScanned: len(buffer), Chunks: len(ranges), WideSIMD: simd.HasWideWords()},
		}, nil
	}

	finalTypes, conflictCol, ok := colstore.JoinTypes(perSource, overrides, colCount)
	if !ok {
		return nil, overrideConflictErr(conflictCol, headers)
	}

	extractJobs := make([]taskqueue.Job, len(ranges))
	for i, r := range ranges {
		i, r := i, r
		extractJobs[i] = func() {
			results[i] = chunkscan.Scan(data[r.start:r.end], sep, mode, results[i].StartsInQuote, chunkscan.StageExtract, finalTypes, overrides, missing)
		}
	}
	taskqueue.Run(opts.nThreads(), extractJobs)

	parts := make([]colstore.Part, 0, 2*len(results)+1)
	totalRows := 0
	for i := range seams {
		if seams[i].Suppressed {
			continue
		}
		_, _, _, _, cols := chunkscan.ParseSeamRecord(seams[i].Record, sep, mode, chunkscan.StageExtract, finalTypes, overrides, missing, arenas[i])
		parts = append(parts, toPart(cols))
		totalRows++
		if i < len(results) {
			parts = append(parts, toPart(results[i].Columns))
			totalRows += results[i].RowCount
		}
	}

	merged := colstore.Merge(parts, finalTypes, totalRows)
	if !opts.BorrowInput {
		colstore.CopyStrings(merged)
	}

	rows := 0
	if len(merged) > 0 {
		rows = merged[0].Len()
	}

	return &Result{
		Headers: headers,
		Columns: columnsFromStore(merged),
		Rows:    rows,
		Stats: Stats{
			BytesScanned: len(buffer),
			RowsScanned:  rows,
			Chunks:       len(ranges),
			WideSIMD:     simd.HasWideWords(),
		},
	}, nil
}

// ParseFile memory-maps path and parses the mapped bytes exactly as
// ParseBytes would. When Options.BorrowInput is false (the default), the
// mapping is released before ParseFile returns because every STRING value
// has already been copied into owned storage; when true, the mapping is
// kept alive and released by Result.Close.
func ParseFile(path string, opts Options) (*Result, error) {
	data, unmap, err := mmapfile.Open(path)
	if err != nil {
		return nil, ioErrf("%w", err)
	}

	res, perr := ParseBytes(data, opts)
	if perr != nil {
		_ = unmap()
		return nil, perr
	}

	if opts.BorrowInput {
		res.unmap = unmap
	} else {
		if err := unmap(); err != nil {
			return nil, ioErrf("%w", err)
		}
	}
	return res, nil
}

func toPart(cols []chunkscan.Column) colstore.Part {
	p := colstore.Part{Columns: make([]colstore.ColumnSource, len(cols))}
	for i, c := range cols {
		p.Columns[i] = colstore.ColumnSource{Ints: c.Ints, Floats: c.Floats, Strings: c.Strings}
	}
	return p
}

func conflictError(results []*chunkscan.Result, headers [][]byte) *Error {
	for _, r := range results {
		if r.TypeConflict {
			return overrideConflictErr(r.ConflictCol, headers)
		}
	}
	return nil
}

func overrideConflictErr(col int, headers [][]byte) *Error {
	e := &Error{Kind: TypeOverrideConflict, Column: col}
	if col >= 0 && col < len(headers) {
		e.Header = string(headers[col])
	}
	return e
}

// chunkCount is the worker pool's fan-out width: the single-threaded fast
// path (nthreads==1) collapses to one chunk, and otherwise the buffer is
// split into exactly nthreads pieces, capped so no chunk is empty.
func chunkCount(n, threads int) int {
	if threads <= 1 || n == 0 {
		return 1
	}
	if n < threads {
		return n
	}
	return threads
}

func splitRanges(n, count int) []byteRange {
	ranges := make([]byteRange, count)
	for i := range ranges {
		ranges[i] = byteRange{start: i * n / count, end: (i + 1) * n / count}
	}
	return ranges
}

func copyFields(fields [][]byte) [][]byte {
	out := make([][]byte, len(fields))
	for i, f := range fields {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// resolveOverrides maps Options.ColumnTypeOverride's int-or-string keys to
// column indices. String keys require headers to have been parsed: they
// match against the header row by name.
func resolveOverrides(raw map[any]ColumnType, headers [][]byte) (chunkscan.Overrides, *Error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(chunkscan.Overrides, len(raw))
	for key, t := range raw {
		switch k := key.(type) {
		case int:
			out[k] = t
		case string:
			idx := headerIndex(headers, k)
			if idx < 0 {
				return nil, invalidArgf("column type override key %q does not match any header", k)
			}
			out[idx] = t
		default:
			return nil, invalidArgf("column type override key must be int or string, got %T", key)
		}
	}
	return out, nil
}

func headerIndex(headers [][]byte, name string) int {
	for i, h := range headers {
		if string(h) == name {
			return i
		}
	}
	return -1
}
