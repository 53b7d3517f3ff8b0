package simd

import (
	"math/bits"
	"testing"
)

func TestScanBasic(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantQuotes   []int
		wantCommas   []int
		wantNewlines []int
	}{
		{
			name:         "simple CSV line",
			input:        "a,b,c\n",
			wantCommas:   []int{1, 3},
			wantNewlines: []int{5},
		},
		{
			name:         "quoted field",
			input:        `"hello",world` + "\n",
			wantQuotes:   []int{0, 6},
			wantCommas:   []int{7},
			wantNewlines: []int{13},
		},
		{
			name:         "escaped quote",
			input:        `"a""b",c` + "\n",
			wantQuotes:   []int{0, 2, 3, 5},
			wantCommas:   []int{6},
			wantNewlines: []int{8},
		},
		{
			name:         "multiple lines",
			input:        "a,b\nc,d\n",
			wantCommas:   []int{1, 5},
			wantNewlines: []int{3, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := []byte(tt.input)
			bitmapLen := (len(input) + 63) / 64
			quotes := make([]uint64, bitmapLen)
			commas := make([]uint64, bitmapLen)
			newlines := make([]uint64, bitmapLen)

			Scan(input, quotes, commas, newlines)

			if got := bitmapToPositions(quotes, len(input)); !equalIntSlices(got, tt.wantQuotes) {
				t.Errorf("quotes: got %v, want %v", got, tt.wantQuotes)
			}
			if got := bitmapToPositions(commas, len(input)); !equalIntSlices(got, tt.wantCommas) {
				t.Errorf("commas: got %v, want %v", got, tt.wantCommas)
			}
			if got := bitmapToPositions(newlines, len(input)); !equalIntSlices(got, tt.wantNewlines) {
				t.Errorf("newlines: got %v, want %v", got, tt.wantNewlines)
			}
		})
	}
}

func TestScanLargeInput(t *testing.T) {
	input := make([]byte, 256)
	for i := range input {
		switch i % 10 {
		case 3:
			input[i] = ','
		case 7:
			input[i] = '"'
		case 9:
			input[i] = '\n'
		default:
			input[i] = 'x'
		}
	}

	bitmapLen := (len(input) + 63) / 64
	quotes := make([]uint64, bitmapLen)
	commas := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	Scan(input, quotes, commas, newlines)

	for i := 0; i < len(input); i++ {
		isQuote := (quotes[i/64] & (1 << uint(i%64))) != 0
		isComma := (commas[i/64] & (1 << uint(i%64))) != 0
		isNewline := (newlines[i/64] & (1 << uint(i%64))) != 0

		if isQuote != (input[i] == '"') {
			t.Errorf("position %d: quote mismatch", i)
		}
		if isComma != (input[i] == ',') {
			t.Errorf("position %d: comma mismatch", i)
		}
		if isNewline != (input[i] == '\n') {
			t.Errorf("position %d: newline mismatch", i)
		}
	}
}

func TestScanWithSeparator(t *testing.T) {
	input := []byte("a;b;c\nd;e;f\n")
	bitmapLen := (len(input) + 63) / 64
	quotes := make([]uint64, bitmapLen)
	seps := make([]uint64, bitmapLen)
	newlines := make([]uint64, bitmapLen)

	ScanWithSeparator(input, ';', quotes, seps, newlines)

	want := []int{1, 3, 7, 9}
	if got := bitmapToPositions(seps, len(input)); !equalIntSlices(got, want) {
		t.Errorf("seps: got %v, want %v", got, want)
	}
}

// TestNarrowWideAgree checks the unrolled wide path produces the exact
// same bitmaps as the narrow path across a range of lengths, since both
// must agree regardless of which one init() selected for this CPU.
func TestNarrowWideAgree(t *testing.T) {
	input := make([]byte, 513)
	for i := range input {
		switch i % 13 {
		case 0:
			input[i] = ','
		case 5:
			input[i] = '"'
		case 11:
			input[i] = '\n'
		default:
			input[i] = byte('a' + i%26)
		}
	}

	for _, n := range []int{0, 1, 7, 8, 9, 31, 32, 33, 63, 64, 65, 513} {
		data := input[:n]
		bitmapLen := (n + 63) / 64
		if bitmapLen == 0 {
			bitmapLen = 1
		}
		qn, sn, nn := make([]uint64, bitmapLen), make([]uint64, bitmapLen), make([]uint64, bitmapLen)
		qw, sw, nw := make([]uint64, bitmapLen), make([]uint64, bitmapLen), make([]uint64, bitmapLen)

		scanNarrow(data, ',', qn, sn, nn)
		scanWide(data, ',', qw, sw, nw)

		for i := range qn {
			if qn[i] != qw[i] || sn[i] != sw[i] || nn[i] != nw[i] {
				t.Fatalf("n=%d word=%d: narrow(%x,%x,%x) wide(%x,%x,%x)", n, i, qn[i], sn[i], nn[i], qw[i], sw[i], nw[i])
			}
		}
	}
}

func bitmapToPositions(bitmap []uint64, maxLen int) []int {
	var positions []int
	for wordIdx, word := range bitmap {
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			pos := wordIdx*64 + tz
			if pos < maxLen {
				positions = append(positions, pos)
			}
			word &^= 1 << tz
		}
	}
	return positions
}

func equalIntSlices(a, b []int) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func FuzzScan(f *testing.F) {
	f.Add([]byte("a,b,c\n"))
	f.Add([]byte(`"hello",world` + "\n"))
	f.Add([]byte(`"a,b",c` + "\n"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) == 0 {
			return
		}
		bitmapLen := (len(input) + 63) / 64
		quotes := make([]uint64, bitmapLen)
		commas := make([]uint64, bitmapLen)
		newlines := make([]uint64, bitmapLen)

		Scan(input, quotes, commas, newlines)

		for i := 0; i < len(input); i++ {
			isQuote := (quotes[i/64] & (1 << uint(i%64))) != 0
			isComma := (commas[i/64] & (1 << uint(i%64))) != 0
			isNewline := (newlines[i/64] & (1 << uint(i%64))) != 0

			if isQuote != (input[i] == '"') {
				t.Errorf("quote mismatch at %d", i)
			}
			if isComma != (input[i] == ',') {
				t.Errorf("comma mismatch at %d", i)
			}
			if isNewline != (input[i] == '\n') {
				t.Errorf("newline mismatch at %d", i)
			}
		}
	})
}
