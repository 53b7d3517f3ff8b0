// Package numparse implements the byte-level number recognizers described
// in the design: a single tokeniser walk classifies a field as INT64,
// DOUBLE or STRING, and (once a column's final type is known) extracts its
// value with bit-exact numeric semantics. Grounded in the tokenisation
// grammar of the original camog C extension (see
// _examples/original_source/generator/parser.py, which emits this same
// grammar as unrolled branching code) and in the hand-written field state
// machine of nnnkkk7-go-simdcsv/field_parser.go, reworked here as a single
// portable Go state walk instead of generated per-quote-mode label blocks.
package numparse

import "github.com/vectorcsv/vectorcsv/internal/coltype"

// Kind is the outcome of tokenising one field.
type Kind uint8

const (
	KindInvalid Kind = iota // falls back to STRING
	KindInt
	KindFloat
	KindNaN
)

// Token is the result of one grammar walk over a field's bytes. Both the
// inference stage (which only needs Kind) and the extraction stage (which
// also needs the digit runs to compute a value) are served by the same
// Scan call, so the grammar is implemented exactly once.
type Token struct {
	Kind Kind

	Negative bool

	// Integer accumulation. IntValue is valid (no overflow) when Overflowed
	// is false; once overflow occurs, accumulation continues into the
	// fractional/exponent path below so a correct DOUBLE can still be
	// produced from the full digit run.
	IntValue   int64
	Overflowed bool

	// Decimal accumulation, used for KindFloat and for KindInt that
	// overflowed. Mantissa holds up to 19 significant decimal digits
	// (clamped past that — additional digits only shift Exp10, matching
	// the precision a float64 can represent anyway); Exp10 is the power of
	// ten by which Mantissa must be multiplied (explicit exponent, minus
	// the count of fractional digits consumed).
	Mantissa    uint64
	MantissaOK  bool // at least one significant digit was seen
	Exp10       int
	ExtraDigits int // significant digits dropped once Mantissa saturated
}

// Kind returned for a successful classification. ToType maps a Token to the
// column type it would force.
func (t Token) ToType() coltype.Type {
	switch t.Kind {
	case KindInt:
		if t.Overflowed {
			return coltype.Double
		}
		return coltype.Int64
	case KindFloat, KindNaN:
		return coltype.Double
	default:
		return coltype.String
	}
}

const maxMantissaDigits = 19 // 10^19 > 2^63, keeps Mantissa*10 from overflowing uint64 headroom

// Scan walks field according to the grammar:
//
//  1. leading spaces (0x20 only)
//  2. optional sign
//  3. digits [ '.' digits* ] | '.' digits+ | case-insensitive "nan"
//  4. optional exponent: [eE] [sign] digits+
//  5. trailing spaces
//  6. nothing else may remain
//
// Any deviation yields KindInvalid (the caller demotes the column to
// STRING). The sign is applied per-digit as IntValue accumulates (see
// accumulate), so INT64_MIN remains representable.
//
// A field that is empty or made up of nothing but spaces is a special
// case outside that grammar: it parses as integer zero rather than as
// KindInvalid, matching the reference parser's "blank field is zero" rule.
func Scan(field []byte) Token {
	i, n := 0, len(field)

	for i < n && field[i] == ' ' {
		i++
	}

	// A field that is empty or made entirely of spaces parses as integer
	// zero rather than forcing the column to STRING.
	if i == n {
		return Token{Kind: KindInt}
	}

	var tok Token

	if i < n && (field[i] == '+' || field[i] == '-') {
		tok.Negative = field[i] == '-'
		i++
	}

	if rest := field[i:]; len(rest) >= 3 && isNaNLiteral(rest[:3]) {
		i += 3
		tok.Kind = KindNaN
		return finishTrailing(field, i, tok)
	}

	sawIntDigit := false
	for i < n && isDigit(field[i]) {
		tok.accumulate(field[i] - '0')
		sawIntDigit = true
		i++
	}

	sawDot := false
	sawFracDigit := false
	if i < n && field[i] == '.' {
		sawDot = true
		i++
		for i < n && isDigit(field[i]) {
			tok.accumulateFrac(field[i] - '0')
			sawFracDigit = true
			i++
		}
	}

	if !sawIntDigit && !sawFracDigit {
		return Token{Kind: KindInvalid}
	}
	if sawDot && !sawIntDigit && !sawFracDigit {
		return Token{Kind: KindInvalid}
	}

	if i < n && (field[i] == 'e' || field[i] == 'E') {
		expStart := i
		i++
		expNeg := false
		if i < n && (field[i] == '+' || field[i] == '-') {
			expNeg = field[i] == '-'
			i++
		}
		expDigitsStart := i
		expVal := 0
		expDigitCount := 0
		for i < n && isDigit(field[i]) {
			expDigitCount++
			if expDigitCount <= 15 {
				expVal = expVal*10 + int(field[i]-'0')
			}
			i++
		}
		if i == expDigitsStart {
			// bare 'e' with no digits: not a valid exponent marker at all
			i = expStart
		} else {
			if expDigitCount > 15 {
				// Exponent magnitude is astronomically larger than any
				// finite float64 range; saturate rather than risk
				// overflowing the int accumulator above.
				expVal = 1 << 30
			}
			if expNeg {
				expVal = -expVal
			}
			tok.Exp10 += expVal
			sawDot = true // force DOUBLE classification below
		}
	}

	if !sawDot && !tok.Overflowed {
		tok.Kind = KindInt
	} else {
		tok.Kind = KindFloat
	}

	return finishTrailing(field, i, tok)
}

func finishTrailing(field []byte, i int, tok Token) Token {
	n := len(field)
	for i < n && field[i] == ' ' {
		i++
	}
	if i != n {
		return Token{Kind: KindInvalid}
	}
	return tok
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNaNLiteral(b []byte) bool {
	return (b[0] == 'n' || b[0] == 'N') &&
		(b[1] == 'a' || b[1] == 'A') &&
		(b[2] == 'n' || b[2] == 'N')
}

// accumulate folds one integer-part digit into both the int64 accumulator
// (sign applied per-digit so MinInt64 round-trips) and the decimal mantissa
// used if the column turns out to be, or the value overflows to, DOUBLE.
func (t *Token) accumulate(digit byte) {
	d := int64(digit)
	if !t.Overflowed {
		var next int64
		if t.Negative {
			next = t.IntValue*10 - d
		} else {
			next = t.IntValue*10 + d
		}
		if overflowsInt64(t.IntValue, d, t.Negative, next) {
			t.Overflowed = true
		} else {
			t.IntValue = next
		}
	}
	t.accumulateMantissaDigit(digit)
}

// accumulateFrac folds a fractional digit into the decimal mantissa only;
// each fractional digit also shifts Exp10 down by one so that
// Mantissa * 10^Exp10 still reconstructs the original value.
func (t *Token) accumulateFrac(digit byte) {
	t.accumulateMantissaDigit(digit)
	t.Exp10--
}

func (t *Token) accumulateMantissaDigit(digit byte) {
	t.MantissaOK = true
	if mantissaDigits(t.Mantissa) >= maxMantissaDigits {
		t.ExtraDigits++
		t.Exp10++
		return
	}
	t.Mantissa = t.Mantissa*10 + uint64(digit)
}

func mantissaDigits(m uint64) int {
	if m == 0 {
		return 0
	}
	n := 0
	for m > 0 {
		n++
		m /= 10
	}
	return n
}

// overflowsInt64 reports whether accumulating digit into prev (with the
// given sign already applied per-digit) produced a value inconsistent with
// true base-10 accumulation, i.e. overflow occurred.
func overflowsInt64(prev, digit int64, negative bool, next int64) bool {
	const maxDiv10 = 922337203685477580 // math.MaxInt64 / 10
	if negative {
		if prev < -maxDiv10 {
			return true
		}
		if prev == -maxDiv10 && digit > 8 {
			return true
		}
		return false
	}
	if prev > maxDiv10 {
		return true
	}
	if prev == maxDiv10 && digit > 7 {
		return true
	}
	return false
}
