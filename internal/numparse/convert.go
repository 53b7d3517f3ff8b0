package numparse

import (
	"math"
	"math/big"
)

// Float64 reconstructs the field's value as mantissa * 10^exp10, applying
// sign last. It implements the two-tier strategy from the design notes:
// a table-driven exact fast path for the common case (mantissa fits in
// 2^53, |exp10| <= 22), and a high-precision math/big fallback — playing
// the role the generated code fills with a 64x64->128 multiply against a
// tabulated 5^n and an ldexp — for everything else. Exponents far outside
// float64's range saturate to zero or infinity rather than doing
// arbitrary-precision work for an answer that's already decided.
func (t Token) Float64() float64 {
	if t.Kind == KindNaN {
		return math.NaN()
	}
	if !t.MantissaOK {
		return signedZero(t.Negative)
	}

	m, exp := t.Mantissa, t.Exp10

	if exp > 308+20 {
		return signedInf(t.Negative)
	}
	if exp < -324-20 {
		return signedZero(t.Negative)
	}

	if m <= maxExactMantissa && exp >= minExactFastExp && exp <= maxExactFastExp {
		v := float64(m)
		if exp >= 0 {
			v *= pow10[exp]
		} else {
			v /= pow10[-exp]
		}
		if t.Negative {
			v = -v
		}
		return v
	}

	return bigDecimalToFloat64(m, exp, t.Negative)
}

// bigDecimalToFloat64 is the high-precision path: m * 10^exp computed with
// enough guard bits that the final round-to-nearest float64 conversion is
// correct even when the fast path's exactness conditions don't hold.
func bigDecimalToFloat64(m uint64, exp int, negative bool) float64 {
	// 256 bits of precision comfortably covers a 19-digit mantissa times
	// any power of ten within float64's exponent range.
	const precisionBits = 256

	mantissa := new(big.Float).SetPrec(precisionBits).SetUint64(m)
	power := bigPow10(exp, precisionBits)
	mantissa.Mul(mantissa, power)

	v, _ := mantissa.Float64()
	if negative {
		v = -v
	}
	if v == 0 && negative {
		return math.Copysign(0, -1)
	}
	return v
}

// bigPow10 computes 10^exp (exp may be negative) at the given precision.
func bigPow10(exp int, prec uint) *big.Float {
	abs := exp
	neg := false
	if abs < 0 {
		abs = -abs
		neg = true
	}

	result := new(big.Float).SetPrec(prec).SetInt64(1)
	base := new(big.Float).SetPrec(prec).SetInt64(10)
	for abs > 0 {
		if abs&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		abs >>= 1
	}
	if neg {
		result.Quo(new(big.Float).SetPrec(prec).SetInt64(1), result)
	}
	return result
}

func signedZero(negative bool) float64 {
	if negative {
		return math.Copysign(0, -1)
	}
	return 0
}

func signedInf(negative bool) float64 {
	if negative {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// ParseInt64Field parses field as a whole-field INT64 literal. ok is false
// if the field isn't syntactically an integer at all (caller demotes to
// STRING), or if the digit run overflowed int64 (Scan has already folded
// that case into KindFloat — caller should demote the column to DOUBLE and
// re-derive the value via Token.Float64 instead).
func ParseInt64Field(field []byte) (value int64, ok bool) {
	tok := Scan(field)
	if tok.Kind != KindInt {
		return 0, false
	}
	return tok.IntValue, true
}

// ParseDoubleField parses field as a whole-field numeric literal (INT64,
// DOUBLE or NaN syntax all accepted, since a DOUBLE column accepts values
// originally written as plain integers). ok is false if field is not
// numeric at all.
func ParseDoubleField(field []byte) (value float64, ok bool) {
	tok := Scan(field)
	switch tok.Kind {
	case KindInt, KindFloat, KindNaN:
		return tok.Float64(), true
	default:
		return 0, false
	}
}
