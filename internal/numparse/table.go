package numparse

// pow10 holds 10^0..10^22 as exact float64 values. An integer up to 2^53
// is also exact in float64, so multiplying or dividing it by one of these
// powers rounds only once and gives the correctly rounded result: any
// mantissa/exponent pair that fits this range can be converted with a
// single multiply or divide instead of the general high-precision path.
// Grounded in the power-of-ten table camog's generator/powers.py emits (it
// goes further, to long double precision and exponent 310, because C's
// accumulator there is the generated integer parser's raw digit count; our
// uint64 mantissa cap of 19 digits keeps the fast-path range smaller but
// exact).
var pow10 = [23]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

const (
	maxExactFastExp = 22
	minExactFastExp = -22
	// a uint64 mantissa fits exactly in float64's 53-bit significand only
	// up to this value.
	maxExactMantissa = 1 << 53
)
