package bignum

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Pow2FastLimit bounds the native-double fast path for 2^x. Beyond it the
// result exponent no longer fits in a float64
const Pow2FastLimit = 1000

// Pow2Int returns 2^exp exactly as a Dec for any integer exponent.
// Positive exponents are a big shift; negative exponents divide at the
// current working precision
func Pow2Int(exp int) Dec {
	if exp >= 0 {
		p := new(big.Int).Lsh(big.NewInt(1), uint(exp))
		return decimal.NewFromBigInt(p, 0)
	}
	p := new(big.Int).Lsh(big.NewInt(1), uint(-exp))
	return Div(decimal.NewFromInt(1), decimal.NewFromBigInt(p, 0))
}

// Pow2 returns 2^exp as a Dec for a possibly fractional exponent. The
// integer part stays exact; only the fractional factor (in [1,2)) passes
// through float64, which bounds the relative error at ~1e-16 regardless
// of depth
func Pow2(exp float64) Dec {
	i := math.Floor(exp)
	f := exp - i
	out := Pow2Int(int(i))
	if f == 0 {
		return out
	}
	return out.Mul(decimal.NewFromFloat(math.Exp2(f)))
}

// Pow2Float is the native-double side channel for 2^exp. Valid only while
// |exp| < Pow2FastLimit; callers needing deeper exponents must take the
// Dec path
func Pow2Float(exp float64) (float64, bool) {
	if math.Abs(exp) >= Pow2FastLimit {
		return 0, false
	}
	return math.Exp2(exp), true
}
