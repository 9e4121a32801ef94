package bignum

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Dec is an arbitrary-precision decimal used for global coordinates.
// Aliased so callers get the full shopspring method set without copying
type Dec = decimal.Decimal

var (
	// ErrBadCoordinate reports an ill-formed decimal coordinate string
	ErrBadCoordinate = errors.New("bad coordinate")

	// ErrIndexTooLarge reports a tile index that does not fit in 64 bits;
	// callers must stay on the arbitrary-width form
	ErrIndexTooLarge = errors.New("tile index exceeds 64 bits")
)

// MinDigits is the working-precision floor in decimal digits
const MinDigits = 50

// digits is the process-wide working precision. Grows monotonically with
// the deepest expected level; never shrinks within a process
var digits atomic.Int32

func init() {
	digits.Store(MinDigits)
}

// Digits returns the current working precision in decimal digits
func Digits() int32 {
	return digits.Load()
}

// Raise grows the working precision to cover maxLevel. A point at level L
// needs ~L*log10(2) fractional digits plus headroom; below the floor the
// call is a no-op
func Raise(maxLevel int) {
	want := int32(math.Ceil(float64(maxLevel)*0.35 + 20))
	if want < MinDigits {
		want = MinDigits
	}
	for {
		cur := digits.Load()
		if want <= cur {
			return
		}
		if digits.CompareAndSwap(cur, want) {
			return
		}
	}
}

// ParseDec converts a decimal coordinate string, failing with
// ErrBadCoordinate on malformed input
func ParseDec(s string) (Dec, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Dec{}, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	return d, nil
}

// Div divides at the current working precision. shopspring division
// truncates at a fixed global precision otherwise, which silently loses
// deep-zoom digits
func Div(a, b Dec) Dec {
	return a.DivRound(b, Digits())
}

// Clamp01 clamps d into [0, 1]
func Clamp01(d Dec) Dec {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	if d.Cmp(decimal.NewFromInt(1)) > 0 {
		return decimal.NewFromInt(1)
	}
	return d
}

// FromFloat converts a float64 into a Dec
func FromFloat(f float64) Dec {
	return decimal.NewFromFloat(f)
}

// FromInt converts an int64 into a Dec
func FromInt(v int64) Dec {
	return decimal.NewFromInt(v)
}
