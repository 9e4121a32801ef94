package bignum

import (
	"fmt"
	"math/big"
)

// Index is an arbitrary-width non-negative tile index. Aliased to
// *big.Int so arithmetic composes with the stdlib big API
type Index = *big.Int

// NewIndex returns an Index holding v
func NewIndex(v int64) Index {
	return big.NewInt(v)
}

// ParseIndex converts a decimal digit string into an Index
func ParseIndex(s string) (Index, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	return i, nil
}

// IndexToInt64 narrows an Index to int64, failing with ErrIndexTooLarge
// when the value does not fit
func IndexToInt64(i Index) (int64, error) {
	if !i.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrIndexTooLarge, i.String())
	}
	return i.Int64(), nil
}

// MaxIndex returns 2^level - 1, the largest valid tile index at a level
func MaxIndex(level int) Index {
	m := new(big.Int).Lsh(big.NewInt(1), uint(level))
	return m.Sub(m, big.NewInt(1))
}

// IndexInRange reports whether 0 <= i < 2^level
func IndexInRange(i Index, level int) bool {
	if i.Sign() < 0 {
		return false
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(level))
	return i.Cmp(limit) < 0
}

// FloorToIndex floors a Dec into an Index. This is the single sanctioned
// exit from big-decimal into integer tile space
func FloorToIndex(d Dec) Index {
	return d.Floor().BigInt()
}
