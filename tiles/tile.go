package tiles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veyra/abyss/bignum"
)

// ID is a tile's logical identity. X/Y are arbitrary-width so indices
// remain exact past level 63
type ID struct {
	Dataset string
	Level   int
	X, Y    bignum.Index
}

// Key is the manifest form "L/X/Y" with decimal digit strings
func (id ID) Key() string {
	return strconv.Itoa(id.Level) + "/" + id.X.String() + "/" + id.Y.String()
}

// String includes the dataset for cross-dataset uniqueness
func (id ID) String() string {
	return id.Dataset + ":" + id.Key()
}

// ParseKey splits a manifest key "L/X/Y" into its components
func ParseKey(s string) (level int, x, y bignum.Index, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, nil, nil, fmt.Errorf("%w: tile key %q", bignum.ErrBadCoordinate, s)
	}
	level, err = strconv.Atoi(parts[0])
	if err != nil || level < 0 {
		return 0, nil, nil, fmt.Errorf("%w: tile level %q", bignum.ErrBadCoordinate, parts[0])
	}
	x, err = bignum.ParseIndex(parts[1])
	if err != nil {
		return 0, nil, nil, err
	}
	y, err = bignum.ParseIndex(parts[2])
	if err != nil {
		return 0, nil, nil, err
	}
	if x.Sign() < 0 || y.Sign() < 0 {
		return 0, nil, nil, fmt.Errorf("%w: negative tile index in %q", bignum.ErrBadCoordinate, s)
	}
	return level, x, y, nil
}
