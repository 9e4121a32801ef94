package bignum

import (
	"math"
	"strings"
	"testing"
)

func TestRaiseMonotonic(t *testing.T) {
	base := Digits()
	Raise(200)
	want := int32(math.Ceil(200*0.35 + 20))
	if Digits() < want {
		t.Fatalf("Digits() = %d, want >= %d", Digits(), want)
	}
	// Shallower datasets must never shrink precision
	Raise(10)
	if Digits() < want {
		t.Fatalf("Raise(10) shrank precision to %d", Digits())
	}
	if Digits() < base {
		t.Fatalf("precision fell below starting value")
	}
}

func TestParseDec(t *testing.T) {
	d, err := ParseDec("0.5000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("ParseDec: %v", err)
	}
	if d.IsZero() || d.Sign() != 1 {
		t.Fatalf("unexpected value %s", d.String())
	}

	if _, err := ParseDec("not-a-number"); err == nil {
		t.Fatal("expected error for malformed input")
	} else if !strings.Contains(err.Error(), "bad coordinate") {
		t.Fatalf("error should wrap ErrBadCoordinate, got %v", err)
	}
}

func TestPow2IntExact(t *testing.T) {
	Raise(300)

	p := Pow2Int(200)
	// 2^200 ends in ...376 and has 61 digits
	s := p.String()
	if len(s) != 61 {
		t.Fatalf("2^200 has %d digits, want 61", len(s))
	}

	// Round trip: 2^200 * 2^-200 == 1
	inv := Pow2Int(-200)
	one := p.Mul(inv)
	diff := one.Sub(FromInt(1)).Abs()
	if diff.Cmp(Div(FromInt(1), Pow2Int(160))) > 0 {
		t.Fatalf("2^200 * 2^-200 = %s, too far from 1", one.String())
	}
}

func TestPow2Fractional(t *testing.T) {
	got := Pow2(0.5)
	want := math.Sqrt2
	f, _ := got.Float64()
	if math.Abs(f-want) > 1e-12 {
		t.Fatalf("Pow2(0.5) = %v, want %v", f, want)
	}
}

func TestPow2FloatFastPath(t *testing.T) {
	if v, ok := Pow2Float(10); !ok || v != 1024 {
		t.Fatalf("Pow2Float(10) = %v, %v", v, ok)
	}
	if _, ok := Pow2Float(1500); ok {
		t.Fatal("Pow2Float must refuse exponents beyond the double range")
	}
	if _, ok := Pow2Float(-1500); ok {
		t.Fatal("Pow2Float must refuse large negative exponents")
	}
}

func TestIndexNarrowing(t *testing.T) {
	i, err := ParseIndex("123456789012345678901234567890")
	if err != nil {
		t.Fatalf("ParseIndex: %v", err)
	}
	if _, err := IndexToInt64(i); err == nil {
		t.Fatal("expected ErrIndexTooLarge")
	}

	small := NewIndex(42)
	v, err := IndexToInt64(small)
	if err != nil || v != 42 {
		t.Fatalf("IndexToInt64 = %d, %v", v, err)
	}
}

func TestIndexInRange(t *testing.T) {
	if !IndexInRange(NewIndex(0), 0) {
		t.Fatal("(0) must be valid at level 0")
	}
	if IndexInRange(NewIndex(1), 0) {
		t.Fatal("1 is out of range at level 0")
	}
	if IndexInRange(NewIndex(-1), 5) {
		t.Fatal("negative index is never valid")
	}
	if !IndexInRange(MaxIndex(30), 30) {
		t.Fatal("2^30-1 must be valid at level 30")
	}
}

func TestFloorToIndexPreservesPrecision(t *testing.T) {
	Raise(210)

	// x = 0.5 + 1e-70 at level 200: 2^200 * 1e-70 ~ 1.6e-10, well inside a
	// tile, so the offset survives only if the whole pipeline stays in
	// big-decimal until the final floor
	x, err := ParseDec("0.5")
	if err != nil {
		t.Fatal(err)
	}
	x = x.Add(FromInt(1).Shift(-70))

	scaled := x.Mul(Pow2Int(200))
	idx := FloorToIndex(scaled)

	half := FloorToIndex(FromFloat(0.5).Mul(Pow2Int(200)))
	if idx.Cmp(half) != 0 {
		t.Fatalf("floor(x*2^200) = %s, want %s", idx.String(), half.String())
	}
	// But the scaled value itself must still carry the offset
	frac := scaled.Sub(decFromIndex(idx))
	if frac.Sign() <= 0 {
		t.Fatal("fractional part lost the 1e-70 perturbation")
	}
}

func decFromIndex(i Index) Dec {
	d, err := ParseDec(i.String())
	if err != nil {
		panic(err)
	}
	return d
}
