package path

import (
	"math"

	"github.com/veyra/abyss/bignum"
	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// primitive is one geometry piece of a built path. The two variants are
// Line (swoop-interpolated straight runs) and Corner (quadratic Bezier
// fillets); evaluation dispatches on the variant
type primitive interface {
	at(t float64) camera.Camera
}

// Line interpolates between two cameras. Level and rotation blend
// linearly; position follows the swoop reparameterization so the
// deep-zoom target stays framed throughout the descent
type Line struct {
	A, B camera.Camera
}

func (l Line) at(t float64) camera.Camera {
	level := l.A.GlobalLevel + t*(l.B.GlobalLevel-l.A.GlobalLevel)
	rot := l.A.Rotation + t*(l.B.Rotation-l.A.Rotation)

	s := swoop(l.A.GlobalLevel, l.B.GlobalLevel, level, t)

	out := camera.Camera{GlobalLevel: level, Rotation: rot}
	out.X = l.A.X.Add(s.Mul(l.B.X.Sub(l.A.X)))
	out.Y = l.A.Y.Add(s.Mul(l.B.Y.Sub(l.A.Y)))
	return out
}

// swoop maps linear level progress onto lateral progress. With
// w = 2^-L (viewport width in world units), s = (w_t - w1) / (w2 - w1)
// keeps apparent lateral motion proportional to screen space. Pan-only
// segments short-circuit to s = t; without the guard the denominator
// underflows to zero and the blend yields NaN
func swoop(l1, l2, lt, t float64) bignum.Dec {
	if math.Abs(l2-l1) < parameter.LevelEqualEpsilon {
		return bignum.FromFloat(t)
	}
	w1 := bignum.Pow2(-l1)
	w2 := bignum.Pow2(-l2)
	wt := bignum.Pow2(-lt)
	return bignum.Div(wt.Sub(w1), w2.Sub(w1))
}

// Corner is a quadratic Bezier through in -> mid -> out, giving C1
// continuity across a keyframe shared by two lines
type Corner struct {
	In, Mid, Out camera.Camera
}

func (c Corner) at(t float64) camera.Camera {
	u := 1 - t
	a, b, cc := u*u, 2*u*t, t*t

	out := camera.Camera{
		GlobalLevel: a*c.In.GlobalLevel + b*c.Mid.GlobalLevel + cc*c.Out.GlobalLevel,
		Rotation:    a*c.In.Rotation + b*c.Mid.Rotation + cc*c.Out.Rotation,
	}
	da := bignum.FromFloat(a)
	db := bignum.FromFloat(b)
	dc := bignum.FromFloat(cc)
	out.X = c.In.X.Mul(da).Add(c.Mid.X.Mul(db)).Add(c.Out.X.Mul(dc))
	out.Y = c.In.Y.Mul(da).Add(c.Mid.Y.Mul(db)).Add(c.Out.Y.Mul(dc))
	return out
}
