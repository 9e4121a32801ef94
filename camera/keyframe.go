package camera

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/veyra/abyss/bignum"
)

// Keyframe is a resolved path anchor
type Keyframe struct {
	Camera Camera
}

// DecField decodes a JSON value that may arrive as a number or as a
// quoted decimal string. Deep-zoom positions must come in as strings to
// survive the trip; numbers are accepted for shallow coordinates
type DecField struct {
	Value bignum.Dec
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *DecField) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", bignum.ErrBadCoordinate, s)
		}
		s = u
	}
	d, err := bignum.ParseDec(s)
	if err != nil {
		return err
	}
	f.Value = d
	f.Set = true
	return nil
}

// KeyframeJSON is the wire shape of one path keyframe. The camera object
// carries either canonical fields or a macro form
type KeyframeJSON struct {
	Camera CameraJSON `json:"camera"`
}

// CameraJSON is the wire shape of a camera, covering the canonical form,
// the legacy level+zoomOffset form, and the macro forms
type CameraJSON struct {
	GlobalLevel *float64 `json:"globalLevel,omitempty"`
	Level       *float64 `json:"level,omitempty"`
	ZoomOffset  *float64 `json:"zoomOffset,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`

	X       DecField `json:"x,omitzero"`
	Y       DecField `json:"y,omitzero"`
	GlobalX DecField `json:"globalX,omitzero"`
	GlobalY DecField `json:"globalY,omitzero"`

	Macro string   `json:"macro,omitempty"`
	Re    DecField `json:"re,omitzero"`
	Im    DecField `json:"im,omitzero"`
}

// IsZero reports whether the field was absent, letting omitzero skip it
func (f DecField) IsZero() bool {
	return !f.Set
}

// Mandelbrot bounding rectangle: centered at (-0.75, 0), width/height 3.0,
// with the imaginary axis inverted into screen-down y
const (
	mandelCenterRe = -0.75
	mandelCenterIm = 0.0
	mandelSpan     = 3.0
)

// Resolve converts a wire camera into canonical form. Missing positions
// fall back to the world center, matching the original backend's
// tolerance for sparse keyframes
func (cj CameraJSON) Resolve() (Camera, error) {
	cam := New()

	switch {
	case cj.GlobalLevel != nil:
		cam.GlobalLevel = *cj.GlobalLevel
	case cj.Level != nil:
		cam.GlobalLevel = *cj.Level
		if cj.ZoomOffset != nil {
			cam.GlobalLevel += *cj.ZoomOffset
		}
	}
	if cj.Rotation != nil {
		cam.Rotation = *cj.Rotation
	}

	switch cj.Macro {
	case "mandelbrot", "mb":
		if !cj.Re.Set || !cj.Im.Set {
			return Camera{}, fmt.Errorf("%w: mandelbrot macro requires re and im", bignum.ErrBadCoordinate)
		}
		cam.X, cam.Y = mandelToGlobal(cj.Re.Value, cj.Im.Value)
	case "global", "":
		x, y, ok := cj.globalXY()
		if ok {
			cam.X, cam.Y = x, y
		}
	default:
		return Camera{}, fmt.Errorf("%w: unknown macro %q", bignum.ErrBadCoordinate, cj.Macro)
	}

	if err := cam.Validate(); err != nil {
		return Camera{}, err
	}
	return cam, nil
}

func (cj CameraJSON) globalXY() (x, y bignum.Dec, ok bool) {
	if cj.X.Set && cj.Y.Set {
		return cj.X.Value, cj.Y.Value, true
	}
	if cj.GlobalX.Set && cj.GlobalY.Set {
		return cj.GlobalX.Value, cj.GlobalY.Value, true
	}
	return x, y, false
}

// mandelToGlobal maps fractal-plane (re, im) into normalized global
// coordinates: x = (re + 2.25) / 3, y = (1.5 - im) / 3
func mandelToGlobal(re, im bignum.Dec) (x, y bignum.Dec) {
	span := bignum.FromFloat(mandelSpan)
	left := bignum.FromFloat(mandelCenterRe - mandelSpan/2)
	top := bignum.FromFloat(mandelCenterIm + mandelSpan/2)
	x = bignum.Div(re.Sub(left), span)
	y = bignum.Div(top.Sub(im), span)
	return x, y
}

// Encode serializes a canonical camera with string positions so precision
// survives the JSON round trip
func Encode(c Camera) CameraJSON {
	gl := c.GlobalLevel
	rot := c.Rotation
	out := CameraJSON{
		GlobalLevel: &gl,
		Rotation:    &rot,
		X:           DecField{Value: c.X, Set: true},
		Y:           DecField{Value: c.Y, Set: true},
	}
	return out
}

// MarshalJSON implements json.Marshaler, emitting the value as a quoted
// decimal string
func (f DecField) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value.String())
}
