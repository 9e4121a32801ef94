package parameter

// Camera Path Sampling
const (
	// SamplesPerPrimitive is the arc-length LUT resolution per geometry
	// primitive; discretization noise scales with 1/N
	SamplesPerPrimitive = 2000

	// FilletCap limits corner fillet radius in visual units to prevent
	// wide orbiting behavior at deep levels
	FilletCap = 4.0

	// FilletRatio is the fraction of the shorter adjacent segment consumed
	// by a corner fillet
	FilletRatio = 0.5

	// PathSpeed is playback speed in visual units per second
	PathSpeed = 2.0

	// LevelEqualEpsilon short-circuits swoop interpolation to plain linear
	// blending on pan-only segments; below this the w2-w1 denominator is
	// numerically meaningless
	LevelEqualEpsilon = 1e-9
)
