package parameter

import "time"

// Viewer Loop Timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~30 FPS)
	// Terminal presentation rarely benefits from more
	FrameUpdateInterval = 33 * time.Millisecond

	// StatusPollInterval is the backend status poll period while live
	// rendering is enabled
	StatusPollInterval = 300 * time.Millisecond

	// CompletionChannelSize buffers worker completion messages between frames
	CompletionChannelSize = 64
)

// Tile Geometry
const (
	// DefaultTileSize is the logical tile edge in pixels when the dataset
	// config does not specify one
	DefaultTileSize = 512

	// SeamOverscale closes sub-pixel seams between neighboring tiles
	// (0.1% overscale on the per-tile display transform)
	SeamOverscale = 1.001

	// ChildOpacityEpsilon is the fractional level below which the fading-in
	// child layer is skipped entirely
	ChildOpacityEpsilon = 0.001

	// CoverageBuffer pads the bounding-circle radius in tile units so
	// tile corners at the viewport diagonal are still covered
	CoverageBuffer = 0.75
)
