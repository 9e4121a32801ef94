package parameter

// Input Steps
const (
	// PanStepPixels is the camera pan distance per keypress, in
	// framebuffer pixels
	PanStepPixels = 16.0

	// ZoomStep is the global-level change per zoom keypress
	ZoomStep = 0.25

	// RotateStep is the rotation change per keypress, radians
	RotateStep = 0.1
)
