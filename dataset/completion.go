package dataset

import (
	"image"

	"github.com/veyra/abyss/sched"
	"github.com/veyra/abyss/tiles"
)

// Outcome classifies how a tile request finished
type Outcome int

const (
	// OutcomeOK delivered a decoded image
	OutcomeOK Outcome = iota
	// OutcomeBusy means the backend refused with 503 or was unreachable;
	// the request should be retried at the front of the queue
	OutcomeBusy
	// OutcomeFailed is a permanent failure (bad bytes, 4xx/5xx other
	// than 503); the tile completes as blank
	OutcomeFailed
)

// Completion is a worker's report back to the frame loop. Workers never
// touch viewer state directly; everything funnels through this message
type Completion struct {
	ID      tiles.ID
	Lane    sched.Lane
	Outcome Outcome
	Image   image.Image
	Err     error
}
