package parameter

import "time"

// Request Scheduler Lanes
const (
	// StaticLaneLimit is the concurrent dispatch limit for cached-tile fetches
	StaticLaneLimit = 6

	// LiveLaneLimit keeps at most one on-demand render in flight; the
	// backend serializes renders anyway, queueing more only ties up slots
	LiveLaneLimit = 1

	// RetryDelay is the pause before a busy (503) live request is
	// re-enqueued at the front of the queue
	RetryDelay = 200 * time.Millisecond

	// PruneLevelSpan bounds eviction checks to levels within this distance
	// of the camera base level
	PruneLevelSpan = 2

	// BadgeMax is the highest numbered queue badge; deeper positions
	// collapse to "#10+"
	BadgeMax = 10
)
