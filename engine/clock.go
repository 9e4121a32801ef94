package engine

import "time"

// TimeProvider supplies monotonic wall time for frame pacing and
// scheduler timestamps
type TimeProvider struct{}

// NewTimeProvider creates a monotonic time provider
func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

// Now returns the current time with a monotonic clock reading
func (p *TimeProvider) Now() time.Time {
	return time.Now()
}

// PlaybackClock tracks elapsed playback seconds with pause support.
// Pausing freezes the elapsed value; resuming continues from it. The
// time source is injectable for tests
type PlaybackClock struct {
	now func() time.Time

	startedAt time.Time
	base      float64
	running   bool
}

// NewPlaybackClock creates a stopped clock at zero elapsed
func NewPlaybackClock() *PlaybackClock {
	return &PlaybackClock{now: time.Now}
}

// Running reports whether playback time is advancing
func (c *PlaybackClock) Running() bool {
	return c.running
}

// Start resumes advancement from the current elapsed value
func (c *PlaybackClock) Start() {
	if c.running {
		return
	}
	c.startedAt = c.now()
	c.running = true
}

// Pause freezes the elapsed value
func (c *PlaybackClock) Pause() {
	if !c.running {
		return
	}
	c.base += c.now().Sub(c.startedAt).Seconds()
	c.running = false
}

// Elapsed returns playback seconds since zero, minus paused spans
func (c *PlaybackClock) Elapsed() float64 {
	if !c.running {
		return c.base
	}
	return c.base + c.now().Sub(c.startedAt).Seconds()
}

// SeekTo jumps the elapsed value, preserving the running state
func (c *PlaybackClock) SeekTo(sec float64) {
	c.base = sec
	if c.running {
		c.startedAt = c.now()
	}
}
