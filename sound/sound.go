// Package sound provides short UI feedback cues. The player is
// optional: a nil *Player is silent and every method is safe to call
package sound

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Cue identifies a feedback sound
type Cue int

const (
	// CueError buzzes on a rejected input
	CueError Cue = iota
	// CueConfirm blips on an accepted edit (keyframe insert/delete)
	CueConfirm
	// CueChime marks playback start
	CueChime
)

const sampleRate = beep.SampleRate(44100)

// Player plays cues through the speaker. Create with NewPlayer; keep
// nil to disable audio entirely
type Player struct {
	ready bool
}

// NewPlayer initializes the speaker. A failed init returns the error
// and a nil player; the viewer runs fine without sound
func NewPlayer() (*Player, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Player{ready: true}, nil
}

// Close shuts the speaker down
func (p *Player) Close() {
	if p == nil || !p.ready {
		return
	}
	speaker.Close()
}

// Play fires a cue asynchronously. Nil-safe
func (p *Player) Play(cue Cue) {
	if p == nil || !p.ready {
		return
	}

	var freq float64
	var dur time.Duration
	switch cue {
	case CueError:
		freq, dur = 160, 90*time.Millisecond
	case CueConfirm:
		freq, dur = 880, 50*time.Millisecond
	case CueChime:
		freq, dur = 660, 140*time.Millisecond
	default:
		return
	}

	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(dur), tone))
}
