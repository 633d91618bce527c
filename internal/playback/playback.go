// Package playback drives a finite, ordered sequence of steps forward on a
// timer. It owns the step index, the play/pause state and the speed
// multiplier, and leaves what a step means entirely to the caller: hosts
// supply the steps and render the state, the engine does the bookkeeping that
// used to be duplicated, buggily, around every animated walkthrough.
package playback

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the engine's lifecycle state.
type Phase int

// Engine phases. Idle and Complete both report Playing false; they differ in
// where the step index sits.
const (
	Idle Phase = iota
	Playing
	Paused
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Speed is a named pacing setting. It scales the tick interval, so fast
// means a smaller interval and sooner ticks.
type Speed string

// Recognized speeds.
const (
	SpeedSlow   Speed = "slow"
	SpeedNormal Speed = "normal"
	SpeedFast   Speed = "fast"
)

// Multiplier returns the interval scale factor for the speed. Unknown speeds
// return 0; ParseSpeed and the engine reject those up front.
func (s Speed) Multiplier() float64 {
	switch s {
	case SpeedSlow:
		return 1.5
	case SpeedNormal:
		return 1.0
	case SpeedFast:
		return 0.5
	default:
		return 0
	}
}

// ParseSpeed converts a configuration string into a Speed.
func ParseSpeed(raw string) (Speed, error) {
	s := Speed(raw)
	if s.Multiplier() == 0 {
		return "", fmt.Errorf("unknown speed %q (want slow, normal, or fast)", raw)
	}
	return s, nil
}

// Step is one unit of a walkthrough: which source lines to highlight and what
// to say about them. Steps are defined once per scenario and replaced
// wholesale when the scenario changes; the engine never mutates them.
type Step struct {
	Index            int
	Title            string
	HighlightedLines []int
	Explanation      string
}

// State is a snapshot of the engine, safe to hold after the engine moves on.
type State struct {
	StepIndex       int
	Playing         bool
	SpeedMultiplier float64
	Phase           Phase
}

// DefaultBaseInterval paces engines that do not configure their own. Hosts
// pick anything from a few hundred milliseconds for dense walkthroughs to a
// few seconds for narrated ones.
const DefaultBaseInterval = time.Second

// ErrNoSteps rejects construction of an engine with nothing to play.
var ErrNoSteps = errors.New("playback: at least one step is required")

// ErrClosed reports a transport call on a closed engine.
var ErrClosed = errors.New("playback: engine is closed")

// StepOutOfRangeError reports a GoToStep target outside the step sequence.
type StepOutOfRangeError struct {
	Index int
	Steps int
}

func (e *StepOutOfRangeError) Error() string {
	return fmt.Sprintf("playback: step %d out of range [0,%d)", e.Index, e.Steps)
}
