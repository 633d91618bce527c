package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/sqlstage/sqlstage/internal/types"
)

// timer is the part of *time.Timer the engine relies on, split out so tests
// can drive ticks by hand instead of sleeping.
type timer interface {
	Stop() bool
}

type timerFactory func(d time.Duration, fn func()) timer

func afterFunc(d time.Duration, fn func()) timer {
	return time.AfterFunc(d, fn)
}

// Engine plays a step sequence. It holds at most one armed timer at any
// moment: every transition stops the previous timer before arming a new one,
// and a generation counter keeps a late callback from a stopped timer from
// touching state. All methods are safe for concurrent use.
type Engine struct {
	mu           sync.Mutex
	steps        []Step
	baseInterval time.Duration
	speed        Speed
	logger       *types.Logger
	onStep       func(State, Step)
	newTimer     timerFactory

	idx    int
	phase  Phase
	gen    uint64
	timer  timer
	closed bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithBaseInterval sets the unscaled tick interval.
func WithBaseInterval(d time.Duration) Option {
	return func(e *Engine) { e.baseInterval = d }
}

// WithSpeed sets the initial speed.
func WithSpeed(s Speed) Option {
	return func(e *Engine) { e.speed = s }
}

// WithLogger routes the engine's transition logs.
func WithLogger(l *types.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithOnStep registers a listener invoked whenever the current step index
// changes, on ticks as well as manual navigation. It runs outside the engine
// lock, so it may call back into the engine; the next tick is not armed until
// it returns.
func WithOnStep(fn func(State, Step)) Option {
	return func(e *Engine) { e.onStep = fn }
}

// NewEngine builds an Idle engine positioned on the first step.
func NewEngine(steps []Step, opts ...Option) (*Engine, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	e := &Engine{
		steps:        append([]Step(nil), steps...),
		baseInterval: DefaultBaseInterval,
		speed:        SpeedNormal,
		logger:       types.DefaultLogger,
		newTimer:     afterFunc,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.baseInterval <= 0 {
		return nil, fmt.Errorf("playback: base interval must be positive, got %s", e.baseInterval)
	}
	if e.speed.Multiplier() == 0 {
		return nil, fmt.Errorf("playback: unknown speed %q (want slow, normal, or fast)", string(e.speed))
	}
	if e.logger == nil {
		e.logger = types.DefaultLogger
	}
	return e, nil
}

// Play starts the timer. It is a no-op while already playing, when the engine
// is closed, and when the current step is the final one, so it can never
// stack a second timer or play past the end.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.closed || e.phase == Playing || e.idx >= len(e.steps)-1 {
		e.mu.Unlock()
		return
	}
	e.phase = Playing
	e.armLocked()
	idx, speed := e.idx, e.speed
	e.mu.Unlock()

	e.logger.Debug("playback: playing from step %d at %s speed", idx, speed)
}

// Pause stops the timer and holds the current step. No-op unless playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.closed || e.phase != Playing {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	e.phase = Paused
	idx := e.idx
	e.mu.Unlock()

	e.logger.Debug("playback: paused at step %d", idx)
}

// Reset returns to the first step and Idle, from any phase, cancelling any
// pending tick.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.stopTimerLocked()
	changed := e.idx != 0
	e.idx = 0
	e.phase = Idle
	st := e.stateLocked()
	step := e.steps[0]
	fn := e.onStep
	e.mu.Unlock()

	e.logger.Debug("playback: reset")
	if changed && fn != nil {
		fn(st, step)
	}
}

// GoToStep scrubs directly to a step. Manual navigation always stops
// auto-play: the engine lands in Complete on the final step, Idle on the
// first, Paused anywhere else.
func (e *Engine) GoToStep(i int) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if i < 0 || i >= len(e.steps) {
		n := len(e.steps)
		e.mu.Unlock()
		return &StepOutOfRangeError{Index: i, Steps: n}
	}
	e.stopTimerLocked()
	changed := e.idx != i
	e.idx = i
	switch {
	case i == len(e.steps)-1:
		e.phase = Complete
	case i == 0:
		e.phase = Idle
	default:
		e.phase = Paused
	}
	st := e.stateLocked()
	step := e.steps[i]
	fn := e.onStep
	e.mu.Unlock()

	e.logger.Debug("playback: jumped to step %d (%s)", i, st.Phase)
	if changed && fn != nil {
		fn(st, step)
	}
	return nil
}

// SetSpeed changes the pacing. While playing it takes effect when the next
// tick re-arms, never retroactively; the pending tick keeps its interval.
func (e *Engine) SetSpeed(s Speed) error {
	if s.Multiplier() == 0 {
		return fmt.Errorf("playback: unknown speed %q (want slow, normal, or fast)", string(s))
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.speed = s
	e.mu.Unlock()

	e.logger.Debug("playback: speed set to %s", s)
	return nil
}

// Close cancels any pending tick and retires the engine. No tick observably
// fires after Close returns; further transport calls are no-ops or ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTimerLocked()
	if e.phase == Playing {
		e.phase = Paused
	}
	e.mu.Unlock()

	e.logger.Debug("playback: closed")
}

// State returns a snapshot of the transport.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// CurrentStep returns the step the engine is positioned on.
func (e *Engine) CurrentStep() Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps[e.idx]
}

// StepCount returns the length of the step sequence.
func (e *Engine) StepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.steps)
}

// Steps returns a copy of the step sequence.
func (e *Engine) Steps() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Step(nil), e.steps...)
}

// tick advances one step. The listener runs between the state change and the
// re-arm, so a listener panic leaves no timer behind, and a Pause, GoToStep
// or Close issued meanwhile wins the generation check and suppresses the
// re-arm.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen || e.phase != Playing {
		e.mu.Unlock()
		return
	}
	e.idx++
	if e.idx >= len(e.steps)-1 {
		e.idx = len(e.steps) - 1
		e.phase = Complete
		e.timer = nil
	}
	st := e.stateLocked()
	step := e.steps[e.idx]
	fn := e.onStep
	e.mu.Unlock()

	e.logger.Debug("playback: step %d (%s)", st.StepIndex, st.Phase)
	if fn != nil {
		fn(st, step)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen || e.phase != Playing {
		return
	}
	e.armLocked()
}

// armLocked starts the single in-flight timer for the next tick at the
// current interval. Callers hold e.mu.
func (e *Engine) armLocked() {
	e.gen++
	gen := e.gen
	e.timer = e.newTimer(e.intervalLocked(), func() { e.tick(gen) })
}

// stopTimerLocked cancels the pending tick. Bumping the generation first
// also neutralizes a callback that has already fired and is waiting on the
// lock. Callers hold e.mu.
func (e *Engine) stopTimerLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) intervalLocked() time.Duration {
	return time.Duration(float64(e.baseInterval) * e.speed.Multiplier())
}

func (e *Engine) stateLocked() State {
	return State{
		StepIndex:       e.idx,
		Playing:         e.phase == Playing,
		SpeedMultiplier: e.speed.Multiplier(),
		Phase:           e.phase,
	}
}
