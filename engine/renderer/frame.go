package renderer

import (
	"fmt"
	"time"
)

// FrameState is the point a frame has reached in the acquire → compute → graphics → present protocol.
type FrameState int

const (
	FrameStateIdle FrameState = iota
	FrameStateAcquired
	FrameStateComputeSubmitted
	FrameStateGraphicsSubmitted
	FrameStatePresented
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "idle"
	case FrameStateAcquired:
		return "acquired"
	case FrameStateComputeSubmitted:
		return "compute submitted"
	case FrameStateGraphicsSubmitted:
		return "graphics submitted"
	case FrameStatePresented:
		return "presented"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// FrameOutcome reports how a RenderFrame call ended.
type FrameOutcome int

const (
	// FramePresented means the frame went through every state and was handed to the display.
	FramePresented FrameOutcome = iota
	// FrameSkippedZeroSize means the surface had a zero dimension; no GPU work was issued.
	FrameSkippedZeroSize
	// FrameSkippedAcquire means the next surface texture could not be acquired.
	FrameSkippedAcquire
)

func (o FrameOutcome) String() string {
	switch o {
	case FramePresented:
		return "presented"
	case FrameSkippedZeroSize:
		return "skipped (zero size)"
	case FrameSkippedAcquire:
		return "skipped (acquire failed)"
	default:
		return fmt.Sprintf("FrameOutcome(%d)", int(o))
	}
}

// FrameError is the panic value RenderFrame raises for failures it cannot recover from,
// such as a lost device or a failed submission.
type FrameError struct {
	// State is the last state the frame reached before failing.
	State FrameState
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("renderer: frame failed after %s: %v", e.State, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// frameTimer tracks the time between consecutive rendered frames.
type frameTimer struct {
	now      func() time.Time
	previous time.Time
	delta    float32
}

func newFrameTimer(now func() time.Time) *frameTimer {
	return &frameTimer{now: now, previous: now()}
}

// tick records a frame at the current time and returns the seconds since the previous tick.
func (t *frameTimer) tick() float32 {
	current := t.now()
	elapsed := current.Sub(t.previous).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	t.previous = current
	t.delta = float32(elapsed)
	return t.delta
}
