package renderer

import (
	"errors"
	"testing"
	"time"
)

func TestFrameStateString(t *testing.T) {
	tests := []struct {
		state FrameState
		want  string
	}{
		{FrameStateIdle, "idle"},
		{FrameStateAcquired, "acquired"},
		{FrameStateComputeSubmitted, "compute submitted"},
		{FrameStateGraphicsSubmitted, "graphics submitted"},
		{FrameStatePresented, "presented"},
		{FrameState(42), "FrameState(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFrameErrorUnwrap(t *testing.T) {
	cause := errors.New("device lost")
	var err error = &FrameError{State: FrameStateComputeSubmitted, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatal("errors.As(err, *FrameError) = false")
	}
	if frameErr.State != FrameStateComputeSubmitted {
		t.Errorf("State = %v, want %v", frameErr.State, FrameStateComputeSubmitted)
	}
	if got, want := err.Error(), "renderer: frame failed after compute submitted: device lost"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFrameTimer(t *testing.T) {
	base := time.Unix(1000, 0)
	times := []time.Time{
		base,
		base.Add(16 * time.Millisecond),
		base.Add(48 * time.Millisecond),
		base.Add(40 * time.Millisecond),
	}
	i := 0
	timer := newFrameTimer(func() time.Time {
		now := times[i]
		i++
		return now
	})

	want := []float32{0.016, 0.032, 0}
	for n, w := range want {
		got := timer.tick()
		if diff := got - w; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("tick %d = %v, want %v", n, got, w)
		}
	}
}
