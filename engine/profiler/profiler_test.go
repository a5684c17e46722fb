package profiler

import (
	"testing"
	"time"

	"github.com/anonymousomeone/mandelbrowser/engine/renderer"
)

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestRecordCountsOutcomes(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Hour))

	outcomes := []renderer.FrameOutcome{
		renderer.FramePresented,
		renderer.FrameSkippedZeroSize,
		renderer.FramePresented,
		renderer.FrameSkippedAcquire,
		renderer.FrameSkippedAcquire,
		renderer.FramePresented,
	}
	for _, o := range outcomes {
		p.Record(o, 0.016)
	}

	s := p.Stats()
	if s.Presented != 3 || s.SkippedZeroSize != 1 || s.SkippedAcquire != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.Frames() != len(outcomes) {
		t.Errorf("Frames() = %d, want %d", s.Frames(), len(outcomes))
	}
}

func TestRecordDeltas(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Hour))

	p.Record(renderer.FramePresented, 5) // setup time, ignored
	p.Record(renderer.FramePresented, 0.010)
	p.Record(renderer.FramePresented, 0.030)
	p.Record(renderer.FrameSkippedAcquire, 9)

	s := p.Stats()
	if s.MeanDelta < 19*time.Millisecond || s.MeanDelta > 21*time.Millisecond {
		t.Errorf("MeanDelta = %v, want 20ms", s.MeanDelta)
	}
	if s.MaxDelta < 29*time.Millisecond || s.MaxDelta > 31*time.Millisecond {
		t.Errorf("MaxDelta = %v, want 30ms", s.MaxDelta)
	}
}

func TestRecordLogsAtInterval(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: 400 * time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Second))

	var logged []bool
	for i := 0; i < 5; i++ {
		logged = append(logged, p.Record(renderer.FramePresented, 0.4))
	}
	want := []bool{false, false, true, false, false}
	for i := range want {
		if logged[i] != want[i] {
			t.Errorf("Record %d logged = %v, want %v", i, logged[i], want[i])
		}
	}
}

func TestSetLoggingOff(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), step: 400 * time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Second))
	p.SetLogging(false)

	for i := 0; i < 5; i++ {
		if p.Record(renderer.FramePresented, 0.4) {
			t.Fatalf("Record %d logged with logging off", i)
		}
	}
	if got := p.Stats().Presented; got != 5 {
		t.Errorf("Presented = %d, want 5", got)
	}
}

func TestStatsFPSAndRows(t *testing.T) {
	s := Stats{Presented: 120, Elapsed: 2 * time.Second, MeanDelta: 16667 * time.Microsecond}
	if got := s.FPS(); got != 60 {
		t.Errorf("FPS() = %v, want 60", got)
	}
	if got := (Stats{Presented: 3}).FPS(); got != 0 {
		t.Errorf("FPS() without elapsed = %v, want 0", got)
	}

	rows := s.Rows()
	if len(rows) != 6 {
		t.Fatalf("len(Rows()) = %d, want 6", len(rows))
	}
	if rows[0][1] != "120" {
		t.Errorf("presented row = %v", rows[0])
	}
	if rows[5][1] != "60.00" {
		t.Errorf("fps row = %v", rows[5])
	}
}
