package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestNewDefaults(t *testing.T) {
	c := NewController()
	cam := c.Camera()
	if cam.Center != (mgl32.Vec2{0, 0}) || cam.Zoom != 1 {
		t.Errorf("Camera() = %+v, want center (0,0) zoom 1", cam)
	}
	if got, want := c.PanSpeed(), float32(0.25); got != want {
		t.Errorf("PanSpeed() = %v, want %v", got, want)
	}
	if got, want := c.ZoomSpeed(), float32(0.3); got != want {
		t.Errorf("ZoomSpeed() = %v, want %v", got, want)
	}
}

func TestZoomFromNaturalScale(t *testing.T) {
	c := NewController(WithPanSpeed(0.25), WithZoomSpeed(0.3))
	c.Zoom(0.5)
	if got := c.Camera().Zoom; !approx(got, 1.15) {
		t.Errorf("Zoom = %v, want 1.15", got)
	}
}

func TestZoomScalesAtHighMagnification(t *testing.T) {
	c := NewController(WithZoomSpeed(0.3), WithCamera(Camera{Zoom: 8}))
	c.Zoom(1)
	// factor = max(1, 0.25*8) = 2
	if got := c.Camera().Zoom; !approx(got, 8.6) {
		t.Errorf("Zoom = %v, want 8.6", got)
	}
}

func TestZoomNeverBelowOne(t *testing.T) {
	deltas := []float32{-0.5, -10, 3, -1, 0.25, -100, 50, -0.01}
	c := NewController()
	for i, d := range deltas {
		c.Zoom(d)
		if z := c.Camera().Zoom; z < MinZoom {
			t.Fatalf("after step %d (delta %v) zoom = %v, want >= %v", i, d, z, MinZoom)
		}
	}
}

func TestPanUpAtZoomTwo(t *testing.T) {
	c := NewController(WithPanSpeed(0.25), WithCamera(Camera{Zoom: 2}))
	c.Pan(DirectionUp)
	cam := c.Camera()
	if !approx(cam.Center[1], -0.125) {
		t.Errorf("center.y = %v, want -0.125", cam.Center[1])
	}
	if cam.Center[0] != 0 {
		t.Errorf("center.x = %v, want 0", cam.Center[0])
	}
}

func TestPanMovesOneAxisOnly(t *testing.T) {
	tests := []struct {
		dir   Direction
		wantX float32
		wantY float32
	}{
		{DirectionUp, 0, -0.05},
		{DirectionDown, 0, 0.05},
		{DirectionLeft, -0.05, 0},
		{DirectionRight, 0.05, 0},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			c := NewController(WithPanSpeed(0.25), WithCamera(Camera{Zoom: 5}))
			c.Pan(tt.dir)
			cam := c.Camera()
			if !approx(cam.Center[0], tt.wantX) || !approx(cam.Center[1], tt.wantY) {
				t.Errorf("center = %v, want (%v, %v)", cam.Center, tt.wantX, tt.wantY)
			}
			if cam.Zoom != 5 {
				t.Errorf("zoom = %v, want 5", cam.Zoom)
			}
		})
	}
}

func TestPanSequenceKeepsZoom(t *testing.T) {
	c := NewController(WithCamera(Camera{Zoom: 3}))
	seq := []Direction{DirectionUp, DirectionUp, DirectionLeft, DirectionDown, DirectionRight, DirectionRight}
	for _, d := range seq {
		c.Pan(d)
	}
	cam := c.Camera()
	if cam.Zoom != 3 {
		t.Errorf("zoom = %v, want 3", cam.Zoom)
	}
	step := float32(0.25 / 3)
	if !approx(cam.Center[0], step) || !approx(cam.Center[1], -step) {
		t.Errorf("center = %v, want (%v, %v)", cam.Center, step, -step)
	}
}

func TestReset(t *testing.T) {
	c := NewController()
	c.Zoom(40)
	c.Pan(DirectionLeft)
	c.Pan(DirectionDown)
	c.Reset()
	if cam := c.Camera(); cam != New() {
		t.Errorf("after Reset camera = %+v, want %+v", cam, New())
	}
}

func TestSetCameraClampsZoom(t *testing.T) {
	c := NewController()
	c.SetCamera(Camera{Center: mgl32.Vec2{1, 2}, Zoom: 0.1})
	cam := c.Camera()
	if cam.Zoom != MinZoom || cam.Center != (mgl32.Vec2{1, 2}) {
		t.Errorf("SetCamera result = %+v, want center (1,2) zoom 1", cam)
	}
}
