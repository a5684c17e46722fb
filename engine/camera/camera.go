package camera

import "github.com/go-gl/mathgl/mgl32"

// MinZoom is the natural scale. A Camera never zooms out past it.
const MinZoom float32 = 1.0

// Direction names one of the four pan axes.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "unknown"
	}
}

// Camera is the user-controlled view of the complex plane: a pan offset and a magnification factor.
// Zoom is kept at or above MinZoom by every Controller mutation.
type Camera struct {
	Center mgl32.Vec2
	Zoom   float32
}

// New returns the default camera centered on the origin at natural scale.
//
// Returns:
//   - Camera: center (0, 0), zoom 1
func New() Camera {
	return Camera{
		Center: mgl32.Vec2{0, 0},
		Zoom:   MinZoom,
	}
}
