package camera

// Controller owns a Camera and applies the interactive pan/zoom/reset commands to it.
// Implementations are safe for concurrent use.
type Controller interface {
	// Pan moves the center by PanSpeed/Zoom along one axis.
	// Up decreases Y, matching the top-down row order of the canvas.
	//
	// Parameters:
	//   - direction: the axis and sign to move along
	Pan(direction Direction)

	// Zoom applies zoom += delta * ZoomSpeed * max(1, 0.25*zoom) and clamps the result to MinZoom.
	// Positive delta magnifies.
	//
	// Parameters:
	//   - delta: signed zoom amount, usually ±0.5 from keys or the wheel offset
	Zoom(delta float32)

	// Reset replaces the camera with New().
	Reset()

	// Camera returns a copy of the current camera.
	//
	// Returns:
	//   - Camera: the current camera value
	Camera() Camera

	// SetCamera replaces the current camera. Zoom below MinZoom is clamped.
	//
	// Parameters:
	//   - cam: the camera to adopt
	SetCamera(cam Camera)

	// PanSpeed returns the pan distance per command at zoom 1.
	PanSpeed() float32

	// ZoomSpeed returns the zoom delta multiplier.
	ZoomSpeed() float32
}
