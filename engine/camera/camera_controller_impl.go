package camera

import (
	"sync"

	"github.com/anonymousomeone/mandelbrowser/engine/config"
)

// controllerImpl is the single implementation of Controller.
type controllerImpl struct {
	mu *sync.Mutex

	camera Camera

	panSpeed  float32
	zoomSpeed float32
}

var _ Controller = &controllerImpl{}

// NewController creates a controller holding the default camera, using the default speeds
// unless overridden by options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerOption) Controller {
	c := &controllerImpl{
		mu:        &sync.Mutex{},
		camera:    New(),
		panSpeed:  config.DefaultPanSpeed,
		zoomSpeed: config.DefaultZoomSpeed,
	}

	for _, option := range options {
		option(c)
	}

	c.camera.Zoom = clampZoom(c.camera.Zoom)
	return c
}

func clampZoom(zoom float32) float32 {
	if zoom < MinZoom {
		return MinZoom
	}
	return zoom
}

func (c *controllerImpl) Pan(direction Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.panSpeed / c.camera.Zoom
	switch direction {
	case DirectionUp:
		c.camera.Center[1] -= step
	case DirectionDown:
		c.camera.Center[1] += step
	case DirectionLeft:
		c.camera.Center[0] -= step
	case DirectionRight:
		c.camera.Center[0] += step
	}
}

func (c *controllerImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	factor := 0.25 * c.camera.Zoom
	if factor < 1 {
		factor = 1
	}
	c.camera.Zoom = clampZoom(c.camera.Zoom + delta*c.zoomSpeed*factor)
}

func (c *controllerImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.camera = New()
}

func (c *controllerImpl) Camera() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.camera
}

func (c *controllerImpl) SetCamera(cam Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cam.Zoom = clampZoom(cam.Zoom)
	c.camera = cam
}

func (c *controllerImpl) PanSpeed() float32 {
	return c.panSpeed
}

func (c *controllerImpl) ZoomSpeed() float32 {
	return c.zoomSpeed
}
