package camera

import "github.com/anonymousomeone/mandelbrowser/engine/config"

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*controllerImpl)

// WithPanSpeed sets the pan distance per command at zoom 1.
//
// Parameters:
//   - speed: world units moved per pan at natural scale
//
// Returns:
//   - ControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) ControllerOption {
	return func(c *controllerImpl) {
		c.panSpeed = speed
	}
}

// WithZoomSpeed sets the multiplier applied to every zoom delta.
//
// Parameters:
//   - speed: zoom delta multiplier
//
// Returns:
//   - ControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) ControllerOption {
	return func(c *controllerImpl) {
		c.zoomSpeed = speed
	}
}

// WithConfig copies the pan and zoom speeds out of cfg.
//
// Parameters:
//   - cfg: the application configuration
//
// Returns:
//   - ControllerOption: functional option to set both speeds
func WithConfig(cfg config.Config) ControllerOption {
	return func(c *controllerImpl) {
		c.panSpeed = cfg.PanSpeed()
		c.zoomSpeed = cfg.ZoomSpeed()
	}
}

// WithCamera sets the starting camera instead of New().
func WithCamera(cam Camera) ControllerOption {
	return func(c *controllerImpl) {
		c.camera = cam
	}
}
