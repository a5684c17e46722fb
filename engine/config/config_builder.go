package config

import "github.com/anonymousomeone/mandelbrowser/common"

// ConfigBuilderOption is a functional option applied to a Config during New.
type ConfigBuilderOption func(*Config)

// WithTitle sets the window title.
func WithTitle(title string) ConfigBuilderOption {
	return func(c *Config) {
		c.title = title
	}
}

// WithSize sets the startup window size in pixels.
//
// Parameters:
//   - width: the window width
//   - height: the window height
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithSize(width, height int) ConfigBuilderOption {
	return func(c *Config) {
		c.width = width
		c.height = height
	}
}

// WithPanSpeed sets the pan distance applied per pan command at zoom 1.
// The effective distance is divided by the current zoom.
func WithPanSpeed(speed float32) ConfigBuilderOption {
	return func(c *Config) {
		c.panSpeed = speed
	}
}

// WithZoomSpeed sets the factor every zoom delta is multiplied by.
func WithZoomSpeed(speed float32) ConfigBuilderOption {
	return func(c *Config) {
		c.zoomSpeed = speed
	}
}

// WithBaseIters sets the iteration budget of a freshly constructed RenderCamera.
func WithBaseIters(iters uint32) ConfigBuilderOption {
	return func(c *Config) {
		c.baseIters = iters
	}
}

// WithMinIters sets the floor for resolution adjustments.
func WithMinIters(iters uint32) ConfigBuilderOption {
	return func(c *Config) {
		c.minIters = iters
	}
}

// WithResolutionStep sets the iteration delta of one resolution up/down command.
func WithResolutionStep(step int32) ConfigBuilderOption {
	return func(c *Config) {
		c.resolutionStep = step
	}
}

// WithWorkgroupSize sets the expected compute workgroup size. The renderer refuses to start
// when it disagrees with the compute program.
func WithWorkgroupSize(size [3]uint32) ConfigBuilderOption {
	return func(c *Config) {
		c.workgroupSize = size
	}
}

// WithClearColor sets the present pass background color.
func WithClearColor(color common.Color) ConfigBuilderOption {
	return func(c *Config) {
		c.clearColor = color
	}
}

// WithVSync toggles FIFO presentation. Disabling it presents immediately and may tear.
func WithVSync(enabled bool) ConfigBuilderOption {
	return func(c *Config) {
		c.vsync = enabled
	}
}

// WithProfiling enables the periodic frame statistics log line.
func WithProfiling(enabled bool) ConfigBuilderOption {
	return func(c *Config) {
		c.profiling = enabled
	}
}

// WithForceFallbackAdapter requests the software fallback adapter instead of a hardware GPU.
func WithForceFallbackAdapter(force bool) ConfigBuilderOption {
	return func(c *Config) {
		c.fallbackAdapter = force
	}
}
