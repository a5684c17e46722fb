// Package config holds the immutable settings shared by the camera, renderer and window.
// A Config is built once with New and passed by value; nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"

	"github.com/anonymousomeone/mandelbrowser/common"
)

const (
	// DefaultTitle is the window title.
	DefaultTitle = "Mandelbrowser"

	// DefaultWidth and DefaultHeight are the startup window dimensions in pixels.
	DefaultWidth  = 512
	DefaultHeight = 512

	// DefaultPanSpeed is the pan distance per command at zoom 1.
	DefaultPanSpeed float32 = 0.25

	// DefaultZoomSpeed scales every zoom delta.
	DefaultZoomSpeed float32 = 0.3

	// DefaultBaseIters is the iteration budget a fresh RenderCamera starts with.
	DefaultBaseIters uint32 = 300

	// DefaultMinIters is the floor the iteration budget can never drop below.
	DefaultMinIters uint32 = 10

	// DefaultResolutionStep is the iteration delta applied by one resolution command.
	DefaultResolutionStep int32 = 10
)

// DefaultWorkgroupSize matches the @workgroup_size of the fractal compute program.
var DefaultWorkgroupSize = [3]uint32{8, 8, 1}

// DefaultClearColor is the background the present pass clears to.
var DefaultClearColor = common.Color{R: 0.3, G: 0.3, B: 0.3, A: 1.0}

// Config is the full set of tunable constants. Fields are unexported so a Config can only be
// produced by New and read through accessors.
type Config struct {
	title           string
	width           int
	height          int
	panSpeed        float32
	zoomSpeed       float32
	baseIters       uint32
	minIters        uint32
	resolutionStep  int32
	workgroupSize   [3]uint32
	clearColor      common.Color
	vsync           bool
	profiling       bool
	fallbackAdapter bool
}

// New builds a Config from the defaults with every option applied in order.
//
// Parameters:
//   - options: functional options overriding individual defaults
//
// Returns:
//   - Config: the resulting immutable configuration
func New(options ...ConfigBuilderOption) Config {
	c := &Config{
		title:          DefaultTitle,
		width:          DefaultWidth,
		height:         DefaultHeight,
		panSpeed:       DefaultPanSpeed,
		zoomSpeed:      DefaultZoomSpeed,
		baseIters:      DefaultBaseIters,
		minIters:       DefaultMinIters,
		resolutionStep: DefaultResolutionStep,
		workgroupSize:  DefaultWorkgroupSize,
		clearColor:     DefaultClearColor,
		vsync:          true,
	}
	for _, opt := range options {
		opt(c)
	}
	return *c
}

// Validate reports the first setting that cannot produce a working renderer.
//
// Returns:
//   - error: nil when the configuration is usable
func (c Config) Validate() error {
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.width, c.height)
	}
	if c.panSpeed <= 0 {
		return fmt.Errorf("config: pan speed must be positive, got %v", c.panSpeed)
	}
	if c.zoomSpeed <= 0 {
		return fmt.Errorf("config: zoom speed must be positive, got %v", c.zoomSpeed)
	}
	if c.minIters == 0 {
		return errors.New("config: minimum iterations must be at least 1")
	}
	if c.baseIters < c.minIters {
		return fmt.Errorf("config: base iterations %d below minimum %d", c.baseIters, c.minIters)
	}
	if c.resolutionStep <= 0 {
		return fmt.Errorf("config: resolution step must be positive, got %d", c.resolutionStep)
	}
	for i, s := range c.workgroupSize {
		if s == 0 {
			return fmt.Errorf("config: workgroup dimension %d is zero", i)
		}
	}
	return nil
}

func (c Config) Title() string {
	return c.title
}

func (c Config) Width() int {
	return c.width
}

func (c Config) Height() int {
	return c.height
}

func (c Config) PanSpeed() float32 {
	return c.panSpeed
}

func (c Config) ZoomSpeed() float32 {
	return c.zoomSpeed
}

func (c Config) BaseIters() uint32 {
	return c.baseIters
}

func (c Config) MinIters() uint32 {
	return c.minIters
}

func (c Config) ResolutionStep() int32 {
	return c.resolutionStep
}

func (c Config) WorkgroupSize() [3]uint32 {
	return c.workgroupSize
}

func (c Config) ClearColor() common.Color {
	return c.clearColor
}

func (c Config) VSync() bool {
	return c.vsync
}

func (c Config) Profiling() bool {
	return c.profiling
}

func (c Config) ForceFallbackAdapter() bool {
	return c.fallbackAdapter
}
