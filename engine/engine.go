package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/camera"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/anonymousomeone/mandelbrowser/engine/profiler"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer"
	"github.com/anonymousomeone/mandelbrowser/engine/window"
	"github.com/anonymousomeone/mandelbrowser/log"
)

// Zoom applied by the R and F keys.
const keyZoomDelta float32 = 0.5

// engine implements the Engine interface.
// Everything runs on the window thread: input callbacks, camera updates and frames.
type engine struct {
	cfg    config.Config
	logger log.Logger

	window     window.Window
	renderer   renderer.Renderer
	controller camera.Controller

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback   func(outcome renderer.FrameOutcome, deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	quitChannel chan struct{}
	quitOnce    sync.Once
	releaseOnce sync.Once
}

// Engine is the viewer shell: it maps input to camera commands and drives the renderer
// once per window loop iteration.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Renderer returns the renderer frames are delegated to.
	Renderer() renderer.Renderer

	// Camera returns the current camera.
	Camera() camera.Camera

	// Pan moves the camera one step in direction.
	Pan(direction camera.Direction)

	// Zoom changes the camera magnification by delta (positive zooms in).
	Zoom(delta float32)

	// AdjustResolution changes the iteration budget by delta, clamped at the configured minimum.
	//
	// Returns:
	//   - uint32: the new iteration budget
	AdjustResolution(delta int32) uint32

	// Reset restores the default camera and applies it to the renderer immediately.
	// The iteration budget is kept.
	Reset()

	// HandleKey applies the command bound to keyCode. Unbound keys are ignored.
	//
	//   W/A/S/D  pan up/left/down/right
	//   E/Q      iteration budget up/down by one resolution step
	//   R/F      zoom in/out
	//   T        reset
	HandleKey(keyCode uint32)

	// HandleScroll zooms by the wheel delta.
	HandleScroll(delta float32)

	// Render merges the camera into the renderer's view and renders one frame.
	// A fatal frame failure panics with a *renderer.FrameError.
	//
	// Returns:
	//   - renderer.FrameOutcome: whether the frame was presented or skipped
	Render() renderer.FrameOutcome

	// Stats returns the frame statistics recorded so far.
	Stats() profiler.Stats

	// EnableProfiler enables the periodic FPS line in the log.
	EnableProfiler()

	// DisableProfiler disables the periodic FPS line. Statistics are still recorded.
	DisableProfiler()

	// SetRenderCallback registers a function called after every frame.
	//
	// Parameters:
	//   - callback: receives the frame outcome and the renderer's delta time in seconds
	SetRenderCallback(callback func(outcome renderer.FrameOutcome, deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the window loop and renders until the window closes or Quit is called.
	// On return, and on a frame panic, the renderer and window have been released.
	Run()

	// Quit stops the loop after the current frame.
	// Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates the window (unless WithWindow is given), a camera controller and the
// renderer (unless WithRenderer is given), and wires the window callbacks.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the configuration is invalid or the window or renderer cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:         config.New(),
		logger:      log.New("engine"),
		quitChannel: make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.profilingEnabled || e.cfg.Profiling() {
		e.profilingEnabled = true
	}

	if e.controller == nil {
		e.controller = camera.NewController(camera.WithConfig(e.cfg))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	e.profiler.SetLogging(e.profilingEnabled)

	ownWindow := false
	if e.window == nil {
		w, err := window.NewWindow(window.WithConfig(e.cfg))
		if err != nil {
			return nil, fmt.Errorf("create window: %w", err)
		}
		e.window = w
		ownWindow = true
	}

	if e.renderer == nil {
		r, err := renderer.NewRenderer(e.window, e.controller.Camera(), renderer.WithConfig(e.cfg))
		if err != nil {
			if ownWindow {
				_ = e.window.Close()
			}
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.logger.Debugf("window resized to %dx%d", width, height)
		e.renderer.Resize(width, height)
	})
	e.window.SetKeyDownCallback(e.HandleKey)
	e.window.SetScrollCallback(e.HandleScroll)
	e.window.SetCloseCallback(func() {
		e.logger.Info("window closed")
		e.signalQuit()
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.controller.Camera()
}

func (e *engine) Pan(direction camera.Direction) {
	e.controller.Pan(direction)
}

func (e *engine) Zoom(delta float32) {
	e.controller.Zoom(delta)
}

func (e *engine) AdjustResolution(delta int32) uint32 {
	iters := e.renderer.AdjustResolution(delta)
	e.logger.Debugf("iteration budget %d", iters)
	return iters
}

func (e *engine) Reset() {
	e.controller.Reset()
	e.renderer.UpdateView(e.controller.Camera())
}

func (e *engine) HandleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyW:
		e.Pan(camera.DirectionUp)
	case common.KeyA:
		e.Pan(camera.DirectionLeft)
	case common.KeyS:
		e.Pan(camera.DirectionDown)
	case common.KeyD:
		e.Pan(camera.DirectionRight)
	case common.KeyE:
		e.AdjustResolution(e.cfg.ResolutionStep())
	case common.KeyQ:
		e.AdjustResolution(-e.cfg.ResolutionStep())
	case common.KeyR:
		e.Zoom(keyZoomDelta)
	case common.KeyF:
		e.Zoom(-keyZoomDelta)
	case common.KeyT:
		e.Reset()
	}
}

func (e *engine) HandleScroll(delta float32) {
	e.Zoom(delta)
}

func (e *engine) Render() renderer.FrameOutcome {
	e.renderer.UpdateView(e.controller.Camera())
	outcome := e.renderer.RenderFrame()
	dt := e.renderer.DeltaTime()
	e.profiler.Record(outcome, dt)
	if e.renderCallback != nil {
		e.renderCallback(outcome, dt)
	}
	return outcome
}

func (e *engine) Stats() profiler.Stats {
	return e.profiler.Stats()
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetLogging(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetLogging(false)
}

func (e *engine) SetRenderCallback(callback func(outcome renderer.FrameOutcome, deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() {
	defer e.release()

	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
}

// frame is one window loop iteration.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	default:
	}

	start := time.Now()
	e.Render()

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel. Uses sync.Once so the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// release frees the renderer before the window its surface was created from.
func (e *engine) release() {
	e.releaseOnce.Do(func() {
		e.renderer.Release()
		if err := e.window.Close(); err != nil {
			e.logger.Warningf("close window: %v", err)
		}
	})
}
