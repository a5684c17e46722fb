package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/camera"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/bind_group_provider"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/future"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/pipeline"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/shader"
	"github.com/anonymousomeone/mandelbrowser/log"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// PipelineKeyFractal is the key of the compute pipeline writing the canvas.
	PipelineKeyFractal = "fractal"
	// PipelineKeyPresent is the key of the render pipeline sampling the canvas onto the surface.
	PipelineKeyPresent = "present"

	// CanvasFormat is the texel format of the canvas, shared by the storage and sampled bindings.
	CanvasFormat = wgpu.TextureFormatRGBA8Unorm
)

// Surface is the window side of the renderer: where the swapchain is created and how big it is.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// bindings are the binding indices resolved from the programs' variable names.
type bindings struct {
	computeCanvas  int
	computeParams  int
	presentCanvas  int
	presentSampler int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger log.Logger
	cfg    config.Config

	backend RendererBackend

	computePipeline pipeline.Pipeline
	presentPipeline pipeline.Pipeline
	computeProvider bind_group_provider.BindGroupProvider
	presentProvider bind_group_provider.BindGroupProvider
	bindings        bindings

	renderCamera RenderCamera
	timer        *frameTimer

	width, height             int
	canvasWidth, canvasHeight uint32
	resizePending             bool
	lastState                 FrameState
	released                  bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter *bool
	pendingPresentMode   *PresentMode
	now                  func() time.Time
}

// Renderer owns every GPU resource of the viewer and produces one frame per RenderFrame call:
// the fractal compute pass writes the canvas, the present pass samples it onto the acquired
// swapchain image, and the image is presented once both the acquire and the compute work are done.
//
// A Renderer is driven from a single goroutine; the mutex only guards against Resize arriving
// from a window callback while a frame is being recorded.
type Renderer interface {
	// RenderFrame runs one frame of the acquire → compute → join → graphics → present protocol.
	// Zero-size surfaces and failed acquisitions skip the frame. Any other failure panics with
	// a *FrameError.
	//
	// Returns:
	//   - FrameOutcome: whether the frame was presented or why it was skipped
	RenderFrame() FrameOutcome

	// Resize records the new surface size. The swapchain and canvas follow at the next RenderFrame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// UpdateView merges a camera into the render camera. The iteration budget is kept.
	//
	// Parameters:
	//   - cam: the camera to take translation and zoom from
	UpdateView(cam camera.Camera)

	// AdjustResolution changes the iteration budget by delta, never going below the configured minimum.
	//
	// Parameters:
	//   - delta: signed iteration change
	//
	// Returns:
	//   - uint32: the new iteration budget
	AdjustResolution(delta int32) uint32

	// IterationBudget returns the current max iteration count.
	IterationBudget() uint32

	// RenderCamera returns a copy of the current render camera.
	RenderCamera() RenderCamera

	// DeltaTime returns the seconds between the last two rendered frames.
	DeltaTime() float32

	// LastFrameState returns the state the most recent RenderFrame call reached.
	LastFrameState() FrameState

	// SetPresentMode switches between vsync and uncapped presentation from the next frame on.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release frees the providers, pipelines, canvas and finally the graphics context.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for surface, starting from the initial camera.
//
// Initialization loads and validates the embedded programs, creates the graphics context,
// configures the swapchain, builds both pipelines, allocates the canvas, the sampler and the
// fullscreen triangle. Any failure releases what was created and is returned; no partially
// initialized renderer escapes.
//
// Parameters:
//   - surface: the window surface to render to
//   - initial: the starting camera
//   - options: functional options configuring the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: a descriptive error when any initialization step fails
func NewRenderer(surface Surface, initial camera.Camera, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:     &sync.Mutex{},
		logger: log.New("renderer"),
		cfg:    config.New(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(r)
	}

	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	computeShader, vertexShader, fragmentShader, err := shader.Programs()
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	if got, want := computeShader.WorkgroupSize(), r.cfg.WorkgroupSize(); got != want {
		return nil, fmt.Errorf("compute program workgroup size %v does not match configured %v", got, want)
	}

	r.width, r.height = surface.Width(), surface.Height()
	if r.width <= 0 || r.height <= 0 {
		return nil, fmt.Errorf("surface has zero size %dx%d", r.width, r.height)
	}

	if r.backend == nil {
		force := r.cfg.ForceFallbackAdapter()
		if r.forceFallbackAdapter != nil {
			force = *r.forceFallbackAdapter
		}
		backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), force, r.logger)
		if err != nil {
			return nil, fmt.Errorf("create graphics context: %w", err)
		}
		r.backend = backend
	}

	mode := PresentModeUncapped
	if r.cfg.VSync() {
		mode = PresentModeVSync
	}
	if r.pendingPresentMode != nil {
		mode = *r.pendingPresentMode
	}
	r.backend.SetPresentMode(mode)

	if err := r.init(computeShader, vertexShader, fragmentShader); err != nil {
		r.Release()
		return nil, err
	}

	r.renderCamera = NewRenderCamera(r.cfg.BaseIters()).Merge(initial)
	r.timer = newFrameTimer(r.now)
	r.logger.Infof("renderer ready %dx%d, %d iterations, present mode %s", r.width, r.height, r.renderCamera.MaxIters, mode)
	return r, nil
}

func (r *renderer) init(computeShader, vertexShader, fragmentShader shader.Shader) error {
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}

	r.computePipeline = pipeline.NewPipeline(PipelineKeyFractal, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(computeShader),
	)
	if err := r.backend.RegisterComputePipeline(r.computePipeline); err != nil {
		return fmt.Errorf("create %s pipeline: %w", PipelineKeyFractal, err)
	}
	r.presentPipeline = pipeline.NewPipeline(PipelineKeyPresent, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		// The vertex stage flips y, which reverses the triangle's winding.
		pipeline.WithCullMode(wgpu.CullModeNone),
	)
	if err := r.backend.RegisterRenderPipeline(r.presentPipeline); err != nil {
		return fmt.Errorf("create %s pipeline: %w", PipelineKeyPresent, err)
	}

	var err error
	if r.bindings, err = resolveBindings(computeShader, fragmentShader); err != nil {
		return err
	}

	r.computeProvider = bind_group_provider.NewBindGroupProvider(PipelineKeyFractal,
		bind_group_provider.WithBindGroupLayout(r.computePipeline.BindGroupLayout(0)),
	)
	r.presentProvider = bind_group_provider.NewBindGroupProvider(PipelineKeyPresent,
		bind_group_provider.WithBindGroupLayout(r.presentPipeline.BindGroupLayout(0)),
	)

	if err := r.backend.InitSampler(r.presentProvider, r.bindings.presentSampler, common.SamplerStagingData{
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
	}); err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	triangle := FullscreenTriangle()
	if err := r.backend.InitVertexBuffer(r.presentProvider, fullscreenTriangleBytes(), uint32(len(triangle))); err != nil {
		return fmt.Errorf("upload geometry: %w", err)
	}

	if err := r.rebuildCanvas(uint32(r.width), uint32(r.height)); err != nil {
		return fmt.Errorf("allocate canvas: %w", err)
	}
	return nil
}

// resolveBindings looks up the binding indices by variable name so the programs stay the
// single source of truth for their layout.
func resolveBindings(computeShader, fragmentShader shader.Shader) (bindings, error) {
	var b bindings
	lookups := []struct {
		s    shader.Shader
		name string
		dst  *int
	}{
		{computeShader, "canvas", &b.computeCanvas},
		{computeShader, "params", &b.computeParams},
		{fragmentShader, "canvas", &b.presentCanvas},
		{fragmentShader, "canvas_sampler", &b.presentSampler},
	}
	for _, l := range lookups {
		binding, ok := l.s.BindGroupFromVarName(0, l.name)
		if !ok {
			return bindings{}, fmt.Errorf("%s program declares no %q binding in group 0", l.s.Key(), l.name)
		}
		*l.dst = binding
	}
	return b, nil
}

// rebuildCanvas recreates the canvas at the given size and rebuilds both bind groups around it.
// Buffers, the sampler and the vertex buffer are kept.
func (r *renderer) rebuildCanvas(width, height uint32) error {
	r.computeProvider.ReleaseBindGroup()
	r.presentProvider.ReleaseBindGroup()

	if err := r.backend.CreateCanvas(common.CanvasDescriptor{
		Width:  width,
		Height: height,
		Format: CanvasFormat,
		Usage:  common.CanvasUsage,
	}); err != nil {
		return err
	}
	if err := r.backend.InitCanvasView(r.computeProvider, r.bindings.computeCanvas); err != nil {
		return err
	}
	if err := r.backend.InitCanvasView(r.presentProvider, r.bindings.presentCanvas); err != nil {
		return err
	}
	if err := r.backend.InitBindGroup(r.computeProvider, r.computePipeline.BindGroupLayoutDescriptors()[0]); err != nil {
		return err
	}
	if err := r.backend.InitBindGroup(r.presentProvider, r.presentPipeline.BindGroupLayoutDescriptors()[0]); err != nil {
		return err
	}

	r.canvasWidth, r.canvasHeight = width, height
	return nil
}

// applyResize reconfigures the swapchain and, when the size changed, the canvas.
func (r *renderer) applyResize() error {
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	w, h := uint32(r.width), uint32(r.height)
	if w != r.canvasWidth || h != r.canvasHeight {
		if err := r.rebuildCanvas(w, h); err != nil {
			return fmt.Errorf("resize canvas: %w", err)
		}
	}
	r.resizePending = false
	return nil
}

func (r *renderer) RenderFrame() FrameOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		r.fail(FrameStateIdle, errors.New("renderer released"))
	}

	r.lastState = FrameStateIdle
	if r.width <= 0 || r.height <= 0 {
		return FrameSkippedZeroSize
	}
	r.timer.tick()

	if r.resizePending {
		if err := r.applyResize(); err != nil {
			r.fail(FrameStateIdle, err)
		}
	}

	acquired, err := r.backend.AcquireFrame()
	if err != nil {
		r.logger.Warningf("skipping frame, acquire failed: %v", err)
		r.resizePending = true
		return FrameSkippedAcquire
	}
	r.lastState = FrameStateAcquired

	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: r.computeProvider,
			Binding:  r.bindings.computeParams,
			Data:     r.renderCamera.PushConstants().Bytes(),
		},
	})
	if err := r.backend.BeginComputeFrame(); err != nil {
		r.fail(FrameStateAcquired, fmt.Errorf("begin compute: %w", err))
	}
	r.backend.DispatchCompute(r.computePipeline, r.computeProvider,
		common.WorkgroupCount(r.canvasWidth, r.canvasHeight, r.cfg.WorkgroupSize()))
	computed, err := r.backend.EndComputeFrame()
	if err != nil {
		r.fail(FrameStateAcquired, fmt.Errorf("submit compute: %w", err))
	}
	r.lastState = FrameStateComputeSubmitted

	ready := future.Join("acquire+compute", acquired, computed)

	if err := r.backend.BeginFrame(r.cfg.ClearColor()); err != nil {
		r.fail(FrameStateComputeSubmitted, fmt.Errorf("begin present pass: %w", err))
	}
	r.backend.DrawCall(r.presentPipeline, r.presentProvider, [2]uint32{uint32(r.width), uint32(r.height)})
	drawn, err := r.backend.EndFrame(ready)
	if err != nil {
		r.fail(FrameStateComputeSubmitted, fmt.Errorf("record present pass: %w", err))
	}

	// The graphics submit runs inside drawn, which Present waits on.
	if err := r.backend.Present(drawn); err != nil {
		r.logger.Debugf("frame graph:\n%s", future.Describe(drawn))
		r.fail(presentFailureState(drawn), fmt.Errorf("present: %w", err))
	}
	r.lastState = FrameStatePresented
	return FramePresented
}

// presentFailureState is how far a frame got when Present failed. Graphics work counts as
// submitted only once drawn completed without error; a failed compute dependency or submit
// leaves the frame at FrameStateComputeSubmitted.
func presentFailureState(drawn future.Future) FrameState {
	if drawn.Signaled() && drawn.Wait() == nil {
		return FrameStateGraphicsSubmitted
	}
	return FrameStateComputeSubmitted
}

// fail logs and panics with a *FrameError. The deferred unlock in RenderFrame still runs.
func (r *renderer) fail(state FrameState, err error) {
	r.lastState = state
	frameErr := &FrameError{State: state, Err: err}
	r.logger.Errorf("%v", frameErr)
	panic(frameErr)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	r.resizePending = true
	r.logger.Debugf("resize to %dx%d pending", width, height)
}

func (r *renderer) UpdateView(cam camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderCamera = r.renderCamera.Merge(cam)
}

func (r *renderer) AdjustResolution(delta int32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderCamera = r.renderCamera.AdjustResolution(delta, r.cfg.MinIters())
	r.logger.Debugf("iteration budget now %d", r.renderCamera.MaxIters)
	return r.renderCamera.MaxIters
}

func (r *renderer) IterationBudget() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderCamera.MaxIters
}

func (r *renderer) RenderCamera() RenderCamera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderCamera
}

func (r *renderer) DeltaTime() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.delta
}

func (r *renderer) LastFrameState() FrameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastState
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
	r.resizePending = true
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	if r.computeProvider != nil {
		r.computeProvider.Release()
	}
	if r.presentProvider != nil {
		r.presentProvider.Release()
	}
	if r.backend != nil {
		r.backend.Release()
	}
}
