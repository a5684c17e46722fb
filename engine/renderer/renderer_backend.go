package renderer

import (
	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/bind_group_provider"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/future"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return "unknown"
	}
}

// RendererBackend is the GPU API surface the Renderer drives. The wgpu implementation owns the
// graphics context (instance, adapter, device, queue, surface) and every resource created from it;
// pipelines and bind group providers only hold handles that stay valid until Release.
//
// One frame is driven as:
//
//	AcquireFrame → WriteBuffers → BeginComputeFrame → DispatchCompute → EndComputeFrame
//	→ BeginFrame → DrawCall → EndFrame(join(acquire, compute)) → Present
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain for the given size with the current present mode.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: if the surface cannot be configured
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// RegisterComputePipeline creates the shader module, bind group layouts, pipeline layout and
	// compute pipeline for p and stores them on it.
	//
	// Parameters:
	//   - p: a compute pipeline description
	//
	// Returns:
	//   - error: if any GPU object cannot be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// RegisterRenderPipeline creates the shader modules, bind group layouts, pipeline layout and
	// render pipeline for p, targeting the configured surface format.
	//
	// Parameters:
	//   - p: a render pipeline description
	//
	// Returns:
	//   - error: if any GPU object cannot be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// CreateCanvas allocates the intermediate image, replacing and releasing any previous one.
	//
	// Parameters:
	//   - desc: the canvas size, format and usage
	//
	// Returns:
	//   - error: if the texture cannot be created
	CreateCanvas(desc common.CanvasDescriptor) error

	// InitCanvasView creates a view of the current canvas and stores it on provider at binding.
	//
	// Parameters:
	//   - provider: the provider receiving the view
	//   - binding: the binding index the view is bound at
	//
	// Returns:
	//   - error: if there is no canvas or the view cannot be created
	InitCanvasView(provider bind_group_provider.BindGroupProvider, binding int) error

	// InitSampler creates a sampler from staging data and stores it on provider at binding.
	//
	// Parameters:
	//   - provider: the provider receiving the sampler
	//   - binding: the binding index of the sampler
	//   - data: sampler settings; zero values fall back to clamp-to-edge and linear filtering
	//
	// Returns:
	//   - error: if the sampler cannot be created
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error

	// InitVertexBuffer uploads vertex data once and stores the buffer on provider.
	//
	// Parameters:
	//   - provider: the provider receiving the vertex buffer
	//   - data: the raw vertex bytes
	//   - count: the number of vertices in data
	//
	// Returns:
	//   - error: if the buffer cannot be created or written
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count uint32) error

	// InitBindGroup creates missing buffers and the bind group for provider from descriptor.
	// Texture views and samplers must already be present on the provider.
	//
	// Parameters:
	//   - provider: the provider to build the bind group for
	//   - descriptor: the layout descriptor the group is created against
	//
	// Returns:
	//   - error: if a resource is missing or the bind group cannot be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues every write. Writes targeting a missing buffer are skipped.
	//
	// Parameters:
	//   - writes: the buffer writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// AcquireFrame requests the next swapchain image.
	//
	// Returns:
	//   - future.Future: signaled once the image is ready to be rendered into
	//   - error: if no image could be acquired; the frame must be skipped
	AcquireFrame() (future.Future, error)

	// BeginComputeFrame creates the command encoder compute passes are recorded into.
	//
	// Returns:
	//   - error: if the encoder cannot be created
	BeginComputeFrame() error

	// DispatchCompute records one compute pass binding provider at group 0.
	//
	// Parameters:
	//   - p: the registered compute pipeline
	//   - provider: the provider bound at group 0
	//   - workgroupCount: the dispatch grid
	DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workgroupCount [3]uint32)

	// EndComputeFrame submits the recorded compute work.
	//
	// Returns:
	//   - future.Future: signaled once the queue reports the submitted work complete
	//   - error: if the command buffer cannot be finished
	EndComputeFrame() (future.Future, error)

	// BeginFrame starts the present render pass over the acquired image, clearing to clear.
	//
	// Parameters:
	//   - clear: the background color
	//
	// Returns:
	//   - error: if no image is acquired or the encoder cannot be created
	BeginFrame(clear common.Color) error

	// DrawCall binds p and provider, sets the viewport and draws provider's vertex buffer once.
	//
	// Parameters:
	//   - p: the registered render pipeline
	//   - provider: the provider bound at group 0 and holding the vertex buffer
	//   - viewport: the viewport size in pixels
	DrawCall(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, viewport [2]uint32)

	// EndFrame ends the render pass and finishes the graphics command buffer. Submission is
	// chained after ready: it happens when the returned future is waited on.
	//
	// Parameters:
	//   - ready: the joined acquire and compute futures
	//
	// Returns:
	//   - future.Future: signaled once ready completed and the graphics work is submitted
	//   - error: if the command buffer cannot be finished
	EndFrame(ready future.Future) (future.Future, error)

	// Present waits for drawn and hands the acquired image to the display.
	//
	// Parameters:
	//   - drawn: the future returned by EndFrame
	//
	// Returns:
	//   - error: if drawn failed or there is nothing to present
	Present(drawn future.Future) error

	// Release frees every GPU object in reverse ownership order.
	Release()
}
