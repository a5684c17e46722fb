package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/bind_group_provider"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/future"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/pipeline"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/shader"
	"github.com/anonymousomeone/mandelbrowser/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// graphicsContext is the root of the GPU ownership tree. Everything else the backend creates is
// derived from device and must be released before it.
type graphicsContext struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
}

func (g *graphicsContext) release() {
	if g.surface != nil {
		g.surface.Release()
		g.surface = nil
	}
	if g.queue != nil {
		g.queue.Release()
		g.queue = nil
	}
	if g.device != nil {
		g.device.Release()
		g.device = nil
	}
	if g.adapter != nil {
		g.adapter.Release()
		g.adapter = nil
	}
	if g.instance != nil {
		g.instance.Release()
		g.instance = nil
	}
}

type wgpuRendererBackend struct {
	mu     *sync.Mutex
	logger log.Logger

	ctx graphicsContext

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	canvas *wgpu.Texture

	// Compute frame state; one encoder per frame.
	computeFrameEncoder *wgpu.CommandEncoder

	// Present frame state, alive from AcquireFrame until Present.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameBuffer  *wgpu.CommandBuffer

	pipelines []pipeline.Pipeline
}

var _ RendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend creates the graphics context for a window surface.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, logger log.Logger) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()

	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		logger:      logger,
		presentMode: wgpu.PresentModeFifo,
	}
	b.ctx.instance = wgpu.CreateInstance(nil)
	b.ctx.surface = b.ctx.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.ctx.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.ctx.surface,
	})
	if err != nil {
		b.ctx.release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.ctx.adapter = adapter
	info := adapter.GetInfo()
	logger.Infof("using adapter %q (%s)", info.Name, info.BackendType)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Mandelbrowser Device",
	})
	if err != nil {
		b.ctx.release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.ctx.device = device
	b.ctx.queue = device.GetQueue()
	logger.Info("device ready")

	return b, nil
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.ctx.surface.GetCapabilities(b.ctx.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	if b.surfaceFormat == nil {
		b.surfaceFormat = &capabilities.Formats[0]
	}

	b.ctx.surface.Configure(b.ctx.adapter, b.ctx.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.logger.Debugf("surface configured %dx%d format=%s present=%s", width, height, *b.surfaceFormat, b.presentMode)
	return nil
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.ctx.device.CreateShaderModule(computeShader.Module())
	if err != nil {
		return fmt.Errorf("create shader module %s: %w", computeShader.Key(), err)
	}
	defer module.Release()

	layouts, err := b.createBindGroupLayouts(p)
	if err != nil {
		return err
	}

	layout, err := b.ctx.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer layout.Release()

	created, err := b.ctx.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	b.pipelines = append(b.pipelines, p)
	return nil
}

func (b *wgpuRendererBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before creating a render pipeline")
	}

	vs, err := b.ctx.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("create shader module %s: %w", vertexShader.Key(), err)
	}
	defer vs.Release()
	fs, err := b.ctx.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("create shader module %s: %w", fragmentShader.Key(), err)
	}
	defer fs.Release()

	layouts, err := b.createBindGroupLayouts(p)
	if err != nil {
		return err
	}

	pipelineLayout, err := b.ctx.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(i)...)
	}

	// The canvas is copied over the whole frame, so there is nothing to blend with.
	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}

	created, err := b.ctx.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	b.pipelines = append(b.pipelines, p)
	return nil
}

// createBindGroupLayouts creates one layout per group declared by p's shaders, hands them to p
// and returns them ordered by group index. Must be called with b.mu held.
func (b *wgpuRendererBackend) createBindGroupLayouts(p pipeline.Pipeline) ([]*wgpu.BindGroupLayout, error) {
	descriptors := p.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}

	created := make(map[int]*wgpu.BindGroupLayout, len(descriptors))
	ordered := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		desc.Label = fmt.Sprintf("%s group %d", p.PipelineKey(), g)
		layout, err := b.ctx.device.CreateBindGroupLayout(&desc)
		if err != nil {
			for _, l := range created {
				l.Release()
			}
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		created[g] = layout
		ordered[g] = layout
	}
	p.SetBindGroupLayouts(created)
	return ordered, nil
}

func (b *wgpuRendererBackend) CreateCanvas(desc common.CanvasDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.ctx.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Fractal Canvas",
		Usage:     desc.Usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        desc.Format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	if b.canvas != nil {
		b.canvas.Release()
	}
	b.canvas = tex
	b.logger.Debugf("canvas created %dx%d", desc.Width, desc.Height)
	return nil
}

func (b *wgpuRendererBackend) InitCanvasView(provider bind_group_provider.BindGroupProvider, binding int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.canvas == nil {
		return errors.New("canvas view requested before the canvas was created")
	}
	view, err := b.canvas.CreateView(nil)
	if err != nil {
		return err
	}
	provider.SetTextureView(binding, view)
	return nil
}

func (b *wgpuRendererBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.ctx.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(binding, samp)
	return nil
}

func (b *wgpuRendererBackend) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return errors.New("vertex data is empty")
	}
	buf, err := b.ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if err := b.ctx.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return err
	}
	provider.SetVertexBuffer(buf, count)
	return nil
}

func (b *wgpuRendererBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		return fmt.Errorf("%s has no bind group layout", provider.Label())
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined ||
			entry.StorageTexture.Access != wgpu.StorageTextureAccessUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view; call InitCanvasView first", binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case isSampler:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler; call InitSampler first", binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}
				var err error
				buf, err = b.ctx.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  entry.Buffer.MinBindingSize,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.ctx.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if err := b.ctx.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			b.logger.Warningf("write %s binding %d: %v", w.Provider.Label(), w.Binding, err)
		}
	}
}

func (b *wgpuRendererBackend) AcquireFrame() (future.Future, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return nil, errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.ctx.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	return future.Resolved("acquire"), nil
}

func (b *wgpuRendererBackend) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.ctx.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Fractal Compute Encoder",
	})
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackend) DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workgroupCount [3]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return
	}

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline().(*wgpu.ComputePipeline))
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	pass.DispatchWorkgroups(workgroupCount[0], workgroupCount[1], workgroupCount[2])
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackend) EndComputeFrame() (future.Future, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return nil, errors.New("no compute frame in progress")
	}
	encoder := b.computeFrameEncoder
	b.computeFrameEncoder = nil
	defer encoder.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	b.ctx.queue.Submit(commandBuffer)
	commandBuffer.Release()

	done := make(chan wgpu.QueueWorkDoneStatus, 1)
	b.ctx.queue.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
		done <- status
	})

	device := b.ctx.device
	return future.New("compute", func() error {
		for {
			select {
			case status := <-done:
				if status != wgpu.QueueWorkDoneStatusSuccess {
					return fmt.Errorf("queue work finished with status %s", status)
				}
				return nil
			default:
				device.Poll(true, nil)
			}
		}
	}), nil
}

func (b *wgpuRendererBackend) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView == nil {
		return errors.New("no acquired surface texture")
	}

	encoder, err := b.ctx.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Present Encoder",
	})
	if err != nil {
		return err
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.frameView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: clear.R, G: clear.G, B: clear.B, A: clear.A,
				},
			},
		},
	})
	return nil
}

func (b *wgpuRendererBackend) DrawCall(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, viewport [2]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	b.framePass.SetBindGroup(0, provider.BindGroup(), nil)
	b.framePass.SetViewport(0, 0, float32(viewport[0]), float32(viewport[1]), 0, 1)
	b.framePass.SetVertexBuffer(0, provider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.Draw(provider.VertexCount(), 1, 0, 0)
}

func (b *wgpuRendererBackend) EndFrame(ready future.Future) (future.Future, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil, errors.New("no render pass in progress")
	}

	endErr := b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err == nil {
		err = endErr
	}
	if err != nil {
		if commandBuffer != nil {
			commandBuffer.Release()
		}
		b.discardFrame()
		return nil, err
	}
	b.frameBuffer = commandBuffer

	queue := b.ctx.queue
	return future.New("graphics", func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.frameBuffer == nil {
			return errors.New("graphics command buffer already consumed")
		}
		queue.Submit(b.frameBuffer)
		b.frameBuffer.Release()
		b.frameBuffer = nil
		return nil
	}, ready), nil
}

func (b *wgpuRendererBackend) Present(drawn future.Future) error {
	// drawn submits under the lock; wait before taking it.
	err := drawn.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.discardFrame()
		return err
	}
	if b.frameSurface == nil {
		return errors.New("no acquired surface texture to present")
	}

	b.ctx.surface.Present()
	b.discardFrame()
	return nil
}

// discardFrame releases the per-frame objects. Must be called with b.mu held.
func (b *wgpuRendererBackend) discardFrame() {
	if b.frameBuffer != nil {
		b.frameBuffer.Release()
		b.frameBuffer = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.discardFrame()
	if b.computeFrameEncoder != nil {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
	}
	for i := len(b.pipelines) - 1; i >= 0; i-- {
		b.pipelines[i].Release()
	}
	b.pipelines = nil
	if b.canvas != nil {
		b.canvas.Release()
		b.canvas = nil
	}
	b.ctx.release()
	b.logger.Debug("graphics context released")
}
