package renderer

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/camera"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/bind_group_provider"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/future"
	"github.com/anonymousomeone/mandelbrowser/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeSurface struct {
	width, height int
}

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s fakeSurface) Width() int                                 { return s.width }
func (s fakeSurface) Height() int                                { return s.height }

// fakeBackend records the order of backend calls and the arguments the renderer cares about.
type fakeBackend struct {
	calls []string

	acquireErr     error
	computeWaitErr error
	presentErr     error

	presentModes []PresentMode
	configured   [][2]int
	canvases     []common.CanvasDescriptor
	dispatches   [][3]uint32
	viewports    [][2]uint32
	writes       []bind_group_provider.BufferWrite
	vertexCount  uint32
	samplers     []common.SamplerStagingData
	clears       []common.Color
	renderPipes  []pipeline.Pipeline

	acquired, computed, drawn future.Future
	released                  bool
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.record("configure")
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) {
	f.record("present-mode")
	f.presentModes = append(f.presentModes, mode)
}

func (f *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	f.record("register-compute")
	return nil
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.record("register-render")
	f.renderPipes = append(f.renderPipes, p)
	return nil
}

func (f *fakeBackend) CreateCanvas(desc common.CanvasDescriptor) error {
	f.record("canvas")
	f.canvases = append(f.canvases, desc)
	return nil
}

func (f *fakeBackend) InitCanvasView(provider bind_group_provider.BindGroupProvider, binding int) error {
	f.record("canvas-view")
	return nil
}

func (f *fakeBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	f.record("sampler")
	f.samplers = append(f.samplers, data)
	return nil
}

func (f *fakeBackend) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count uint32) error {
	f.record("vertex-buffer")
	f.vertexCount = count
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.record("bind-group")
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.record("write")
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) AcquireFrame() (future.Future, error) {
	f.record("acquire")
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquired = future.Resolved("acquire")
	return f.acquired, nil
}

func (f *fakeBackend) BeginComputeFrame() error {
	f.record("begin-compute")
	return nil
}

func (f *fakeBackend) DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workgroupCount [3]uint32) {
	f.record("dispatch")
	f.dispatches = append(f.dispatches, workgroupCount)
}

func (f *fakeBackend) EndComputeFrame() (future.Future, error) {
	f.record("end-compute")
	f.computed = future.New("compute", func() error {
		f.record("compute-done")
		return f.computeWaitErr
	})
	return f.computed, nil
}

func (f *fakeBackend) BeginFrame(clear common.Color) error {
	f.record("begin-frame")
	f.clears = append(f.clears, clear)
	return nil
}

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, viewport [2]uint32) {
	f.record("draw")
	f.viewports = append(f.viewports, viewport)
}

func (f *fakeBackend) EndFrame(ready future.Future) (future.Future, error) {
	f.record("end-frame")
	f.drawn = future.New("graphics", func() error {
		f.record("submit-graphics")
		return nil
	}, ready)
	return f.drawn, nil
}

func (f *fakeBackend) Present(drawn future.Future) error {
	if err := drawn.Wait(); err != nil {
		return err
	}
	if f.presentErr != nil {
		return f.presentErr
	}
	f.record("present")
	return nil
}

func (f *fakeBackend) Release() {
	f.record("release")
	f.released = true
}

// fakeClock returns a time 10ms later on every call and counts the calls.
type fakeClock struct {
	t     time.Time
	calls int
}

func (c *fakeClock) now() time.Time {
	c.calls++
	c.t = c.t.Add(10 * time.Millisecond)
	return c.t
}

func newTestRenderer(t *testing.T, width, height int, options ...RendererBuilderOption) (Renderer, *fakeBackend, *fakeClock) {
	t.Helper()
	backend := &fakeBackend{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	options = append([]RendererBuilderOption{WithBackend(backend), WithClock(clock.now)}, options...)

	r, err := NewRenderer(fakeSurface{width, height}, camera.New(), options...)
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	return r, backend, clock
}

var frameCalls = []string{
	"acquire", "write", "begin-compute", "dispatch", "end-compute",
	"begin-frame", "draw", "end-frame", "compute-done", "submit-graphics", "present",
}

func TestNewRendererInitialization(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)

	want := []string{
		"present-mode", "configure", "register-compute", "register-render",
		"sampler", "vertex-buffer", "canvas", "canvas-view", "canvas-view", "bind-group", "bind-group",
	}
	if !reflect.DeepEqual(backend.calls, want) {
		t.Errorf("init calls = %v, want %v", backend.calls, want)
	}
	if got := backend.presentModes; len(got) != 1 || got[0] != PresentModeVSync {
		t.Errorf("present modes = %v, want [vsync]", got)
	}
	if got := backend.canvases[0]; got.Width != 512 || got.Height != 512 || got.Format != CanvasFormat || got.Usage != common.CanvasUsage {
		t.Errorf("canvas = %+v", got)
	}
	if backend.vertexCount != 3 {
		t.Errorf("vertex count = %d, want 3", backend.vertexCount)
	}
	if len(backend.samplers) != 1 {
		t.Fatalf("samplers = %d, want 1", len(backend.samplers))
	}
	if s := backend.samplers[0]; s.MagFilter != wgpu.FilterModeLinear || s.MinFilter != wgpu.FilterModeLinear || s.MipmapFilter != wgpu.MipmapFilterModeLinear {
		t.Errorf("sampler filters = %v/%v/%v, want linear", s.MagFilter, s.MinFilter, s.MipmapFilter)
	}
	if len(backend.renderPipes) != 1 {
		t.Fatalf("render pipelines = %d, want 1", len(backend.renderPipes))
	}
	if p := backend.renderPipes[0]; p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.CullMode() != wgpu.CullModeNone {
		t.Errorf("present pipeline topology = %v cull = %v, want triangle list without culling", p.Topology(), p.CullMode())
	}
	if got := r.IterationBudget(); got != config.DefaultBaseIters {
		t.Errorf("IterationBudget() = %d, want %d", got, config.DefaultBaseIters)
	}
	if got := r.LastFrameState(); got != FrameStateIdle {
		t.Errorf("LastFrameState() = %v, want idle", got)
	}
}

func TestNewRendererErrors(t *testing.T) {
	tests := []struct {
		name    string
		surface fakeSurface
		options []RendererBuilderOption
	}{
		{"zero width", fakeSurface{0, 512}, nil},
		{"zero height", fakeSurface{512, 0}, nil},
		{"workgroup mismatch", fakeSurface{512, 512}, []RendererBuilderOption{
			WithConfig(config.New(config.WithWorkgroupSize([3]uint32{16, 16, 1}))),
		}},
		{"invalid config", fakeSurface{512, 512}, []RendererBuilderOption{
			WithConfig(config.New(config.WithBaseIters(5))),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			options := append([]RendererBuilderOption{WithBackend(backend)}, tt.options...)
			r, err := NewRenderer(tt.surface, camera.New(), options...)
			if err == nil {
				t.Fatal("NewRenderer() error = nil")
			}
			if r != nil {
				t.Error("NewRenderer() returned a renderer alongside an error")
			}
			if len(backend.calls) != 0 {
				t.Errorf("backend used before validation: %v", backend.calls)
			}
		})
	}
}

func TestRenderFrameProtocolOrder(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)
	backend.calls = nil

	if got := r.RenderFrame(); got != FramePresented {
		t.Fatalf("RenderFrame() = %v, want presented", got)
	}
	if !reflect.DeepEqual(backend.calls, frameCalls) {
		t.Errorf("frame calls = %v, want %v", backend.calls, frameCalls)
	}
	if got := r.LastFrameState(); got != FrameStatePresented {
		t.Errorf("LastFrameState() = %v, want presented", got)
	}
	if got := backend.viewports[0]; got != [2]uint32{512, 512} {
		t.Errorf("viewport = %v, want [512 512]", got)
	}
	if len(backend.clears) != 1 || backend.clears[0] != config.DefaultClearColor {
		t.Errorf("clear colors = %v, want [%v]", backend.clears, config.DefaultClearColor)
	}
}

func TestRenderFrameUsesConfiguredClearColor(t *testing.T) {
	background := common.Color{R: 0, G: 0, B: 0.1, A: 1}
	r, backend, _ := newTestRenderer(t, 64, 64, WithConfig(config.New(config.WithClearColor(background))))
	r.RenderFrame()

	if len(backend.clears) != 1 || backend.clears[0] != background {
		t.Errorf("clear colors = %v, want [%v]", backend.clears, background)
	}
}

func TestRenderFrameJoinsAcquireAndCompute(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 64)
	r.RenderFrame()

	if !future.DependsOn(backend.drawn, backend.acquired) {
		t.Error("graphics does not depend on acquire")
	}
	if !future.DependsOn(backend.drawn, backend.computed) {
		t.Error("graphics does not depend on compute")
	}
	if !backend.computed.Signaled() {
		t.Error("compute future not waited on before present")
	}
}

func TestRenderFrameUploadsParams(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 64)
	r.UpdateView(camera.Camera{Center: mgl32.Vec2{-0.5, 0.25}, Zoom: 3})
	r.RenderFrame()

	if len(backend.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.writes))
	}
	w := backend.writes[0]
	if w.Binding != 1 {
		t.Errorf("params binding = %d, want 1", w.Binding)
	}
	want := RenderCamera{Translation: mgl32.Vec2{-0.5, 0.25}, Zoom: 3, MaxIters: 300}.PushConstants().Bytes()
	if !reflect.DeepEqual(w.Data, want) {
		t.Errorf("params = %v, want %v", w.Data, want)
	}
}

func TestRenderFrameDispatchCount(t *testing.T) {
	tests := []struct {
		width, height int
		want          [3]uint32
	}{
		{512, 512, [3]uint32{64, 64, 1}},
		{513, 1, [3]uint32{65, 1, 1}},
		{7, 9, [3]uint32{1, 2, 1}},
		{800, 600, [3]uint32{100, 75, 1}},
	}
	for _, tt := range tests {
		r, backend, _ := newTestRenderer(t, 512, 512)
		r.Resize(tt.width, tt.height)
		r.RenderFrame()
		if got := backend.dispatches[0]; got != tt.want {
			t.Errorf("%dx%d: dispatch = %v, want %v", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestRenderFrameZeroSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 300},
		{"zero height", 300, 0},
		{"both zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, backend, clock := newTestRenderer(t, 512, 512)
			r.Resize(tt.width, tt.height)
			backend.calls = nil
			clockCalls := clock.calls
			before := r.RenderCamera()

			if got := r.RenderFrame(); got != FrameSkippedZeroSize {
				t.Fatalf("RenderFrame() = %v, want skipped zero size", got)
			}
			if len(backend.calls) != 0 {
				t.Errorf("backend calls = %v, want none", backend.calls)
			}
			if clock.calls != clockCalls {
				t.Error("zero-size frame advanced the frame timestamp")
			}
			if r.RenderCamera() != before {
				t.Error("zero-size frame changed the render camera")
			}
			if r.DeltaTime() != 0 {
				t.Errorf("DeltaTime() = %v, want 0", r.DeltaTime())
			}
		})
	}
}

func TestRenderFrameAcquireFailure(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)
	backend.acquireErr = errors.New("surface outdated")
	backend.calls = nil

	if got := r.RenderFrame(); got != FrameSkippedAcquire {
		t.Fatalf("RenderFrame() = %v, want skipped acquire", got)
	}
	if !reflect.DeepEqual(backend.calls, []string{"acquire"}) {
		t.Errorf("calls = %v, want [acquire]", backend.calls)
	}
	if got := r.LastFrameState(); got != FrameStateIdle {
		t.Errorf("LastFrameState() = %v, want idle", got)
	}

	backend.acquireErr = nil
	backend.calls = nil
	if got := r.RenderFrame(); got != FramePresented {
		t.Fatalf("RenderFrame() after recovery = %v, want presented", got)
	}
	want := append([]string{"configure"}, frameCalls...)
	if !reflect.DeepEqual(backend.calls, want) {
		t.Errorf("recovery calls = %v, want %v", backend.calls, want)
	}
}

func TestRenderFrameFatalPanics(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)
	backend.computeWaitErr = errors.New("device lost")

	defer func() {
		rec := recover()
		frameErr, ok := rec.(*FrameError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *FrameError", rec, rec)
		}
		if frameErr.State != FrameStateComputeSubmitted {
			t.Errorf("State = %v, want compute submitted", frameErr.State)
		}
		if !errors.Is(frameErr, backend.computeWaitErr) {
			t.Errorf("error %v does not wrap the compute failure", frameErr)
		}
		for _, c := range backend.calls {
			if c == "submit-graphics" || c == "present" {
				t.Errorf("%s ran after the compute failure", c)
			}
		}
		if got := r.LastFrameState(); got != FrameStateComputeSubmitted {
			t.Errorf("LastFrameState() = %v, want compute submitted", got)
		}
	}()
	r.RenderFrame()
}

func TestRenderFramePresentFailureAfterSubmit(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)
	backend.presentErr = errors.New("surface lost")

	defer func() {
		frameErr, ok := recover().(*FrameError)
		if !ok {
			t.Fatal("RenderFrame did not panic with *FrameError")
		}
		if frameErr.State != FrameStateGraphicsSubmitted {
			t.Errorf("State = %v, want graphics submitted", frameErr.State)
		}
		if !errors.Is(frameErr, backend.presentErr) {
			t.Errorf("error %v does not wrap the present failure", frameErr)
		}
		if backend.calls[len(backend.calls)-1] != "submit-graphics" {
			t.Errorf("last call = %q, want submit-graphics", backend.calls[len(backend.calls)-1])
		}
	}()
	r.RenderFrame()
}

func TestResizeIsDeferred(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 512, 512)
	backend.calls = nil

	r.Resize(100, 50)
	if len(backend.calls) != 0 {
		t.Fatalf("Resize issued backend calls: %v", backend.calls)
	}

	r.RenderFrame()
	if got := backend.configured[len(backend.configured)-1]; got != [2]int{100, 50} {
		t.Errorf("configured = %v, want [100 50]", got)
	}
	canvas := backend.canvases[len(backend.canvases)-1]
	if canvas.Width != 100 || canvas.Height != 50 {
		t.Errorf("canvas = %dx%d, want 100x50", canvas.Width, canvas.Height)
	}
	if got := backend.viewports[0]; got != [2]uint32{100, 50} {
		t.Errorf("viewport = %v, want [100 50]", got)
	}

	canvases := len(backend.canvases)
	r.Resize(100, 50)
	r.RenderFrame()
	if len(backend.canvases) != canvases {
		t.Error("same-size resize recreated the canvas")
	}
}

func TestUpdateViewKeepsBudget(t *testing.T) {
	r, _, _ := newTestRenderer(t, 64, 64)

	if got := r.AdjustResolution(10); got != 310 {
		t.Fatalf("AdjustResolution(10) = %d, want 310", got)
	}
	r.UpdateView(camera.Camera{Center: mgl32.Vec2{0.3, 0.4}, Zoom: 4})

	rc := r.RenderCamera()
	if rc.MaxIters != 310 {
		t.Errorf("MaxIters = %d, want 310", rc.MaxIters)
	}
	if rc.Zoom != 4 || rc.Translation != (mgl32.Vec2{0.3, 0.4}) {
		t.Errorf("view = %v/%v", rc.Translation, rc.Zoom)
	}
}

func TestAdjustResolutionFloor(t *testing.T) {
	r, _, _ := newTestRenderer(t, 64, 64)
	if got := r.AdjustResolution(-10000); got != config.DefaultMinIters {
		t.Errorf("AdjustResolution(-10000) = %d, want %d", got, config.DefaultMinIters)
	}
}

func TestDeltaTime(t *testing.T) {
	r, _, _ := newTestRenderer(t, 64, 64)
	r.RenderFrame()
	if got := r.DeltaTime(); got < 0.0099 || got > 0.0101 {
		t.Errorf("DeltaTime() = %v, want 0.01", got)
	}
}

func TestSetPresentModeReconfigures(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 64)
	r.SetPresentMode(PresentModeUncapped)
	backend.calls = nil

	r.RenderFrame()
	if backend.calls[0] != "configure" {
		t.Errorf("first call = %s, want configure", backend.calls[0])
	}
	if got := backend.presentModes[len(backend.presentModes)-1]; got != PresentModeUncapped {
		t.Errorf("present mode = %v, want uncapped", got)
	}
}

func TestReleaseOnce(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 64)
	r.Release()
	r.Release()

	n := 0
	for _, c := range backend.calls {
		if c == "release" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("backend released %d times, want 1", n)
	}
}
