package shader

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestParseWorkgroupSize(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   [3]uint32
	}{
		{"missing", "fn f() {}", [3]uint32{1, 1, 1}},
		{"one dimension", "@compute @workgroup_size(64) fn f() {}", [3]uint32{64, 1, 1}},
		{"two dimensions", "@compute @workgroup_size(8, 4) fn f() {}", [3]uint32{8, 4, 1}},
		{"three dimensions", "@compute @workgroup_size( 8 , 8 , 1 ) fn f() {}", [3]uint32{8, 8, 1}},
		{"commented out", "// @workgroup_size(2, 2, 2)\n@compute @workgroup_size(4, 4, 1) fn f() {}", [3]uint32{4, 4, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseWorkgroupSize(tt.source); got != tt.want {
				t.Errorf("parseWorkgroupSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEntryPoint(t *testing.T) {
	src := "/* @vertex fn old() {} */\n@vertex\nfn vs_main() {}\n@fragment fn fs_main() {}"
	tests := []struct {
		stage ShaderType
		want  string
	}{
		{ShaderTypeVertex, "vs_main"},
		{ShaderTypeFragment, "fs_main"},
		{ShaderTypeCompute, ""},
		{ShaderType(99), ""},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			if got := parseEntryPoint(src, tt.stage); got != tt.want {
				t.Errorf("parseEntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStructLayouts(t *testing.T) {
	src := `
struct Outer {
    inner: Inner,
    scale: f32,
}
struct Inner {
    a: vec3<f32>,
    b: f32,
}
struct Params {
    scale: f32,
    translation: vec2<f32>,
    max_iters: u32,
}
struct Unknown {
    m: mat4x4<f32>,
}
`
	sizes := structLayouts(parseStructs(stripComments(src)))
	tests := []struct {
		name string
		want uint64
	}{
		{"Inner", 16},
		{"Outer", 32},
		{"Params", 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := sizes[tt.name]
			if !ok {
				t.Fatalf("%s not resolved", tt.name)
			}
			if l.size != tt.want {
				t.Errorf("size = %d, want %d", l.size, tt.want)
			}
		})
	}
	if _, ok := sizes["Unknown"]; ok {
		t.Error("struct with an unknown member type resolved")
	}
}

func TestBindingEntry(t *testing.T) {
	tests := []struct {
		name  string
		space string
		typ   string
		check func(e wgpu.BindGroupLayoutEntry) bool
	}{
		{"uniform buffer", "uniform", "FractalParams", func(e wgpu.BindGroupLayoutEntry) bool {
			return e.Buffer.Type == wgpu.BufferBindingTypeUniform
		}},
		{"write-only storage texture", "", "texture_storage_2d<rgba8unorm, write>", func(e wgpu.BindGroupLayoutEntry) bool {
			st := e.StorageTexture
			return st.Access == wgpu.StorageTextureAccessWriteOnly &&
				st.Format == wgpu.TextureFormatRGBA8Unorm &&
				st.ViewDimension == wgpu.TextureViewDimension2D
		}},
		{"float texture", "", "texture_2d<f32>", func(e wgpu.BindGroupLayoutEntry) bool {
			return e.Texture.SampleType == wgpu.TextureSampleTypeFloat &&
				e.Texture.ViewDimension == wgpu.TextureViewDimension2D
		}},
		{"sampler", "", "sampler", func(e wgpu.BindGroupLayoutEntry) bool {
			return e.Sampler.Type == wgpu.SamplerBindingTypeFiltering
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := bindingEntry(3, wgpu.ShaderStageFragment, tt.space, tt.typ)
			if err != nil {
				t.Fatalf("bindingEntry() = %v", err)
			}
			if e.Binding != 3 || e.Visibility != wgpu.ShaderStageFragment {
				t.Errorf("binding = %d visibility = %v", e.Binding, e.Visibility)
			}
			if !tt.check(e) {
				t.Errorf("entry = %+v", e)
			}
		})
	}
}

func TestBindingEntryRejects(t *testing.T) {
	tests := []struct {
		name  string
		space string
		typ   string
	}{
		{"storage buffer", "storage, read_write", "array<f32>"},
		{"read-only storage texture", "", "texture_storage_2d<rgba8unorm, read>"},
		{"other texel format", "", "texture_storage_2d<r32float, write>"},
		{"3d texture", "", "texture_3d<f32>"},
		{"integer texture", "", "texture_2d<u32>"},
		{"comparison sampler", "", "sampler_comparison"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bindingEntry(0, wgpu.ShaderStageCompute, tt.space, tt.typ); !errors.Is(err, errUnsupportedResource) {
				t.Errorf("bindingEntry() error = %v, want %v", err, errUnsupportedResource)
			}
		})
	}
}

func TestParseBindGroupLayouts(t *testing.T) {
	src := `
struct Params { scale: f32, translation: vec2<f32>, max_iters: u32, }
@group(1) @binding(1) var<uniform> params: Params;
@group(1) @binding(0) var canvas: texture_storage_2d<rgba8unorm, write>;
// @group(2) @binding(0) var<uniform> ignored: Params;
`
	descs, names, err := parseBindGroupLayouts(src, wgpu.ShaderStageCompute)
	if err != nil {
		t.Fatalf("parseBindGroupLayouts() = %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("groups = %d, want 1", len(descs))
	}
	entries := descs[1].Entries
	if len(entries) != 2 || entries[0].Binding != 0 || entries[1].Binding != 1 {
		t.Fatalf("entries = %+v, want bindings 0 and 1 in order", entries)
	}
	if got := entries[1].Buffer.MinBindingSize; got != 24 {
		t.Errorf("MinBindingSize = %d, want 24", got)
	}
	if names[1][0] != "canvas" || names[1][1] != "params" {
		t.Errorf("names = %v", names)
	}

	_, _, err = parseBindGroupLayouts("@group(0) @binding(0) var<storage, read> data: array<f32>;", wgpu.ShaderStageCompute)
	if !errors.Is(err, errUnsupportedResource) {
		t.Errorf("storage buffer error = %v, want %v", err, errUnsupportedResource)
	}
}

func TestParseVertexLayouts(t *testing.T) {
	src := `
struct Out {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}
struct Indexed {
    @location(0) id: vec2<u32>,
}
struct In {
    @location(0) pos: vec3f, // position
    @location(2) weight: f32,
}
`
	layouts := parseVertexLayouts(src)
	if len(layouts) != 1 {
		t.Fatalf("layouts = %d, want 1", len(layouts))
	}
	l := layouts[0][0]
	if l.ArrayStride != 16 || l.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("stride = %d step = %v", l.ArrayStride, l.StepMode)
	}
	want := []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32, Offset: 12, ShaderLocation: 2},
	}
	if len(l.Attributes) != len(want) {
		t.Fatalf("attributes = %+v", l.Attributes)
	}
	for i := range want {
		if l.Attributes[i] != want[i] {
			t.Errorf("attribute %d = %+v, want %+v", i, l.Attributes[i], want[i])
		}
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"nested block", "a /* x /* y */ z */ b", "a  b"},
		{"line", "a // x\nb", "a \nb"},
		{"line at end", "a // x", "a "},
		{"line inside block", "a /* // */ b", "a  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripComments(tt.src); got != tt.want {
				t.Errorf("stripComments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitTypeParams(t *testing.T) {
	base, params := splitTypeParams("texture_storage_2d<rgba8unorm, write>")
	if base != "texture_storage_2d" || params != "rgba8unorm, write" {
		t.Errorf("splitTypeParams() = %q, %q", base, params)
	}
	base, params = splitTypeParams("sampler")
	if base != "sampler" || params != "" {
		t.Errorf("splitTypeParams(sampler) = %q, %q", base, params)
	}
}
