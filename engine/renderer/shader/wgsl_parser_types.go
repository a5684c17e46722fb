package shader

import "github.com/cogentcore/webgpu/wgpu"

// typeLayout is the size and alignment of a WGSL type in the uniform address space.
type typeLayout struct {
	size  uint64
	align uint64
}

// uniformLayouts covers the scalar and vector types a uniform block here is built from.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var uniformLayouts = map[string]typeLayout{
	"f32":       {4, 4},
	"u32":       {4, 4},
	"i32":       {4, 4},
	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
}

// vertexAttr is the buffer format of a vertex input member and its byte width.
type vertexAttr struct {
	format wgpu.VertexFormat
	width  uint64
}

// vertexAttrs covers the float members a vertex input struct may declare.
var vertexAttrs = map[string]vertexAttr{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
}

// structMember is one member of a WGSL struct. location is -1 without @location.
type structMember struct {
	name     string
	typ      string
	location int
	builtin  bool
}

// structDecl is a WGSL struct with its members in declaration order.
type structDecl struct {
	name    string
	members []structMember
}

// feedsVertexBuffer reports whether the struct is read from a vertex buffer: it has
// @location members and no @builtin ones, which rules out stage output structs.
func (s structDecl) feedsVertexBuffer() bool {
	located := false
	for _, m := range s.members {
		if m.builtin {
			return false
		}
		located = located || m.location >= 0
	}
	return located
}
