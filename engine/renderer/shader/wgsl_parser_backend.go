package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// errUnsupportedResource is returned for resource declarations the renderer has no binding for.
var errUnsupportedResource = errors.New("unsupported resource")

// bindingEntry builds the layout entry for one resource declaration. The renderer binds
// uniform buffers, write-only rgba8unorm 2D storage textures, float 2D sampled textures
// and filtering samplers; anything else is rejected.
func bindingEntry(binding uint32, visibility wgpu.ShaderStage, space, typ string) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	base, params := splitTypeParams(typ)

	switch {
	case space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case space != "":
		return entry, fmt.Errorf("%w: var<%s>", errUnsupportedResource, space)
	case typ == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case base == "texture_2d" && params == "f32":
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case base == "texture_storage_2d":
		format, access, _ := strings.Cut(params, ",")
		if strings.TrimSpace(format) != "rgba8unorm" || strings.TrimSpace(access) != "write" {
			return entry, fmt.Errorf("%w: %s", errUnsupportedResource, typ)
		}
		entry.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
		entry.StorageTexture.Format = wgpu.TextureFormatRGBA8Unorm
		entry.StorageTexture.ViewDimension = wgpu.TextureViewDimension2D
	default:
		return entry, fmt.Errorf("%w: %s", errUnsupportedResource, typ)
	}
	return entry, nil
}

// splitTypeParams splits "texture_2d<f32>" into "texture_2d" and "f32".
func splitTypeParams(typ string) (base, params string) {
	base, rest, ok := strings.Cut(typ, "<")
	if !ok {
		return typ, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(rest, ">"))
}

// resolveLayout looks typ up among the uniform primitives, then among known structs.
func resolveLayout(typ string, structs map[string]typeLayout) (typeLayout, bool) {
	if l, ok := uniformLayouts[typ]; ok {
		return l, true
	}
	l, ok := structs[typ]
	return l, ok
}

// structLayouts lays out every struct whose member types resolve, including structs
// nested in other structs regardless of declaration order. @builtin members take no space.
func structLayouts(structs []structDecl) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var unresolved []structDecl
		for _, s := range pending {
			if l, ok := layoutStruct(s, resolved); ok {
				resolved[s.name] = l
			} else {
				unresolved = append(unresolved, s)
			}
		}
		if len(unresolved) == len(pending) {
			break
		}
		pending = unresolved
	}
	return resolved
}

func layoutStruct(s structDecl, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, m := range s.members {
		if m.builtin {
			continue
		}
		l, ok := resolveLayout(m.typ, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = common.Pad(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{size: common.Pad(align, offset), align: align}, true
}

// vertexBufferLayout packs the members of a vertex input struct tightly in declaration order.
func vertexBufferLayout(s structDecl) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, m := range s.members {
		attr, ok := vertexAttrs[m.typ]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         attr.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(m.location),
		})
		layout.ArrayStride += attr.width
	}
	return layout, true
}

// stripComments blanks out line comments and (possibly nested) block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		next := byte(0)
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case source[i] == '/' && next == '*':
			depth++
			i++
		case source[i] == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
		case source[i] == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
