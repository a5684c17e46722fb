// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields fall back to the renderer defaults (clamp-to-edge addressing, linear filtering, linear mipmaps).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
}

// CanvasDescriptor describes the intermediate image the compute stage writes and the present stage samples.
type CanvasDescriptor struct {
	// Width and Height are the canvas dimensions in pixels; they track the surface size.
	Width, Height uint32
	// Format is the texel format shared by the storage binding and the sampled binding.
	Format wgpu.TextureFormat
	// Usage is the combined usage: sampled, storage-writable, color-attachment and copy-destination.
	Usage wgpu.TextureUsage
}

// CanvasUsage is the usage every canvas texture is created with.
const CanvasUsage = wgpu.TextureUsageTextureBinding |
	wgpu.TextureUsageStorageBinding |
	wgpu.TextureUsageRenderAttachment |
	wgpu.TextureUsageCopyDst

// Color is an RGBA color with float64 channels, the precision wgpu clear values use.
type Color struct {
	R, G, B, A float64
}
