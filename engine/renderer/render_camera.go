package renderer

import (
	"math"

	"github.com/anonymousomeone/mandelbrowser/common"
	"github.com/anonymousomeone/mandelbrowser/engine/camera"
	"github.com/anonymousomeone/mandelbrowser/engine/config"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderCamera is the render-side projection of a camera.Camera plus the iteration budget the
// compute program runs with. MaxIters is owned by the renderer: camera updates never overwrite it.
type RenderCamera struct {
	Translation mgl32.Vec2
	Zoom        float32
	MaxIters    uint32
}

// PushConstants is the GPU-visible block uploaded to the FractalParams uniform every frame.
// The layout matches WGSL uniform rules: vec2<f32> is 8-byte aligned and the struct is
// padded to a multiple of 8.
type PushConstants struct {
	Scale       float32
	_           float32
	Translation [2]float32
	MaxIters    uint32
	_           uint32
}

// PushConstantsSize is the byte size of PushConstants and of the FractalParams uniform.
const PushConstantsSize = 24

// NewRenderCamera returns a RenderCamera at the origin and natural scale with the given budget.
//
// Parameters:
//   - baseIters: the starting iteration budget
//
// Returns:
//   - RenderCamera: the new render camera
func NewRenderCamera(baseIters uint32) RenderCamera {
	return RenderCamera{
		Translation: mgl32.Vec2{0, 0},
		Zoom:        camera.MinZoom,
		MaxIters:    baseIters,
	}
}

// RenderCameraFromCamera derives a fresh RenderCamera whose budget scales with zoom as
// zoom*baseIters/2, never below config.DefaultMinIters. The product saturates at
// math.MaxUint32 so deeper zoom never yields a smaller budget.
//
// Parameters:
//   - cam: the source camera
//   - baseIters: the iteration budget at zoom 2
//
// Returns:
//   - RenderCamera: the derived render camera
func RenderCameraFromCamera(cam camera.Camera, baseIters uint32) RenderCamera {
	iters := saturateUint32(cam.Zoom*float32(baseIters)) / 2
	if iters < config.DefaultMinIters {
		iters = config.DefaultMinIters
	}
	return RenderCamera{
		Translation: cam.Center,
		Zoom:        cam.Zoom,
		MaxIters:    iters,
	}
}

// Merge applies a camera update: translation and zoom come from cam, MaxIters is kept.
//
// Parameters:
//   - cam: the camera holding the new view
//
// Returns:
//   - RenderCamera: the merged render camera
func (rc RenderCamera) Merge(cam camera.Camera) RenderCamera {
	rc.Translation = cam.Center
	rc.Zoom = cam.Zoom
	return rc
}

// saturateUint32 converts f to uint32, clamping out-of-range values and mapping NaN to 0.
func saturateUint32(f float32) uint32 {
	switch {
	case math.IsNaN(float64(f)) || f <= 0:
		return 0
	case float64(f) >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(f)
	}
}

// AdjustResolution adds delta to MaxIters, never going below floor or above math.MaxUint32.
//
// Parameters:
//   - delta: signed iteration change
//   - floor: the smallest allowed budget
//
// Returns:
//   - RenderCamera: the adjusted render camera
func (rc RenderCamera) AdjustResolution(delta int32, floor uint32) RenderCamera {
	next := int64(rc.MaxIters) + int64(delta)
	next = min(max(next, int64(floor)), math.MaxUint32)
	rc.MaxIters = uint32(next)
	return rc
}

// PushConstants projects the render camera into the uniform block. Scale is the zoom.
func (rc RenderCamera) PushConstants() PushConstants {
	return PushConstants{
		Scale:       rc.Zoom,
		Translation: [2]float32{rc.Translation[0], rc.Translation[1]},
		MaxIters:    rc.MaxIters,
	}
}

// Bytes returns a copy of the block's memory for upload.
func (pc PushConstants) Bytes() []byte {
	out := make([]byte, PushConstantsSize)
	copy(out, common.StructToBytes(&pc))
	return out
}
