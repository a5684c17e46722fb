// Package fractal is the CPU reference of the escape-time program the renderer dispatches on the GPU.
// It uses the same float32 arithmetic, pixel mapping, periodicity check and shading, so a snapshot
// rendered here matches what the viewer shows for the same camera.
package fractal

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// EscapeRadius is the orbit magnitude past which a point is considered escaped.
	EscapeRadius float32 = 4

	// PeriodInterval is the number of iterations between two captures of the reference point.
	PeriodInterval = 20

	// CanvasAlpha is the alpha every canvas texel is written with.
	CanvasAlpha float32 = 0.1
)

// PixelToComplex maps a pixel of a width x height canvas to the complex plane. Coordinates are
// normalized to [0, 1), scaled by 4/scale, centered, stretched by the aspect ratio on x and
// offset by translation.
//
// Parameters:
//   - x, y: the pixel coordinate
//   - width, height: the canvas size
//   - scale: the camera zoom
//   - translation: the camera center
//
// Returns:
//   - mgl32.Vec2: the point c as (re, im)
func PixelToComplex(x, y, width, height int, scale float32, translation mgl32.Vec2) mgl32.Vec2 {
	w, h := float32(width), float32(height)
	aspect := w / h
	xNorm := float32(x) / w
	yNorm := float32(y) / h

	return mgl32.Vec2{
		aspect*(xNorm*4/scale) - 2/scale + translation.X(),
		(yNorm * 4 / scale) - 2/scale + translation.Y(),
	}
}

// Iterate runs z ← z² + c from z = c until the orbit escapes, repeats, or maxIters is reached.
// Points whose orbit returns to the last captured reference point are interior and report maxIters.
//
// Parameters:
//   - c: the point to test
//   - maxIters: the iteration budget
//
// Returns:
//   - uint32: the number of completed iterations, maxIters for interior points
func Iterate(c mgl32.Vec2, maxIters uint32) uint32 {
	z := c
	var old mgl32.Vec2
	period := 0
	var iterations uint32

	for iterations < maxIters {
		z = mgl32.Vec2{
			z[0]*z[0] - z[1]*z[1] + c[0],
			z[1]*z[0] + z[0]*z[1] + c[1],
		}
		if z.Len() > EscapeRadius {
			break
		}
		if z == old {
			return maxIters
		}
		period++
		if period > PeriodInterval {
			period = 0
			old = z
		}
		iterations++
	}
	return iterations
}

// Shade converts an iteration count into the canvas texel: the fraction of the budget used,
// repeated on the color channels, with CanvasAlpha.
func Shade(iterations, maxIters uint32) color.NRGBA {
	var i float32
	if maxIters > 0 {
		i = float32(iterations) / float32(maxIters)
	}
	v := unorm8(i)
	return color.NRGBA{R: v, G: v, B: v, A: unorm8(CanvasAlpha)}
}

// unorm8 converts a [0, 1] float to an 8-bit normalized value the way an rgba8unorm store does.
func unorm8(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
