package renderer

import "github.com/anonymousomeone/mandelbrowser/common"

// Vertex is one entry of the present pass vertex buffer, matching VertexInput in the vertex program.
type Vertex struct {
	Position  [2]float32
	TexCoords [2]float32
}

// fullscreenTriangle covers the whole viewport with a single triangle. The visible part of its
// texture coordinates spans [0, 1] on both axes.
var fullscreenTriangle = [3]Vertex{
	{Position: [2]float32{-1, -1}, TexCoords: [2]float32{0, 0}},
	{Position: [2]float32{-1, 3}, TexCoords: [2]float32{0, 2}},
	{Position: [2]float32{3, -1}, TexCoords: [2]float32{2, 0}},
}

// FullscreenTriangle returns a copy of the present pass geometry.
func FullscreenTriangle() [3]Vertex {
	return fullscreenTriangle
}

// fullscreenTriangleBytes returns the geometry as uploaded to the vertex buffer.
func fullscreenTriangleBytes() []byte {
	v := fullscreenTriangle
	out := make([]byte, len(v)*16)
	copy(out, common.SliceToBytes(v[:]))
	return out
}
