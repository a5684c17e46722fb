package renderer

import (
	"encoding/binary"
	"math"
	"testing"
)

// inside reports whether p lies in the triangle a, b, c (edges included).
func inside(p, a, b, c [2]float32) bool {
	sign := func(p1, p2, p3 [2]float32) float32 {
		return (p1[0]-p3[0])*(p2[1]-p3[1]) - (p2[0]-p3[0])*(p1[1]-p3[1])
	}
	d1, d2, d3 := sign(p, a, b), sign(p, b, c), sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func TestFullscreenTriangleCoversViewport(t *testing.T) {
	v := FullscreenTriangle()
	corners := [][2]float32{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}, {0, 0}}
	for _, c := range corners {
		if !inside(c, v[0].Position, v[1].Position, v[2].Position) {
			t.Errorf("corner %v is not covered", c)
		}
	}
}

func TestFullscreenTriangleTexCoords(t *testing.T) {
	for i, v := range FullscreenTriangle() {
		for axis := 0; axis < 2; axis++ {
			want := (v.Position[axis] + 1) / 2
			if v.TexCoords[axis] != want {
				t.Errorf("vertex %d axis %d tex = %v, want %v", i, axis, v.TexCoords[axis], want)
			}
		}
	}
}

func TestFullscreenTriangleBytes(t *testing.T) {
	b := fullscreenTriangleBytes()
	if len(b) != 48 {
		t.Fatalf("len = %d, want 48", len(b))
	}
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	// second vertex: position (-1, 3), tex (0, 2)
	got := [4]float32{f(16), f(20), f(24), f(28)}
	if want := [4]float32{-1, 3, 0, 2}; got != want {
		t.Errorf("vertex 1 = %v, want %v", got, want)
	}
}
