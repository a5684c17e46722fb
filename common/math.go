package common

import (
	"unsafe"
)

// Pad rounds original up to the next multiple of min, which must be a power of two.
// A min of zero leaves original untouched, matching devices that report no alignment requirement.
//
// Parameters:
//   - min: the required alignment (zero or a power of two)
//   - original: the value to align
//
// Returns:
//   - T: the smallest multiple of min that is >= original, or original when min is zero
func Pad[T ~uint32 | ~uint64](min, original T) T {
	aligned := original
	if min > 0 {
		aligned = (aligned + min - 1) &^ (min - 1)
	}
	return aligned
}

// CeilDiv divides n by d rounding up. A zero divisor yields zero.
func CeilDiv(n, d uint32) uint32 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}

// WorkgroupCount computes the dispatch grid needed to cover a width x height image with
// workgroups of the given size. Partial workgroups at the right and bottom edges are rounded up
// so every pixel is covered by exactly one invocation.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - size: the workgroup size as [x, y, z]
//
// Returns:
//   - [3]uint32: the number of workgroups to dispatch in x, y and z
func WorkgroupCount(width, height uint32, size [3]uint32) [3]uint32 {
	return [3]uint32{
		CeilDiv(width, size[0]),
		CeilDiv(height, size[1]),
		1,
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
