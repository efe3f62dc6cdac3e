// Package voxel provides a typed three-dimensional view over a
// contiguous buffer of voxel labels.
//
// A Volume does not own a decoding pipeline of its own; it is the
// array-container collaborator for format decoders that already hold
// a label buffer and need shaped, bounds-checked access to it.
package voxel

import (
	"encoding/binary"
	"fmt"
)

// Volume is a (depth, height, width) array of unsigned voxel labels
// backed by a contiguous byte buffer. Axis order is slowest to
// fastest varying: z, then y, then x, row-major. Elements are one or
// two bytes wide; two-byte elements are big-endian.
type Volume struct {
	data     []byte
	depth    int
	height   int
	width    int
	elemSize int
}

// FromBytes wraps buf as a volume without copying value bytes. The
// buffer length must equal depth*height*width*elemSize exactly.
func FromBytes(buf []byte, depth, height, width, elemSize int) (*Volume, error) {
	if depth <= 0 || height <= 0 || width <= 0 {
		return nil, fmt.Errorf("voxel: non-positive shape (%d, %d, %d)", depth, height, width)
	}
	if elemSize != 1 && elemSize != 2 {
		return nil, fmt.Errorf("voxel: unsupported element size %d", elemSize)
	}
	want := depth * height * width * elemSize
	if len(buf) != want {
		return nil, fmt.Errorf("voxel: buffer is %d bytes, shape (%d, %d, %d) with %d-byte elements needs %d",
			len(buf), depth, height, width, elemSize, want)
	}
	return &Volume{data: buf, depth: depth, height: height, width: width, elemSize: elemSize}, nil
}

// Shape returns the (depth, height, width) extents.
func (v *Volume) Shape() (depth, height, width int) {
	return v.depth, v.height, v.width
}

// Len returns the number of elements in the volume.
func (v *Volume) Len() int {
	return v.depth * v.height * v.width
}

// ElemSize returns the element width in bytes (1 or 2).
func (v *Volume) ElemSize() int {
	return v.elemSize
}

// Bytes returns the backing buffer. The caller must not modify it.
func (v *Volume) Bytes() []byte {
	return v.data
}

// At returns the label at (z, y, x). Indices outside the volume's
// shape are an error.
func (v *Volume) At(z, y, x int) (uint16, error) {
	if z < 0 || z >= v.depth || y < 0 || y >= v.height || x < 0 || x >= v.width {
		return 0, fmt.Errorf("voxel: index (%d, %d, %d) out of shape (%d, %d, %d)",
			z, y, x, v.depth, v.height, v.width)
	}
	off := ((z*v.height+y)*v.width + x) * v.elemSize
	if v.elemSize == 1 {
		return uint16(v.data[off]), nil
	}
	return binary.BigEndian.Uint16(v.data[off:]), nil
}

// MustAt is At for indices known to be in range. It panics otherwise.
func (v *Volume) MustAt(z, y, x int) uint16 {
	val, err := v.At(z, y, x)
	if err != nil {
		panic(err)
	}
	return val
}

// Uint8s returns the elements as a byte slice sharing the backing
// buffer. It is only valid for one-byte elements.
func (v *Volume) Uint8s() ([]uint8, error) {
	if v.elemSize != 1 {
		return nil, fmt.Errorf("voxel: %d-byte elements cannot be viewed as uint8", v.elemSize)
	}
	return v.data, nil
}

// Uint16s decodes the elements into a freshly allocated []uint16.
// One-byte elements are widened; two-byte elements are decoded
// big-endian. Value bytes are never altered in the backing buffer.
func (v *Volume) Uint16s() []uint16 {
	out := make([]uint16, v.Len())
	if v.elemSize == 1 {
		for i, b := range v.data {
			out[i] = uint16(b)
		}
		return out
	}
	for i := range out {
		out[i] = binary.BigEndian.Uint16(v.data[2*i:])
	}
	return out
}

// Histogram counts the occurrences of each label in the volume.
func (v *Volume) Histogram() map[uint16]int {
	counts := make(map[uint16]int)
	if v.elemSize == 1 {
		for _, b := range v.data {
			counts[uint16(b)]++
		}
		return counts
	}
	for i := 0; i < len(v.data); i += 2 {
		counts[binary.BigEndian.Uint16(v.data[i:])]++
	}
	return counts
}
