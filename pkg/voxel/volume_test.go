package voxel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/objmap-plugin/pkg/voxel"
)

func TestFromBytes(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	vol, err := voxel.FromBytes(buf, 2, 2, 3, 1)
	require.NoError(t, err)

	d, h, w := vol.Shape()
	assert.Equal(t, 2, d)
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	assert.Equal(t, 12, vol.Len())
	assert.Equal(t, 1, vol.ElemSize())
}

func TestFromBytesRejectsBadShapes(t *testing.T) {
	buf := make([]byte, 12)

	_, err := voxel.FromBytes(buf, 2, 2, 3, 2)
	assert.Error(t, err, "length must include element width")

	_, err = voxel.FromBytes(buf, 0, 2, 3, 1)
	assert.Error(t, err)

	_, err = voxel.FromBytes(buf, 2, 2, 3, 4)
	assert.Error(t, err, "only 1- and 2-byte elements exist in the format")

	_, err = voxel.FromBytes(buf[:11], 2, 2, 3, 1)
	assert.Error(t, err)
}

func TestAt(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	vol, err := voxel.FromBytes(buf, 2, 2, 3, 1)
	require.NoError(t, err)

	// Flat offset is (z*height + y)*width + x.
	v, err := vol.At(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)

	v, err = vol.At(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(11), v)

	v, err = vol.At(1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), v)
}

func TestAtBounds(t *testing.T) {
	vol, err := voxel.FromBytes(make([]byte, 12), 2, 2, 3, 1)
	require.NoError(t, err)

	for _, idx := range [][3]int{
		{2, 0, 0}, {0, 2, 0}, {0, 0, 3}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
	} {
		_, err := vol.At(idx[0], idx[1], idx[2])
		assert.Error(t, err, "index %v", idx)
	}

	assert.Panics(t, func() { vol.MustAt(2, 0, 0) })
}

func TestTwoByteView(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x01, 0x02}
	vol, err := voxel.FromBytes(buf, 1, 2, 2, 2)
	require.NoError(t, err)

	v, err := vol.At(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(256), v)

	assert.Equal(t, []uint16{256, 255, 0, 258}, vol.Uint16s())

	_, err = vol.Uint8s()
	assert.Error(t, err)
}

func TestUint8sSharesBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	vol, err := voxel.FromBytes(buf, 1, 2, 2, 1)
	require.NoError(t, err)

	view, err := vol.Uint8s()
	require.NoError(t, err)
	assert.Equal(t, buf, view)
	assert.Same(t, &buf[0], &view[0], "one-byte view must not copy")
}

func TestHistogram(t *testing.T) {
	vol, err := voxel.FromBytes([]byte{0, 0, 1, 2, 2, 2}, 1, 2, 3, 1)
	require.NoError(t, err)

	assert.Equal(t, map[uint16]int{0: 2, 1: 1, 2: 3}, vol.Histogram())

	wide, err := voxel.FromBytes([]byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x07}, 1, 1, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, map[uint16]int{256: 2, 7: 1}, wide.Histogram())
}
