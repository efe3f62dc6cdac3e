package objmap

import (
	"fmt"

	"github.com/twinfer/objmap-plugin/pkg/voxel"
)

// decodeRLE expands a run-length encoded pixel stream. The stream is
// a sequence of (count, value) byte pairs; runs fill one z-slice at a
// time and never cross a slice boundary. Decoding is strict: the
// stream must fill every declared volume exactly, with no trailing
// pairs, or the whole parse fails.
func decodeRLE(pixel []byte, hdr Header) ([]*voxel.Volume, error) {
	if hdr.ElemSize() != 1 {
		return nil, fmt.Errorf("%w: run-length streams carry one-byte voxels, header needs %d-byte labels",
			ErrPixelLength, hdr.ElemSize())
	}
	if len(pixel)%2 != 0 {
		return nil, fmt.Errorf("%w: odd run-length stream length %d", ErrPixelLength, len(pixel))
	}

	// Every slice needs at least one run pair, so a stream shorter
	// than 2*Depth bytes per declared volume cannot be valid. Checked
	// before the allocations below so a crafted volume count fails
	// instead of sizing them.
	if minLen := 2 * int64(hdr.Depth) * int64(hdr.VolumeCount); int64(len(pixel)) < minLen {
		return nil, fmt.Errorf("%w: %d run-length bytes cannot fill %d volumes of %d slices",
			ErrPixelLength, len(pixel), hdr.VolumeCount, hdr.Depth)
	}

	sliceLen := hdr.Height * hdr.Width
	vols := make([]*voxel.Volume, hdr.VolumeCount)
	next := 0 // byte offset of the next run pair

	for v := range vols {
		buf := make([]byte, hdr.VoxelsPerVolume())
		for z := 0; z < hdr.Depth; z++ {
			filled := 0
			for filled < sliceLen {
				if next+2 > len(pixel) {
					return nil, fmt.Errorf("%w: run-length stream ends inside volume %d slice %d",
						ErrPixelLength, v, z)
				}
				count, value := int(pixel[next]), pixel[next+1]
				next += 2
				if count == 0 {
					return nil, fmt.Errorf("%w: zero-length run", ErrPixelLength)
				}
				if filled+count > sliceLen {
					return nil, fmt.Errorf("%w: run of %d crosses slice boundary in volume %d slice %d",
						ErrPixelLength, count, v, z)
				}
				start := z*sliceLen + filled
				for i := 0; i < count; i++ {
					buf[start+i] = value
				}
				filled += count
			}
		}
		vol, err := voxel.FromBytes(buf, hdr.Depth, hdr.Height, hdr.Width, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: volume %d: %v", ErrPixelLength, v, err)
		}
		vols[v] = vol
	}

	if next != len(pixel) {
		return nil, fmt.Errorf("%w: %d bytes of run-length data after the last volume",
			ErrPixelLength, len(pixel)-next)
	}
	return vols, nil
}
