package objmap

import (
	"fmt"

	"github.com/twinfer/objmap-plugin/pkg/voxel"
)

// reconstruct views the pixel byte stream as the file's volumes.
// Raw streams are the concatenation of VolumeCount equal blocks, each
// (depth, height, width) row-major with z varying slowest; the stream
// length must match the header exactly. Value bytes are never copied
// or altered, each volume aliases its block of pixel.
func reconstruct(pixel []byte, hdr Header, enc Encoding) ([]*voxel.Volume, error) {
	if enc == EncodingRLE {
		return decodeRLE(pixel, hdr)
	}

	elemSize := hdr.ElemSize()
	blockLen := hdr.VoxelsPerVolume() * elemSize
	// Checked with division rather than a length product so a crafted
	// volume count cannot wrap the expected total.
	if len(pixel)%blockLen != 0 || len(pixel)/blockLen != hdr.VolumeCount {
		return nil, fmt.Errorf("%w: %d pixel bytes for %d volumes of %dx%dx%d %d-byte voxels (%d per volume)",
			ErrPixelLength, len(pixel), hdr.VolumeCount, hdr.Depth, hdr.Height, hdr.Width, elemSize, blockLen)
	}

	vols := make([]*voxel.Volume, hdr.VolumeCount)
	for i := range vols {
		block := pixel[i*blockLen : (i+1)*blockLen]
		vol, err := voxel.FromBytes(block, hdr.Depth, hdr.Height, hdr.Width, elemSize)
		if err != nil {
			return nil, fmt.Errorf("%w: volume %d: %v", ErrPixelLength, i, err)
		}
		vols[i] = vol
	}
	return vols, nil
}
