// Package testutil builds synthetic Analyze object-map buffers for
// tests across the repository.
package testutil

import (
	"encoding/binary"
	"math"
)

// Version codes used by test fixtures.
const (
	VersionCodeV6 uint32 = 910926
	VersionCodeV7 uint32 = 20050829
)

const objectRecordLen = 152

// HeaderV6 assembles a pre-7 header: version code plus four u4 fields.
func HeaderV6(width, height, depth, nObjects uint32) []byte {
	return putU4(nil, VersionCodeV6, width, height, depth, nObjects)
}

// HeaderV7 assembles a version-7 header with an explicit volume count.
func HeaderV7(width, height, depth, nObjects, nVols uint32) []byte {
	return putU4(nil, VersionCodeV7, width, height, depth, nObjects, nVols)
}

// ObjectRecord assembles a 152-byte object record with the given name
// and recognizable defaults: visible, full opacity, a gray ramp.
func ObjectRecord(name string) []byte {
	rec := make([]byte, objectRecordLen)
	copy(rec, name) // remainder stays zero, terminating the name
	binary.BigEndian.PutUint32(rec[32:], 1)                      // display flag
	binary.BigEndian.PutUint32(rec[40:], 32)                     // shades
	binary.BigEndian.PutUint32(rec[56:], 255)                    // end red
	binary.BigEndian.PutUint32(rec[60:], 255)                    // end green
	binary.BigEndian.PutUint32(rec[64:], 255)                    // end blue
	binary.BigEndian.PutUint32(rec[140:], math.Float32bits(1.0)) // opacity
	return rec
}

// RawVolume assembles one packed single-byte volume of voxelCount
// voxels filled with fill, then overridden at the given flat offsets.
func RawVolume(voxelCount int, fill byte, overrides map[int]byte) []byte {
	buf := make([]byte, voxelCount)
	for i := range buf {
		buf[i] = fill
	}
	for off, v := range overrides {
		buf[off] = v
	}
	return buf
}

// Runs assembles a run-length encoded stream from (count, value)
// pairs.
func Runs(pairs ...[2]byte) []byte {
	buf := make([]byte, 0, 2*len(pairs))
	for _, p := range pairs {
		buf = append(buf, p[0], p[1])
	}
	return buf
}

// File concatenates header, records, and pixel data into one buffer.
func File(parts ...[]byte) []byte {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

func putU4(buf []byte, vals ...uint32) []byte {
	for _, v := range vals {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	return buf
}
