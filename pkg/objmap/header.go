package objmap

import (
	"bytes"
	"fmt"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"golang.org/x/text/encoding/charmap"
)

const (
	// versionCodeV7 is the release stamp that introduced the
	// multi-volume layout and the explicit volume count field.
	versionCodeV7 = 20050829

	// maxObjects is the format's object table capacity.
	maxObjects = 256

	// maxExtent bounds each spatial dimension. Keeping extents within
	// 16 bits guarantees depth*height*width*elemSize stays far below
	// the int range, so length arithmetic downstream cannot wrap.
	maxExtent = 0xFFFF

	nameFieldLen    = 32
	objectRecordLen = 152
)

// Header holds the decoded file header: the version discriminant, the
// map extents, and the byte offset where pixel data begins.
type Header struct {
	// VersionCode is the raw release stamp from the file.
	VersionCode uint32
	// Version is the format revision derived from VersionCode: 6 for
	// single-volume files, 7 for files carrying a volume count.
	Version int

	Width  int
	Height int
	Depth  int

	// ObjectCount is the declared number of object records.
	ObjectCount int
	// VolumeCount is the declared number of volumes (1 for version 6).
	VolumeCount int

	// DataOffset is the byte offset of the pixel data, immediately
	// after the last object record.
	DataOffset int64
}

// ElemSize returns the voxel element width in bytes: one while every
// label fits in uint8, two otherwise.
func (h Header) ElemSize() int {
	if h.ObjectCount > 0xFF {
		return 2
	}
	return 1
}

// VoxelsPerVolume returns the element count of a single volume.
func (h Header) VoxelsPerVolume() int {
	return h.Depth * h.Height * h.Width
}

// Object is the per-label metadata record. Records carry no stored
// label id; Label is assigned from file position (the first record is
// label 1, 0 is reserved for background).
type Object struct {
	Name  string
	Label int

	DisplayFlag   uint32
	CopyFlag      uint8
	Mirror        uint8
	Status        uint8
	NeighborsUsed uint8
	Shades        uint32

	StartRed   int32
	StartGreen int32
	StartBlue  int32
	EndRed     int32
	EndGreen   int32
	EndBlue    int32

	Rotation             [3]int32
	Translation          [3]int32
	Center               [3]int32
	RotationIncrement    [3]int32
	TranslationIncrement [3]int32

	Min [3]int16
	Max [3]int16

	Opacity          float32
	OpacityThickness int32
	BlendFactor      float32
}

// Visible reports whether the object's display flag is set.
func (o Object) Visible() bool {
	return o.DisplayFlag != 0
}

// decodeHeader reads the file header and the object table from a
// stream positioned at the start of the file. It returns the header
// with DataOffset set to the current stream position, so the volume
// reconstructor can pick up from there without re-scanning.
func decodeHeader(s *kaitai.Stream) (Header, []Object, error) {
	size, err := s.Size()
	if err != nil {
		return Header{}, nil, fmt.Errorf("sizing stream: %w", err)
	}

	code, err := readU4(s, size)
	if err != nil {
		return Header{}, nil, err
	}
	version, err := versionFromCode(code)
	if err != nil {
		return Header{}, nil, err
	}

	hdr := Header{
		VersionCode: code,
		Version:     version,
		VolumeCount: 1,
	}

	width, err := readU4(s, size)
	if err != nil {
		return Header{}, nil, err
	}
	height, err := readU4(s, size)
	if err != nil {
		return Header{}, nil, err
	}
	depth, err := readU4(s, size)
	if err != nil {
		return Header{}, nil, err
	}
	nObjects, err := readU4(s, size)
	if err != nil {
		return Header{}, nil, err
	}
	hdr.Width, hdr.Height, hdr.Depth = int(width), int(height), int(depth)
	hdr.ObjectCount = int(nObjects)

	if width == 0 || height == 0 || depth == 0 {
		return Header{}, nil, fmt.Errorf("%w: zero dimension (%d, %d, %d)", ErrFormat, width, height, depth)
	}
	if width > maxExtent || height > maxExtent || depth > maxExtent {
		return Header{}, nil, fmt.Errorf("%w: dimensions (%d, %d, %d) exceed %d", ErrFormat, width, height, depth, maxExtent)
	}
	if nObjects > maxObjects {
		return Header{}, nil, fmt.Errorf("%w: object count %d exceeds %d", ErrFormat, nObjects, maxObjects)
	}

	if version >= 7 {
		nVols, err := readU4(s, size)
		if err != nil {
			return Header{}, nil, err
		}
		if nVols == 0 {
			return Header{}, nil, fmt.Errorf("%w: zero volume count", ErrFormat)
		}
		hdr.VolumeCount = int(nVols)
	}

	objects, err := decodeObjects(s, size, hdr.ObjectCount)
	if err != nil {
		return Header{}, nil, err
	}

	pos, err := s.Pos()
	if err != nil {
		return Header{}, nil, fmt.Errorf("locating pixel data: %w", err)
	}
	hdr.DataOffset = pos

	return hdr, objects, nil
}

// versionFromCode maps a release stamp to a format revision. Pre-7
// releases used YYMMDD or YYYYMMDD stamps; anything that is not a
// plausible date is rejected.
func versionFromCode(code uint32) (int, error) {
	if code >= versionCodeV7 {
		if plausibleDate(code) {
			return 7, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, code)
	}
	if plausibleDate(code) {
		return 6, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, code)
}

func plausibleDate(code uint32) bool {
	month := (code / 100) % 100
	day := code % 100
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	year := code / 10000
	// Two-digit years for the 1988-1999 releases, four-digit after.
	return (year >= 88 && year <= 99) || (year >= 1988 && year <= 2100)
}

// decodeObjects reads count fixed-size records. The whole table is
// length-checked up front so a short buffer fails as truncation
// rather than surfacing as a stream read error mid-record.
func decodeObjects(s *kaitai.Stream, size int64, count int) ([]Object, error) {
	pos, err := s.Pos()
	if err != nil {
		return nil, fmt.Errorf("locating object table: %w", err)
	}
	if need := int64(count) * objectRecordLen; size-pos < need {
		return nil, fmt.Errorf("%w: object table needs %d bytes, %d remain", ErrTruncated, need, size-pos)
	}

	objects := make([]Object, 0, count)
	for i := 0; i < count; i++ {
		obj, err := decodeObject(s)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		obj.Label = i + 1
		objects = append(objects, obj)
	}
	return objects, nil
}

func decodeObject(s *kaitai.Stream) (Object, error) {
	var obj Object

	name, err := readName(s)
	if err != nil {
		return obj, err
	}
	obj.Name = name

	if obj.DisplayFlag, err = s.ReadU4be(); err != nil {
		return obj, err
	}
	if obj.CopyFlag, err = s.ReadU1(); err != nil {
		return obj, err
	}
	if obj.Mirror, err = s.ReadU1(); err != nil {
		return obj, err
	}
	if obj.Status, err = s.ReadU1(); err != nil {
		return obj, err
	}
	if obj.NeighborsUsed, err = s.ReadU1(); err != nil {
		return obj, err
	}
	if obj.Shades, err = s.ReadU4be(); err != nil {
		return obj, err
	}

	for _, dst := range []*int32{
		&obj.StartRed, &obj.StartGreen, &obj.StartBlue,
		&obj.EndRed, &obj.EndGreen, &obj.EndBlue,
	} {
		if *dst, err = s.ReadS4be(); err != nil {
			return obj, err
		}
	}

	for _, dst := range []*[3]int32{
		&obj.Rotation, &obj.Translation, &obj.Center,
		&obj.RotationIncrement, &obj.TranslationIncrement,
	} {
		for axis := 0; axis < 3; axis++ {
			if dst[axis], err = s.ReadS4be(); err != nil {
				return obj, err
			}
		}
	}

	for _, dst := range []*[3]int16{&obj.Min, &obj.Max} {
		for axis := 0; axis < 3; axis++ {
			if dst[axis], err = s.ReadS2be(); err != nil {
				return obj, err
			}
		}
	}

	if obj.Opacity, err = s.ReadF4be(); err != nil {
		return obj, err
	}
	if obj.OpacityThickness, err = s.ReadS4be(); err != nil {
		return obj, err
	}
	if obj.BlendFactor, err = s.ReadF4be(); err != nil {
		return obj, err
	}

	return obj, nil
}

// readName decodes the fixed-width null-terminated name field. The
// terminator is required; names from the reference tool's era are
// Latin-1.
func readName(s *kaitai.Stream) (string, error) {
	raw, err := s.ReadBytes(nameFieldLen)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(raw, 0)
	if end < 0 {
		return "", ErrBadName
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw[:end])
	if err != nil {
		return "", fmt.Errorf("%w: undecodable object name", ErrFormat)
	}
	return string(decoded), nil
}

// readU4 reads a big-endian header field, converting a read past the
// end of the buffer into a truncation error.
func readU4(s *kaitai.Stream, size int64) (uint32, error) {
	pos, err := s.Pos()
	if err != nil {
		return 0, fmt.Errorf("locating header field: %w", err)
	}
	if size-pos < 4 {
		return 0, fmt.Errorf("%w: header ends after %d bytes", ErrTruncated, size)
	}
	return s.ReadU4be()
}
