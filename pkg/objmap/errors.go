package objmap

import (
	"errors"
	"fmt"
)

// ErrFormat is the base error for every malformed-input condition.
// All format sentinels below wrap it, so errors.Is(err, ErrFormat)
// matches any decode failure caused by the file contents.
var (
	ErrFormat         = errors.New("objmap: malformed object map")
	ErrUnknownVersion = fmt.Errorf("%w: unrecognized version code", ErrFormat)
	ErrTruncated      = fmt.Errorf("%w: unexpected end of data", ErrFormat)
	ErrBadName        = fmt.Errorf("%w: object name missing null terminator", ErrFormat)
	ErrPixelLength    = fmt.Errorf("%w: pixel data length mismatch", ErrFormat)
)

// ErrVolumeRange is returned by GetData for an index outside
// [0, NumVolumes()). It is a caller error, not a format error, and
// deliberately does not wrap ErrFormat.
var ErrVolumeRange = errors.New("objmap: volume index out of range")
