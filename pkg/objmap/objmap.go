package objmap

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"

	"github.com/twinfer/objmap-plugin/pkg/voxel"
)

// Encoding selects how the pixel byte stream is interpreted.
type Encoding int

const (
	// EncodingRaw treats the pixel stream as packed voxel labels.
	EncodingRaw Encoding = iota
	// EncodingRLE treats the pixel stream as (count, value) run
	// pairs, the layout written by the reference Analyze tool.
	EncodingRLE
)

// ParseEncoding maps the config-file spellings to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "raw", "":
		return EncodingRaw, nil
	case "rle":
		return EncodingRLE, nil
	}
	return 0, fmt.Errorf("objmap: unknown encoding %q", s)
}

// options holds configuration for a parse.
type options struct {
	logger   *slog.Logger
	encoding Encoding
}

// Option is a function that configures parse options.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEncoding sets the pixel stream encoding (raw by default).
func WithEncoding(enc Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

func defaultOptions() options {
	return options{
		logger:   slog.Default(),
		encoding: EncodingRaw,
	}
}

// ObjectMap is a fully decoded Analyze object map: the file header,
// the ordered object table, and one volume per declared volume index.
// It is immutable after a successful parse and safe for concurrent
// reads.
type ObjectMap struct {
	header  Header
	objects []Object
	vols    []*voxel.Volume
	opts    options
}

// New returns an empty ObjectMap. Populate it with FromFile or
// Decode.
func New(opts ...Option) *ObjectMap {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ObjectMap{opts: o}
}

// Open parses the object map at path. It is equivalent to New
// followed by FromFile.
func Open(path string, opts ...Option) (*ObjectMap, error) {
	m := New(opts...)
	if err := m.FromFile(path); err != nil {
		return nil, err
	}
	return m, nil
}

// FromFile reads and decodes the object map at path. I/O errors from
// the file system are returned as-is, wrapped with context.
func (m *ObjectMap) FromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading object map: %w", err)
	}
	return m.Decode(data)
}

// Decode parses a complete object map from a byte buffer. The parse
// is all or nothing: on error the receiver holds no decoded state.
func (m *ObjectMap) Decode(data []byte) error {
	m.header, m.objects, m.vols = Header{}, nil, nil

	stream := kaitai.NewStream(bytes.NewReader(data))

	hdr, objects, err := decodeHeader(stream)
	if err != nil {
		return err
	}

	vols, err := reconstruct(data[hdr.DataOffset:], hdr, m.opts.encoding)
	if err != nil {
		return err
	}

	m.header = hdr
	m.objects = objects
	m.vols = vols

	m.opts.logger.Debug("decoded object map",
		"version", hdr.Version,
		"shape", fmt.Sprintf("%dx%dx%d", hdr.Depth, hdr.Height, hdr.Width),
		"objects", len(objects),
		"volumes", len(vols))
	return nil
}

// Header returns the decoded file header.
func (m *ObjectMap) Header() Header {
	return m.header
}

// Objects returns the object table in file order, which is also label
// order. The returned slice must not be modified.
func (m *ObjectMap) Objects() []Object {
	return m.objects
}

// NumVolumes returns the number of decoded volumes.
func (m *ObjectMap) NumVolumes() int {
	return len(m.vols)
}

// GetData returns the idx-th volume. Indices outside
// [0, NumVolumes()) return ErrVolumeRange.
func (m *ObjectMap) GetData(idx int) (*voxel.Volume, error) {
	if idx < 0 || idx >= len(m.vols) {
		return nil, fmt.Errorf("%w: %d of %d", ErrVolumeRange, idx, len(m.vols))
	}
	return m.vols[idx], nil
}

// Data returns the first volume, or nil before a successful parse.
func (m *ObjectMap) Data() *voxel.Volume {
	if len(m.vols) == 0 {
		return nil
	}
	return m.vols[0]
}
