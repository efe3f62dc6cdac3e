package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/twinfer/objmap-plugin/pkg/objmap"
)

// ObjectMapProcessor is a Benthos processor that decodes Analyze
// object-map messages into structured metadata.
type ObjectMapProcessor struct {
	config  objectMapConfig
	logger  *service.Logger
	mParsed *service.MetricCounter
	mErrors *service.MetricCounter
}

// objectMapConfig contains configuration parameters for the object-map processor.
type objectMapConfig struct {
	Encoding         objmap.Encoding
	IncludeHistogram bool
}

func init() {
	// Register the processor with Benthos
	err := service.RegisterProcessor(
		"analyze_objmap",
		objectMapProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newObjectMapProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

// objectMapProcessorConfig returns a config spec for an object-map processor.
func objectMapProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Decodes Analyze object-map (.obj) segmentation masks into structured metadata.").
		Description("This processor parses the binary object-map format (header, per-object records, voxel volumes) and emits the decoded header, the object table, and optionally a per-volume label histogram.").
		Field(service.NewStringField("encoding").
			Description("Voxel stream encoding: 'raw' for packed labels, 'rle' for run-length encoded files written by the reference tool.").
			Default("raw")).
		Field(service.NewBoolField("include_histogram").
			Description("Whether to include per-volume label voxel counts in the output.").
			Default(false)).
		Version("0.1.0")
}

// newObjectMapProcessorFromConfig creates a new ObjectMapProcessor from a parsed config.
func newObjectMapProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*ObjectMapProcessor, error) {
	encodingName, err := conf.FieldString("encoding")
	if err != nil {
		return nil, err
	}
	encoding, err := objmap.ParseEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	includeHistogram, err := conf.FieldBool("include_histogram")
	if err != nil {
		return nil, err
	}

	metrics := mgr.Metrics()

	return &ObjectMapProcessor{
		config: objectMapConfig{
			Encoding:         encoding,
			IncludeHistogram: includeHistogram,
		},
		logger:  mgr.Logger(),
		mParsed: metrics.NewCounter("objmap_parsed_messages"),
		mErrors: metrics.NewCounter("objmap_processing_errors"),
	}, nil
}

// Process decodes one object-map message into a structured payload.
func (p *ObjectMapProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	binData, err := msg.AsBytes()
	if err != nil {
		p.logger.Errorf("Failed to get binary data from message: %v", err)
		p.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to get binary data from message: %w", err))
		return service.MessageBatch{msg}, nil
	}

	if len(binData) == 0 {
		p.logger.Warn("Empty binary data provided")
		p.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("empty binary data provided"))
		return service.MessageBatch{msg}, nil
	}

	m := objmap.New(objmap.WithEncoding(p.config.Encoding))
	if err := m.Decode(binData); err != nil {
		p.logger.Errorf("Failed to decode object map of size %d bytes: %v", len(binData), err)
		p.mErrors.Incr(1)
		msg.SetError(fmt.Errorf("failed to decode object map of size %d bytes: %w", len(binData), err))
		return service.MessageBatch{msg}, nil
	}

	result, err := p.structure(m)
	if err != nil {
		p.logger.Errorf("Failed to build structured output: %v", err)
		p.mErrors.Incr(1)
		msg.SetError(err)
		return service.MessageBatch{msg}, nil
	}

	p.logger.Debugf("Successfully decoded %d bytes of object-map data", len(binData))
	p.mParsed.Incr(1)

	newMsg := service.NewMessage(nil)
	newMsg.SetStructured(result)

	// Copy metadata from original message
	msg.MetaWalk(func(key, value string) error {
		newMsg.MetaSet(key, value)
		return nil
	})

	return service.MessageBatch{newMsg}, nil
}

// structure flattens a decoded map into plain JSON-able values.
func (p *ObjectMapProcessor) structure(m *objmap.ObjectMap) (map[string]any, error) {
	hdr := m.Header()

	objects := make([]any, 0, len(m.Objects()))
	for _, obj := range m.Objects() {
		objects = append(objects, map[string]any{
			"name":        obj.Name,
			"label":       obj.Label,
			"visible":     obj.Visible(),
			"shades":      obj.Shades,
			"start_color": []any{obj.StartRed, obj.StartGreen, obj.StartBlue},
			"end_color":   []any{obj.EndRed, obj.EndGreen, obj.EndBlue},
			"opacity":     obj.Opacity,
		})
	}

	result := map[string]any{
		"version_code": hdr.VersionCode,
		"version":      hdr.Version,
		"width":        hdr.Width,
		"height":       hdr.Height,
		"depth":        hdr.Depth,
		"n_objects":    hdr.ObjectCount,
		"n_volumes":    hdr.VolumeCount,
		"objects":      objects,
	}

	if p.config.IncludeHistogram {
		histograms := make([]any, 0, m.NumVolumes())
		for i := 0; i < m.NumVolumes(); i++ {
			vol, err := m.GetData(i)
			if err != nil {
				return nil, fmt.Errorf("reading volume %d: %w", i, err)
			}
			counts := make(map[string]any)
			for label, n := range vol.Histogram() {
				counts[strconv.Itoa(int(label))] = n
			}
			histograms = append(histograms, counts)
		}
		result["histograms"] = histograms
	}

	return result, nil
}

// Close the processor resources.
func (p *ObjectMapProcessor) Close(ctx context.Context) error {
	return nil
}

func main() {
	service.RunCLI(context.Background())
}
