package main

import (
	"context"
	"testing"

	"github.com/redpanda-data/benthos/v4/public/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/objmap-plugin/testutil"
)

func buildProcessor(t *testing.T, confYAML string) *ObjectMapProcessor {
	t.Helper()
	conf := objectMapProcessorConfig()
	pConf, err := conf.ParseYAML(confYAML, nil)
	require.NoError(t, err)

	processor, err := newObjectMapProcessorFromConfig(pConf, service.MockResources())
	require.NoError(t, err)
	return processor
}

func v6Fixture() []byte {
	return testutil.File(
		testutil.HeaderV6(4, 4, 2, 2),
		testutil.ObjectRecord("Original"),
		testutil.ObjectRecord("Lesion"),
		testutil.RawVolume(32, 0, map[int]byte{6: 1, 31: 2}),
	)
}

func TestProcessDecodesObjectMap(t *testing.T) {
	ctx := context.Background()
	processor := buildProcessor(t, "encoding: raw")

	inputMsg := service.NewMessage(v6Fixture())
	inputMsg.MetaSet("source", "scanner-7")

	batch, err := processor.Process(ctx, inputMsg)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.NoError(t, batch[0].GetError())

	structured, err := batch[0].AsStructured()
	require.NoError(t, err)
	result, ok := structured.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, 6, result["version"])
	assert.Equal(t, 4, result["width"])
	assert.Equal(t, 2, result["depth"])
	assert.Equal(t, 2, result["n_objects"])
	assert.Equal(t, 1, result["n_volumes"])

	objects, ok := result["objects"].([]any)
	require.True(t, ok)
	require.Len(t, objects, 2)
	first, ok := objects[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Original", first["name"])
	assert.Equal(t, 1, first["label"])

	meta, ok := batch[0].MetaGet("source")
	require.True(t, ok)
	assert.Equal(t, "scanner-7", meta, "metadata is copied to the output message")
}

func TestProcessIncludesHistogram(t *testing.T) {
	ctx := context.Background()
	processor := buildProcessor(t, "encoding: raw\ninclude_histogram: true")

	batch, err := processor.Process(ctx, service.NewMessage(v6Fixture()))
	require.NoError(t, err)
	require.Len(t, batch, 1)

	structured, err := batch[0].AsStructured()
	require.NoError(t, err)
	result := structured.(map[string]any)

	histograms, ok := result["histograms"].([]any)
	require.True(t, ok)
	require.Len(t, histograms, 1)
	counts := histograms[0].(map[string]any)
	assert.Equal(t, 30, counts["0"])
	assert.Equal(t, 1, counts["1"])
	assert.Equal(t, 1, counts["2"])
}

func TestProcessMalformedMessage(t *testing.T) {
	ctx := context.Background()
	processor := buildProcessor(t, "encoding: raw")

	// Valid file truncated by one pixel byte.
	data := v6Fixture()
	batch, err := processor.Process(ctx, service.NewMessage(data[:len(data)-1]))
	require.NoError(t, err, "decode failures surface on the message, not the batch")
	require.Len(t, batch, 1)
	assert.Error(t, batch[0].GetError())
}

func TestProcessEmptyMessage(t *testing.T) {
	ctx := context.Background()
	processor := buildProcessor(t, "encoding: raw")

	batch, err := processor.Process(ctx, service.NewMessage([]byte{}))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Error(t, batch[0].GetError())
}

func TestProcessRLEEncoding(t *testing.T) {
	ctx := context.Background()
	processor := buildProcessor(t, "encoding: rle")

	data := testutil.File(
		testutil.HeaderV6(2, 2, 1, 1),
		testutil.ObjectRecord("Tumor"),
		testutil.Runs([2]byte{4, 1}),
	)

	batch, err := processor.Process(ctx, service.NewMessage(data))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.NoError(t, batch[0].GetError())
}

func TestUnknownEncodingRejectedAtConstruction(t *testing.T) {
	conf := objectMapProcessorConfig()
	pConf, err := conf.ParseYAML("encoding: zip", nil)
	require.NoError(t, err)

	_, err = newObjectMapProcessorFromConfig(pConf, service.MockResources())
	assert.Error(t, err)
}
