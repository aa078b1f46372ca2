package warcstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func TestStyle_String(t *testing.T) {
	assert.Equal(t, "delimiter", warcstream.StyleDelimiter.String())
	assert.Equal(t, "content-length", warcstream.StyleContentLength.String())
}

func TestNewParser_RejectsNonPositiveChunkSize(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes(sampleWARC())
	require.NoError(t, err)

	_, err = warcstream.NewParser(stream, warcstream.WithParsingChunkSize(0))
	assert.Error(t, err)
}

func TestNewParser_RejectsNegativeStopAfterNth(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes(sampleWARC())
	require.NoError(t, err)

	_, err = warcstream.NewParser(stream, warcstream.WithStopAfterNth(-1))
	assert.Error(t, err)
}

func TestNewParser_AcceptsCachingWithoutLazyLoading(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes(sampleWARC())
	require.NoError(t, err)

	_, err = warcstream.NewParser(stream,
		warcstream.WithLazyLoadingOfBytes(false),
		warcstream.WithCacheRecordBytes(true),
	)
	assert.NoError(t, err)
}
