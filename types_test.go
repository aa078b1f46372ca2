package warcstream_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func TestParser_ByteRange_BytesReadsFromCacheWithoutLazyLoading(t *testing.T) {
	records := parseAll(t, sampleWARC(),
		warcstream.WithLazyLoadingOfBytes(false),
		warcstream.WithCacheHeaderBytes(true),
		warcstream.WithCacheContentBytes(true),
	)
	require.NotEmpty(t, records)

	// With lazy loading off and caching on, every range is readable
	// through its cache; there is no uncached, unsourced range to exercise
	// the AccessError path directly through the public API, so the
	// invariant is instead: Bytes() never errors under this configuration.
	for _, r := range records {
		_, err := r.Header.Bytes()
		assert.NoError(t, err)
		_, err = r.Content.Bytes()
		assert.NoError(t, err)
	}
}

func TestRecord_HeaderAccessors(t *testing.T) {
	records := parseAll(t, sampleWARC())
	require.Len(t, records, 3)

	assert.Equal(t, "warcinfo", records[0].Type())
	assert.Equal(t, "response", records[1].Type())
	assert.Equal(t, "http://example.com/", records[1].TargetURI())
	assert.NotEmpty(t, records[1].RecordID())
}

func TestRecord_ContentReader_ReadsThroughLazySource(t *testing.T) {
	records := parseAll(t, sampleWARC(),
		warcstream.WithLazyLoadingOfBytes(true),
		warcstream.WithCacheHeaderBytes(false),
		warcstream.WithCacheContentBytes(false),
	)
	require.Len(t, records, 3)

	r, err := records[1].Content.Reader()
	require.NoError(t, err)
	buf, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.NotEmpty(t, buf)
}

func TestAccessError_MatchesErrorsAs(t *testing.T) {
	var e *warcstream.AccessError
	err := error(&warcstream.AccessError{})
	assert.True(t, errors.As(err, &e))
}
