package warcstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func parseAll(t *testing.T, data []byte, opts ...warcstream.Option) []*warcstream.Record {
	t.Helper()
	stream, err := warcstream.NewStreamFromBytes(data)
	require.NoError(t, err)
	p, err := warcstream.NewParser(stream, opts...)
	require.NoError(t, err)
	records, err := p.Parse(true)
	require.NoError(t, err)
	return records
}

func TestWARCNamedFieldFilter(t *testing.T) {
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(warcstream.WARCNamedFieldFilter("WARC-Type", "warcinfo")))
	require.Len(t, records, 1)
	assert.Equal(t, "warcinfo", records[0].Type())
}

func TestRecordContentTypeFilter(t *testing.T) {
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(warcstream.RecordContentTypeFilter("application/http")))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "response", r.Type())
	}
}

func TestRecordContentLengthFilter(t *testing.T) {
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(
		warcstream.RecordContentLengthFilter(warcstream.GreaterThan, 0),
	))
	assert.NotEmpty(t, records)
	for _, r := range records {
		assert.Greater(t, r.Content.Len(), int64(0))
	}
}

func TestHTTPStatusFilter(t *testing.T) {
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(warcstream.HTTPStatusFilter(404)))
	require.Len(t, records, 1)
	assert.Equal(t, "http://example.com/other", records[0].TargetURI())
}

func TestHTTPVerbFilter_NoRequestRecords(t *testing.T) {
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(warcstream.HTTPVerbFilter("GET")))
	assert.Empty(t, records)
}

func TestWARCHeaderRegexFilter(t *testing.T) {
	f, err := warcstream.WARCHeaderRegexFilter(`WARC-Target-URI: http://example\.com/other`)
	require.NoError(t, err)
	records := parseAll(t, sampleWARC(), warcstream.WithFilter(f))
	require.Len(t, records, 1)
	assert.Equal(t, "http://example.com/other", records[0].TargetURI())
}

func TestWARCHeaderRegexFilter_InvalidPattern(t *testing.T) {
	_, err := warcstream.WARCHeaderRegexFilter("(unterminated")
	assert.Error(t, err)
}

func TestPrintRecordAttribute(t *testing.T) {
	var buf countingWriter
	records := parseAll(t, sampleWARC(), warcstream.WithHandler(warcstream.PrintRecordAttribute(&buf, "WARC-Type")))
	assert.Len(t, records, 3)
	assert.Equal(t, 3, buf.lines)
}

type countingWriter struct {
	lines int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.lines++
		}
	}
	return len(p), nil
}
