package warcstream_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func recordWithHTTPContent(t *testing.T, httpContent string) *warcstream.Record {
	t.Helper()
	data := buildWARC(responseRecord("http://example.com/", httpContent))
	stream, err := warcstream.NewStreamFromBytes(data)
	require.NoError(t, err)
	p, err := warcstream.NewParser(stream)
	require.NoError(t, err)
	rec, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func TestGetHTTPHeaderBlock_And_BodyBlock(t *testing.T) {
	rec := recordWithHTTPContent(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhello world")

	header, err := rec.GetHTTPHeaderBlock()
	require.NoError(t, err)
	assert.Contains(t, string(header), "HTTP/1.1 200 OK")

	body, err := rec.GetHTTPBodyBlock()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}

func TestGetDecompressedHTTPBody_Identity(t *testing.T) {
	rec := recordWithHTTPContent(t, "HTTP/1.1 200 OK\r\n\r\nplain text body")

	body, err := rec.GetDecompressedHTTPBody()
	require.NoError(t, err)
	assert.Equal(t, "plain text body", string(body))
}

func TestGetDecompressedHTTPBody_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("compressed payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	httpMsg := "HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\n\r\n" + buf.String()
	rec := recordWithHTTPContent(t, httpMsg)

	body, err := rec.GetDecompressedHTTPBody()
	require.NoError(t, err)
	assert.Equal(t, "compressed payload", string(body))
}

func TestGetDecompressedHTTPBody_Chunked(t *testing.T) {
	chunked := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	httpMsg := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" + chunked
	rec := recordWithHTTPContent(t, httpMsg)

	body, err := rec.GetDecompressedHTTPBody()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}

func TestGetDecompressedHTTPBody_UnsupportedEncoding(t *testing.T) {
	httpMsg := "HTTP/1.1 200 OK\r\nContent-Encoding: bogus\r\n\r\nwhatever"
	rec := recordWithHTTPContent(t, httpMsg)

	_, err := rec.GetDecompressedHTTPBody()
	require.Error(t, err)
	var decErr *warcstream.DecodingError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, "bogus", decErr.Encoding)
}
