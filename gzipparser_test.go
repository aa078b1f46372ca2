package warcstream_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func gzipEachRecord(t *testing.T, data []byte, boundaries ...int) []byte {
	t.Helper()
	var buf bytes.Buffer
	start := 0
	for _, end := range append(boundaries, len(data)) {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write(data[start:end])
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		start = end
	}
	return buf.Bytes()
}

func TestGzipParser_DecodesEachRecordFromItsOwnMember(t *testing.T) {
	r1 := buildWARC(warcinfoRecord("a"))
	r2 := buildWARC(responseRecord("http://example.com/", "HTTP/1.1 200 OK\r\n\r\nbody"))

	gz := gzipEachRecord(t, append(append([]byte{}, r1...), r2...), len(r1))

	gp, err := warcstream.NewGzipParser(bytes.NewReader(gz))
	require.NoError(t, err)

	m1, err := gp.Next()
	require.NoError(t, err)
	require.NotNil(t, m1)
	require.NotNil(t, m1.Record)
	assert.Equal(t, "warcinfo", m1.Record.Type())

	m2, err := gp.Next()
	require.NoError(t, err)
	require.NotNil(t, m2)
	require.NotNil(t, m2.Record)
	assert.Equal(t, "response", m2.Record.Type())

	m3, err := gp.Next()
	require.NoError(t, err)
	assert.Nil(t, m3)
}

func TestGzipParser_NonWARCMember_KeepsRawBytesWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("not a warc record at all"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	gp, err := warcstream.NewGzipParser(bytes.NewReader(buf.Bytes()), warcstream.WithCacheNonWARCMemberBytes(true))
	require.NoError(t, err)

	m, err := gp.Next()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Nil(t, m.Record)
	assert.Equal(t, "not a warc record at all", string(m.NonWARCData))
}

func TestGzipParser_FileMode_StillDecodesRecord(t *testing.T) {
	data := buildWARC(warcinfoRecord("a"))
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	gp, err := warcstream.NewGzipParser(bytes.NewReader(buf.Bytes()), warcstream.WithFileMode(true))
	require.NoError(t, err)

	m, err := gp.Next()
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NotNil(t, m.Record)
	assert.Equal(t, "warcinfo", m.Record.Type())
	assert.NoError(t, m.Close())
}
