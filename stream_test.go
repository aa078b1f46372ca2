package warcstream_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream"
)

func TestStream_TellTracksPositionAcrossBuffering(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes([]byte("0123456789"))
	require.NoError(t, err)

	assert.Equal(t, int64(0), stream.Tell())

	buf, err := stream.ReadAll(3)
	require.NoError(t, err)
	assert.Equal(t, "012", string(buf))
	assert.Equal(t, int64(3), stream.Tell())

	_, err = stream.Peek(4)
	require.NoError(t, err)
	// Peek must not advance the stream's reported position.
	assert.Equal(t, int64(3), stream.Tell())

	buf, err = stream.ReadAll(7)
	require.NoError(t, err)
	assert.Equal(t, "3456789", string(buf))
	assert.Equal(t, int64(10), stream.Tell())
}

func TestStream_ReadAll_UnexpectedEOF(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes([]byte("short"))
	require.NoError(t, err)

	_, err = stream.ReadAll(100)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStream_Seek(t *testing.T) {
	stream, err := warcstream.NewStreamFromBytes([]byte("0123456789"))
	require.NoError(t, err)

	pos, err := stream.Seek(5, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	assert.Equal(t, int64(5), stream.Tell())

	buf, err := stream.ReadAll(5)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(buf))
}
