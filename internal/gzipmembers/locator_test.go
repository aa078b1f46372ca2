package gzipmembers_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalarkiv/warcstream/internal/gzipmembers"
)

// gzipMembers concatenates one independently-compressed gzip member per
// input string, the record-at-a-time layout a gzipped WARC uses.
func gzipMembers(t *testing.T, parts ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, p := range parts {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(p))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
	return buf.Bytes()
}

func TestLocate_WalksEveryMember(t *testing.T) {
	data := gzipMembers(t, "first member", "second member", "third member")

	var members []gzipmembers.Member
	err := gzipmembers.Locate(bytes.NewReader(data), func(m gzipmembers.Member) error {
		members = append(members, m)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "first member", string(members[0].Data))
	assert.Equal(t, "second member", string(members[1].Data))
	assert.Equal(t, "third member", string(members[2].Data))

	assert.Equal(t, int64(0), members[0].CompressedStart)
	assert.Equal(t, members[0].CompressedEnd, members[1].CompressedStart)
	assert.Equal(t, members[1].CompressedEnd, members[2].CompressedStart)

	assert.Equal(t, int64(0), members[0].UncompressedStart)
	assert.Equal(t, int64(len("first member")), members[0].UncompressedEnd)
	assert.Equal(t, members[0].UncompressedEnd, members[1].UncompressedStart)
}

func TestLocate_EmptyInput(t *testing.T) {
	var count int
	err := gzipmembers.Locate(bytes.NewReader(nil), func(m gzipmembers.Member) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLocate_StopsOnCallbackError(t *testing.T) {
	data := gzipMembers(t, "one", "two")

	sentinel := assertErr{}
	var count int
	err := gzipmembers.Locate(bytes.NewReader(data), func(m gzipmembers.Member) error {
		count++
		return sentinel
	})
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, count)
}

type assertErr struct{}

func (assertErr) Error() string { return "stop" }
