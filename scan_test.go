package warcstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digitalarkiv/warcstream"
)

func TestSkipLeadingWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"WARC/1.0", 0},
		{"\r\nWARC/1.0", 2},
		{"\r\n\r\nWARC/1.0", 4},
		{"   WARC/1.0", 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, warcstream.SkipLeadingWhitespace([]byte(c.in)), "input %q", c.in)
	}
}

func TestIsWARCVersionLine(t *testing.T) {
	assert.True(t, warcstream.IsWARCVersionLine([]byte("WARC/1.0")))
	assert.True(t, warcstream.IsWARCVersionLine([]byte("WARC/1.1\r\n")))
	assert.False(t, warcstream.IsWARCVersionLine([]byte("WARC/0.9")))
	assert.False(t, warcstream.IsWARCVersionLine([]byte("not a version line")))
}

func TestFindNextDelimiter_RequiresFollowingVersionLine(t *testing.T) {
	// A CRLF CRLF that occurs inside a content block (not followed by a
	// WARC version line) must not be mistaken for the record terminator.
	buf := []byte("content with\r\n\r\nan embedded blank line\r\n\r\nWARC/1.0\r\n")
	idx := warcstream.FindNextDelimiter(buf)
	want := len("content with\r\n\r\nan embedded blank line")
	assert.Equal(t, want, idx)
}

func TestFindNextDelimiter_NoMatch(t *testing.T) {
	buf := []byte("no delimiter here at all")
	assert.Equal(t, -1, warcstream.FindNextDelimiter(buf))
}

func TestFindNextHeaderEnd(t *testing.T) {
	buf := []byte("WARC/1.0\r\nWARC-Type: warcinfo\r\n\r\ncontent")
	idx := warcstream.FindNextHeaderEnd(buf)
	assert.Equal(t, len("WARC/1.0\r\nWARC-Type: warcinfo"), idx)
}

func TestFindContentLengthInBytes(t *testing.T) {
	header := []byte("WARC/1.0\r\nWARC-Type: warcinfo\r\nContent-Length: 42\r\n")
	n, ok := warcstream.FindContentLengthInBytes(header)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = warcstream.FindContentLengthInBytes([]byte("WARC/1.0\r\nWARC-Type: warcinfo\r\n"))
	assert.False(t, ok)

	_, ok = warcstream.FindContentLengthInBytes([]byte("Content-Length: not-a-number\r\n"))
	assert.False(t, ok)
}

func TestIsTargetInBytes(t *testing.T) {
	assert.True(t, warcstream.IsTargetInBytes([]byte("hello world"), []byte("world")))
	assert.False(t, warcstream.IsTargetInBytes([]byte("hello world"), []byte("xyz")))
}
