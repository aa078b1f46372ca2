package warcstream

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/digitalarkiv/warcstream/internal/countingreader"
)

// ReadSeekerAt is the minimal capability a Stream needs from its
// underlying source to support both sequential scanning and the lazy,
// non-owning byte-range back-references described by ByteSource.
type ReadSeekerAt interface {
	io.ReadSeeker
	io.ReaderAt
}

// Stream is the byte-stream primitive every parser is built on: buffered
// sequential reads, a peek that doesn't consume, and an exact absolute
// position even though reads are buffered ahead of the caller.
type Stream interface {
	// Read reads into p, as io.Reader.
	Read(p []byte) (int, error)
	// ReadAll reads n bytes. It returns io.EOF if no bytes remain, or
	// io.ErrUnexpectedEOF if the stream ends after fewer than n bytes.
	ReadAll(n int64) ([]byte, error)
	// Peek returns the next n bytes without advancing the stream.
	Peek(n int) ([]byte, error)
	// Seek repositions the stream, as io.Seeker.
	Seek(offset int64, whence int) (int64, error)
	// Tell reports the stream's current absolute offset.
	Tell() int64
	// Source returns the non-owning back-reference usable for lazy
	// byte-range reads, or nil if the stream doesn't support one.
	Source() ByteSource
}

const defaultBufferSize = 64 * 1024

// bufferedStream implements Stream over any ReadSeekerAt, tracking the
// absolute read position across bufio.Reader's internal buffering the
// way the teacher's WarcFileReader computes its offset:
// base + bytes-read-through-counting-reader - bytes-still-buffered.
type bufferedStream struct {
	src    ReadSeekerAt
	cr     *countingreader.Reader
	br     *bufio.Reader
	base   int64
}

// NewStream wraps src for buffered sequential reading with exact
// position tracking. src must support Seek and ReadAt; *os.File and
// *bytes.Reader both do.
func NewStream(src ReadSeekerAt) (Stream, error) {
	base, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	cr := countingreader.New(src)
	return &bufferedStream{
		src:  src,
		cr:   cr,
		br:   bufio.NewReaderSize(cr, defaultBufferSize),
		base: base,
	}, nil
}

// NewStreamFromBytes wraps an in-memory buffer as a Stream.
func NewStreamFromBytes(p []byte) (Stream, error) {
	return NewStream(bytes.NewReader(p))
}

// NewStreamFromFile opens path and wraps it as a Stream.
func NewStreamFromFile(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStream(f)
}

func (s *bufferedStream) Read(p []byte) (int, error) { return s.br.Read(p) }

func (s *bufferedStream) ReadAll(n int64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *bufferedStream) Peek(n int) ([]byte, error) {
	p, err := s.br.Peek(n)
	if err != nil && err != bufio.ErrBufferFull {
		return p, err
	}
	return p, nil
}

func (s *bufferedStream) Seek(offset int64, whence int) (int64, error) {
	abs := offset
	switch whence {
	case io.SeekCurrent:
		abs = s.Tell() + offset
	case io.SeekEnd:
		end, err := s.src.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		abs = end + offset
	}
	pos, err := s.src.Seek(abs, io.SeekStart)
	if err != nil {
		return 0, err
	}
	s.base = pos
	s.cr = countingreader.New(s.src)
	s.br.Reset(s.cr)
	return pos, nil
}

func (s *bufferedStream) Tell() int64 {
	return s.base + s.cr.N() - int64(s.br.Buffered())
}

func (s *bufferedStream) Source() ByteSource { return s.src }
