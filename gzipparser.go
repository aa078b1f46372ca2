package warcstream

import (
	"io"

	"github.com/digitalarkiv/warcstream/internal/diskbuffer"
	"github.com/digitalarkiv/warcstream/internal/gzipmembers"
)

// GzipParser walks a record-at-a-time gzipped WARC (each record its own
// gzip member) and decodes each member in turn into a GzippedMember:
// either a parsed WARC Record, or, when the member's content doesn't
// look like a WARC record, the raw inflated bytes (NonWARCData), kept
// when WithCacheNonWARCMemberBytes is set.
type GzipParser struct {
	src  io.Reader
	opts *gzipOptions

	members []*GzippedMember
	err     error
	done    bool

	pending []*GzippedMember

	// compressedBase and uncompressedBase are where the current Locate
	// call starts, so member offsets stay relative to the whole source.
	compressedBase, uncompressedBase int64
}

type gzipOptions struct {
	parserOpts              []Option
	cacheNonWARCMemberBytes bool
	fileMode                bool
}

// GzipOption configures a GzipParser.
type GzipOption func(*gzipOptions)

// WithMemberParserOptions passes Option values through to the Parser
// used to interpret each member's inflated WARC record bytes.
func WithMemberParserOptions(opts ...Option) GzipOption {
	return func(o *gzipOptions) { o.parserOpts = append(o.parserOpts, opts...) }
}

// WithCacheNonWARCMemberBytes keeps the raw inflated bytes of gzip
// members that don't decode to a recognizable WARC record, the
// supplemented behavior described in SPEC_FULL.md §10.
func WithCacheNonWARCMemberBytes(b bool) GzipOption {
	return func(o *gzipOptions) { o.cacheNonWARCMemberBytes = b }
}

// WithFileMode copies each inflated member into a disk-backed buffer,
// which then serves the member's lazy byte reads. The inflated bytes are
// still held in memory while the member is interpreted, and its Record
// is parsed from that in-memory copy.
func WithFileMode(b bool) GzipOption {
	return func(o *gzipOptions) { o.fileMode = b }
}

// NewGzipParser constructs a GzipParser over src, which must be
// positioned at the start of the first gzip member.
func NewGzipParser(src io.Reader, opts ...GzipOption) (*GzipParser, error) {
	o := &gzipOptions{}
	for _, apply := range opts {
		apply(o)
	}
	return &GzipParser{src: src, opts: o}, nil
}

// Next returns the next located gzip member, or (nil, nil) once the
// source is exhausted.
func (g *GzipParser) Next() (*GzippedMember, error) {
	if g.done {
		return nil, g.err
	}
	if len(g.pending) > 0 {
		m := g.pending[0]
		g.pending = g.pending[1:]
		return m, nil
	}

	var got *GzippedMember
	err := gzipmembers.Locate(g.src, func(m gzipmembers.Member) error {
		m.CompressedStart += g.compressedBase
		m.CompressedEnd += g.compressedBase
		m.UncompressedStart += g.uncompressedBase
		m.UncompressedEnd += g.uncompressedBase
		member := g.interpretMember(m)
		if got == nil {
			got = member
			return errStopAfterOne
		}
		g.pending = append(g.pending, member)
		return nil
	})
	if err != nil && err != errStopAfterOne {
		g.err = err
		g.done = true
		return nil, err
	}
	if got == nil {
		g.done = true
		return nil, nil
	}
	g.compressedBase, g.uncompressedBase = got.End, got.UncompressedEnd
	return got, nil
}

var errStopAfterOne = errStop{}

type errStop struct{}

func (errStop) Error() string { return "gzipmembers: stop after one member" }

// interpretMember stages a member's inflated bytes (through a
// disk-backed buffer in file mode, kept in memory otherwise) and
// attempts to parse it as a single WARC record; content that isn't a
// recognized WARC record is kept as NonWARCData instead, when requested.
func (g *GzipParser) interpretMember(m gzipmembers.Member) *GzippedMember {
	out := &GzippedMember{
		byteRange:         newByteRange(m.CompressedStart, m.CompressedEnd),
		UncompressedStart: m.UncompressedStart,
		UncompressedEnd:   m.UncompressedEnd,
	}

	var buf diskbuffer.Buffer
	if g.opts.fileMode {
		buf = diskbuffer.New()
		if _, err := buf.Write(m.Data); err != nil {
			buf.Close()
			buf = nil
		} else {
			out.closer = buf
		}
	}
	if buf == nil {
		out.setCached(m.Data)
	} else {
		out.setSource(&diskbufferSource{buf: buf})
	}

	if !IsWARCVersionLine([]byte(firstLine(m.Data))) {
		if g.opts.cacheNonWARCMemberBytes {
			out.NonWARCData = m.Data
		}
		return out
	}

	stream, err := NewStreamFromBytes(m.Data)
	if err != nil {
		if g.opts.cacheNonWARCMemberBytes {
			out.NonWARCData = m.Data
		}
		return out
	}
	parserOpts := append(append([]Option(nil), g.opts.parserOpts...), WithStyle(StyleDelimiter))
	p, err := NewParser(stream, parserOpts...)
	if err != nil {
		if g.opts.cacheNonWARCMemberBytes {
			out.NonWARCData = m.Data
		}
		return out
	}
	rec, err := p.Next()
	if err != nil || rec == nil {
		if g.opts.cacheNonWARCMemberBytes {
			out.NonWARCData = m.Data
		}
		return out
	}
	out.Record = rec
	return out
}

// diskbufferSource adapts diskbuffer.Buffer's ReadAtOffset (which takes
// its offset argument first) into the standard io.ReaderAt shape
// required by ByteSource.
type diskbufferSource struct {
	buf diskbuffer.Buffer
}

func (d *diskbufferSource) ReadAt(p []byte, off int64) (int, error) {
	return d.buf.ReadAtOffset(off, p)
}
