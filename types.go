package warcstream

import (
	"fmt"
	"io"
)

// ByteSource is the non-owning back-reference a byteRange uses to lazily
// re-read its bytes from the stream that produced it. Offsets passed to
// ReadAt are relative to the range's own start: the parser wraps the
// stream's Source (see Stream) so that offset 0 is the range's start.
type ByteSource interface {
	io.ReaderAt
}

// byteRange records a span of a stream, [Start, End), plus optionally a
// cached copy of the bytes and/or a back-reference to re-read them. The
// two are independent: a range can be cached, lazy, both, or (briefly,
// before either is populated) neither.
type byteRange struct {
	Start, End int64
	cached     []byte
	source     ByteSource
}

func newByteRange(start, end int64) byteRange {
	return byteRange{Start: start, End: end}
}

// Len reports the range's length in bytes.
func (b byteRange) Len() int64 { return b.End - b.Start }

// setCached stores an owned copy of the range's bytes.
func (b *byteRange) setCached(p []byte) { b.cached = p }

// setSource attaches the non-owning back-reference used for lazy reads.
func (b *byteRange) setSource(s ByteSource) { b.source = s }

// Cached reports whether the range already holds its bytes in memory.
func (b byteRange) Cached() bool { return b.cached != nil }

// Bytes returns the range's bytes, preferring the cached copy and
// falling back to a lazy read through the back-reference. It fails with
// *AccessError if neither is available.
func (b byteRange) Bytes() ([]byte, error) {
	if b.cached != nil {
		return b.cached, nil
	}
	if b.source == nil {
		return nil, &AccessError{msg: fmt.Sprintf("byte range [%d,%d) has no cached bytes and no backing source", b.Start, b.End)}
	}
	buf := make([]byte, b.Len())
	if _, err := b.source.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("warcstream: reading byte range [%d,%d): %w", b.Start, b.End, err)
	}
	return buf, nil
}

// Reader returns an io.Reader over the range's bytes, reading lazily
// through the back-reference when no cached copy exists.
func (b byteRange) Reader() (io.Reader, error) {
	if b.cached != nil {
		return bytesReader(b.cached), nil
	}
	if b.source == nil {
		return nil, &AccessError{msg: fmt.Sprintf("byte range [%d,%d) has no cached bytes and no backing source", b.Start, b.End)}
	}
	return io.NewSectionReader(b.source, 0, b.Len()), nil
}

func bytesReader(p []byte) io.Reader { return &sliceReader{p: p} }

type sliceReader struct {
	p []byte
	i int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.i >= len(r.p) {
		return 0, io.EOF
	}
	n := copy(p, r.p[r.i:])
	r.i += n
	return n, nil
}

// Header is the WARC record's header block: the version line, the named
// fields, and the byte range the header occupies (version line through
// the blank line that terminates it, exclusive).
type Header struct {
	byteRange
	Version string
	Fields  map[string][]string
}

// Get returns the first value of the named header field, case-sensitive
// per ISO 28500's field-name convention, and whether it was present.
func (h *Header) Get(name string) (string, bool) {
	vs, ok := h.Fields[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// GetAll returns every value of the named header field, in the order
// they appeared. WARC does not support line folding; each occurrence of
// a field name is a distinct value.
func (h *Header) GetAll(name string) []string { return h.Fields[name] }

// ContentBlock is the record's content block: the bytes between the
// header's terminating blank line and the record's own CRLF CRLF
// terminator.
type ContentBlock struct {
	byteRange
}

// UnparsableLine records one line of a candidate header block that
// StyleContentLength could not use because it has no valid
// Content-Length, kept for diagnostics rather than silently discarded.
// Other bytes between records that do not begin with a WARC version line
// do not become UnparsableLines: parsing ends there with a warning in
// Parser.Warnings.
type UnparsableLine struct {
	byteRange
	Reason string
}

// Record is one parsed WARC record: its header, its content block, and
// the byte range of the whole record (header start through the record's
// terminating CRLF CRLF, exclusive of the terminator).
type Record struct {
	byteRange
	Header  Header
	Content ContentBlock

	// ContentLengthCheckResult is nil when Content-Length was not
	// verified against the actual content block length (StyleDelimiter
	// without CheckContentLengths, or StyleContentLength which trusts
	// the header by construction). Non-nil reports whether they agreed.
	ContentLengthCheckResult *bool
}

// Type returns the record's WARC-Type field, or "" if absent.
func (r *Record) Type() string {
	v, _ := r.Header.Get("WARC-Type")
	return v
}

// TargetURI returns the record's WARC-Target-URI field, or "" if absent.
func (r *Record) TargetURI() string {
	v, _ := r.Header.Get("WARC-Target-URI")
	return v
}

// RecordID returns the record's WARC-Record-ID field, or "" if absent.
func (r *Record) RecordID() string {
	v, _ := r.Header.Get("WARC-Record-ID")
	return v
}

// GzippedMember is one gzip member located within a record-at-a-time
// gzipped WARC: its compressed byte range (the byteRange embedded here),
// the uncompressed byte range its content occupies once inflated, and
// either the WARC Record it decompresses to or, when the member's
// content isn't a recognized WARC record, the raw decompressed bytes in
// NonWARCData.
type GzippedMember struct {
	byteRange
	UncompressedStart, UncompressedEnd int64

	Record      *Record
	NonWARCData []byte

	// closer releases any disk-backed buffer the member's bytes were
	// staged through (file mode only); nil in the default in-memory
	// mode, where there's nothing to release.
	closer io.Closer
}

// Close releases any resources the member holds open, such as a
// disk-backed staging buffer used when GzipParser was constructed with
// WithFileMode. Safe to call on a member with nothing to release.
func (m *GzippedMember) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}
