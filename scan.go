package warcstream

import (
	"bytes"
	"strconv"
	"strings"
)

// CRLF is the WARC line terminator, used both within the header block
// and as (doubled) the record terminator.
const CRLF = "\r\n"

// terminator is the blank line that ends a WARC record: CRLF CRLF.
const terminator = CRLF + CRLF

// warcVersions lists the version lines recognized as the start of a new
// WARC record. 1.1 is listed first since it's the newer revision readers
// are more likely to encounter going forward, but both are valid.
var warcVersions = []string{"WARC/1.1", "WARC/1.0"}

// growChunk is how much additional lookahead FindNextDelimiter and
// FindNextHeaderEnd request from the stream per failed scan attempt,
// mirroring the chunked re-scan a line-oriented scanner needs when the
// target pattern straddles a chunk boundary.
const growChunk = 8 * 1024

// SkipLeadingWhitespace advances past any CRLF/LF/whitespace bytes at
// the front of p, returning the number of bytes skipped. WARC permits
// blank lines between records; callers use this to find where the next
// record's version line actually begins.
func SkipLeadingWhitespace(p []byte) int {
	i := 0
	for i < len(p) {
		switch p[i] {
		case '\r', '\n', ' ', '\t':
			i++
		default:
			return i
		}
	}
	return i
}

// AdvanceToNextLine returns the index just past the next line terminator
// in p starting at offset from, or -1 if none is found.
func AdvanceToNextLine(p []byte, from int) int {
	idx := bytes.IndexByte(p[from:], '\n')
	if idx < 0 {
		return -1
	}
	return from + idx + 1
}

// IsWARCVersionLine reports whether line (without its terminator) is a
// recognized WARC version line.
func IsWARCVersionLine(line []byte) bool {
	trimmed := strings.TrimRight(string(line), "\r\n")
	for _, v := range warcVersions {
		if trimmed == v {
			return true
		}
	}
	return false
}

// FindNextDelimiter searches buf for the record terminator (CRLF CRLF)
// immediately followed by a recognized WARC version line, which is how
// StyleDelimiter tells "end of this record" apart from a CRLF CRLF that
// merely happens to occur inside a content block. It returns the index
// of the start of the terminator, or -1 if no such delimiter is
// confirmed within buf (the caller should request more bytes and retry;
// see growChunk).
func FindNextDelimiter(buf []byte) int {
	from := 0
	for {
		rel := bytes.Index(buf[from:], []byte(terminator))
		if rel < 0 {
			return -1
		}
		idx := from + rel
		lineStart := idx + len(terminator)
		end := AdvanceToNextLine(buf, lineStart)
		var line []byte
		if end < 0 {
			line = buf[lineStart:]
		} else {
			line = buf[lineStart:end]
		}
		if IsWARCVersionLine(line) {
			return idx
		}
		if end < 0 {
			// Not enough lookahead to confirm or reject; caller must
			// grow the buffer and retry from the same terminator.
			return -1
		}
		from = idx + 1
	}
}

// FindNextHeaderEnd searches buf for the blank line that ends a header
// block (CRLF CRLF), without requiring what follows to look like a new
// record. Used once a record's start has already been located and only
// its header's extent is in question.
func FindNextHeaderEnd(buf []byte) int {
	return bytes.Index(buf, []byte(terminator))
}

// FindContentLengthInBytes extracts the Content-Length header's value
// from a raw header block, returning (length, true) if present and
// well-formed, or (0, false) otherwise. Per ISO 28500 the field is
// mandatory but content-length parsing must still tolerate its absence
// or malformation gracefully (see Record.ContentLengthCheckResult).
func FindContentLengthInBytes(header []byte) (int64, bool) {
	for _, line := range bytes.Split(header, []byte("\n")) {
		line = bytes.TrimRight(line, "\r\n")
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(string(name)), "Content-Length") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// FindPatternInBytes reports the index of the first occurrence of pat in
// p, or -1 if absent. A thin, named wrapper kept alongside the other
// scanning primitives so filter/handler code (see filters.go) doesn't
// reach for bytes.Index directly.
func FindPatternInBytes(p, pat []byte) int { return bytes.Index(p, pat) }

// IsTargetInBytes reports whether pat occurs anywhere in p.
func IsTargetInBytes(p, pat []byte) bool { return FindPatternInBytes(p, pat) >= 0 }
