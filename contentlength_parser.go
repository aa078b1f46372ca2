package warcstream

import (
	"io"
	"strconv"
)

// contentLengthExtractor implements StyleContentLength: it trusts the
// record's declared Content-Length to skip exactly over the content
// block, rather than scanning for a delimiter. Faster and simpler, but
// wrong if Content-Length lies; see Record.ContentLengthCheckResult.
type contentLengthExtractor struct{}

func (contentLengthExtractor) extract(p *Parser) (*Record, error) {
	start := p.stream.Tell()

	headerEnd, headerRaw, err := p.scanHeaderBlock()
	if err != nil {
		return nil, err
	}
	if headerEnd < 0 {
		return nil, io.EOF
	}

	declaredLen, ok := FindContentLengthInBytes(headerRaw)
	if !ok {
		p.Warnings = append(p.Warnings, "record at offset "+strconv.FormatInt(start, 10)+": missing or malformed Content-Length, cannot use content-length parsing strategy for this record")
		if err := p.emitUnparsableLines(start, headerRaw); err != nil {
			return nil, err
		}
		return nil, errSkipRecord
	}

	contentStart := p.stream.Tell()
	content, err := p.stream.ReadAll(declaredLen)
	if err != nil {
		return nil, err
	}
	// Consume the record's own CRLF CRLF terminator.
	if _, err := p.stream.ReadAll(int64(len(terminator))); err != nil && err != io.EOF {
		return nil, err
	}

	end := contentStart + declaredLen
	rec := &Record{byteRange: newByteRange(start, end)}
	rec.Header = Header{
		byteRange: newByteRange(start, start+int64(len(headerRaw))),
		Version:   firstLine(headerRaw),
		Fields:    parseWARCFields(headerRaw),
	}
	rec.Content = ContentBlock{byteRange: newByteRange(contentStart, end)}

	attachBytes(p, &rec.Header.byteRange, headerRaw)
	attachBytes(p, &rec.Content.byteRange, content)
	// headerRaw already carries the last field's trailing CRLF; only the
	// blank line's own CRLF remains to rejoin it with content.
	full := append(append([]byte(nil), headerRaw...), append([]byte(CRLF), content...)...)
	attachBytes(p, &rec.byteRange, full)

	return rec, nil
}

// scanHeaderBlock reads and consumes the record's header block (version
// line through and including the last field's own CRLF), then consumes
// the blank line that follows it, leaving the stream positioned at the
// content block. FindNextHeaderEnd reports the index where the blank
// line's CRLF CRLF begins; the header's own end includes the first half
// of it (the last field's trailing CRLF), per SPEC_FULL.md §3/§8's
// header.end+2==content.start invariant.
func (p *Parser) scanHeaderBlock() (int, []byte, error) {
	size := int(p.opts.parsingChunkSize)
	for {
		buf, err := p.stream.Peek(size)
		if len(buf) == 0 && err != nil {
			if err == io.EOF {
				return -1, nil, nil
			}
			return -1, nil, err
		}
		if idx := FindNextHeaderEnd(buf); idx >= 0 {
			header, rerr := p.stream.ReadAll(int64(idx + len(CRLF)))
			if rerr != nil {
				return -1, nil, rerr
			}
			if _, rerr := p.stream.ReadAll(int64(len(CRLF))); rerr != nil {
				return -1, nil, rerr
			}
			return idx, header, nil
		}
		if err == io.EOF {
			return -1, nil, io.ErrUnexpectedEOF
		}
		size += growChunk
	}
}
