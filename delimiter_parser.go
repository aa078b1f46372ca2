package warcstream

import (
	"io"
	"strconv"
)

// delimiterExtractor implements StyleDelimiter: it scans forward for the
// record terminator confirmed by a following WARC version line (or end
// of stream), rather than trusting any declared Content-Length.
type delimiterExtractor struct{}

func (delimiterExtractor) extract(p *Parser) (*Record, error) {
	start := p.stream.Tell()

	size := int(p.opts.parsingChunkSize)
	var window []byte
	var delimIdx int
	var atEOF bool

	for {
		buf, err := p.stream.Peek(size)
		if len(buf) == 0 && err != nil {
			if err == io.EOF {
				atEOF = true
				window = buf
				break
			}
			return nil, err
		}
		window = buf
		delimIdx = FindNextDelimiter(window)
		if delimIdx >= 0 {
			break
		}
		if err == io.EOF {
			// No confirmed delimiter and no more bytes will arrive:
			// the remainder of the stream is this record's content.
			atEOF = true
			break
		}
		size += growChunk
	}

	if atEOF && delimIdx < 0 && len(window) >= len(terminator) &&
		string(window[len(window)-len(terminator):]) == terminator &&
		FindNextHeaderEnd(window[:len(window)-len(terminator)]) >= 0 {
		// A terminator that ends the stream closes the last record.
		delimIdx = len(window) - len(terminator)
	}

	var recordLen int64
	if atEOF && delimIdx < 0 {
		recordLen = int64(len(window))
	} else {
		recordLen = int64(delimIdx)
	}
	if recordLen == 0 {
		return nil, io.EOF
	}

	raw, err := p.stream.ReadAll(recordLen)
	if err != nil {
		return nil, err
	}
	// Consume the terminator itself, if one was found (not present at
	// true end of stream).
	if !atEOF || delimIdx >= 0 {
		if _, err := p.stream.ReadAll(int64(len(terminator))); err != nil && err != io.EOF {
			return nil, err
		}
	}

	end := start + recordLen
	rec := &Record{byteRange: newByteRange(start, end)}

	if p.opts.splitRecords {
		// FindNextHeaderEnd reports the index where the blank-line
		// terminator (CRLF CRLF) begins. The header block's own end
		// includes the last field's trailing CRLF (the first half of
		// that terminator); the blank line itself (the second CRLF) is
		// the sole gap between header.End and content.Start, per
		// SPEC_FULL.md §3/§8's header.end+2==content.start invariant.
		idx := FindNextHeaderEnd(raw)
		if idx < 0 {
			p.Warnings = append(p.Warnings, "record at offset "+strconv.FormatInt(start, 10)+": no header/content boundary found")
			idx = len(raw)
		}
		headerEnd := idx + len(CRLF)
		if headerEnd > len(raw) {
			headerEnd = len(raw)
		}
		rec.Header = Header{
			byteRange: newByteRange(start, start+int64(headerEnd)),
			Version:   firstLine(raw),
			Fields:    parseWARCFields(raw[:headerEnd]),
		}
		contentStart := idx + len(terminator)
		if contentStart > len(raw) {
			contentStart = len(raw)
		}
		rec.Content = ContentBlock{byteRange: newByteRange(start+int64(contentStart), end)}
		attachBytes(p, &rec.Header.byteRange, raw[:headerEnd])
		attachBytes(p, &rec.Content.byteRange, raw[contentStart:])
	} else {
		rec.Header = Header{Version: firstLine(raw)}
	}
	attachBytes(p, &rec.byteRange, raw)

	return rec, nil
}
