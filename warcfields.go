package warcstream

import (
	"bytes"
)

// firstLine returns raw's first line, with its terminator stripped,
// interpreted as the record's WARC version string.
func firstLine(raw []byte) string {
	end := AdvanceToNextLine(raw, 0)
	var line []byte
	if end < 0 {
		line = raw
	} else {
		line = raw[:end]
	}
	return string(bytes.TrimRight(line, "\r\n"))
}

// parseWARCFields parses a header block's named fields (everything
// after the version line) into name -> values, preserving the order
// each value was seen. WARC does not support line folding, so each
// physical line is exactly one field.
func parseWARCFields(header []byte) map[string][]string {
	fields := make(map[string][]string)
	lines := bytes.Split(header, []byte("\n"))
	for i, line := range lines {
		if i == 0 {
			// version line
			continue
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		n := string(bytes.TrimSpace(name))
		v := string(bytes.TrimSpace(value))
		fields[n] = append(fields[n], v)
	}
	return fields
}

// attachBytes caches raw on b when caching is requested, and always
// attaches a lazy back-reference into the parser's stream source when
// lazy loading is enabled, so a caller can still re-read the range even
// when it wasn't eagerly cached.
func attachBytes(p *Parser, b *byteRange, raw []byte) {
	if p.opts.cacheHeaderBytes || p.opts.cacheContentBytes || p.opts.cacheRecordBytes {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		b.setCached(cp)
	}
	if p.opts.enableLazyLoading {
		if src := p.stream.Source(); src != nil {
			b.setSource(&offsetSource{base: b.Start, src: src})
		}
	}
}

// offsetSource adapts a stream's absolute-offset ByteSource into one
// whose ReadAt is relative to a byteRange's own Start, so
// io.NewSectionReader(source, 0, length) reads exactly that range.
type offsetSource struct {
	base int64
	src  ByteSource
}

func (o *offsetSource) ReadAt(p []byte, off int64) (int, error) {
	return o.src.ReadAt(p, o.base+off)
}
