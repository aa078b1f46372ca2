package warcstream

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"strconv"
	"strings"

	"github.com/dsnet/compress/brotli"
	"github.com/klauspost/compress/zstd"
)

// GetHTTPHeaderBlock returns the HTTP status/request line and headers
// embedded in a "response" or "request" record's content block, i.e.
// everything up to (not including) the blank line that separates HTTP
// headers from the HTTP body.
func (r *Record) GetHTTPHeaderBlock() ([]byte, error) {
	content, err := r.Content.Bytes()
	if err != nil {
		return nil, err
	}
	idx := FindNextHeaderEnd(content)
	if idx < 0 {
		return content, nil
	}
	return content[:idx], nil
}

// GetHTTPBodyBlock returns the raw (still possibly chunked and/or
// content-encoded) HTTP body from a "response" or "request" record.
func (r *Record) GetHTTPBodyBlock() ([]byte, error) {
	content, err := r.Content.Bytes()
	if err != nil {
		return nil, err
	}
	idx := FindNextHeaderEnd(content)
	if idx < 0 {
		return nil, nil
	}
	start := idx + len(terminator)
	if start > len(content) {
		return nil, nil
	}
	return content[start:], nil
}

// GetDecompressedHTTPBody returns the record's HTTP body after undoing
// Transfer-Encoding: chunked (always applied first, see
// SPEC_FULL.md §4.5) and then every Content-Encoding named in the HTTP
// header block, in reverse of the order listed (the last-applied coding
// is undone first).
func (r *Record) GetDecompressedHTTPBody() ([]byte, error) {
	header, err := r.GetHTTPHeaderBlock()
	if err != nil {
		return nil, err
	}
	body, err := r.GetHTTPBodyBlock()
	if err != nil {
		return nil, err
	}

	fields := parseWARCFields(header)
	if isChunked(fields) {
		body, err = dechunk(body)
		if err != nil {
			return nil, &DecodingError{Encoding: "chunked", wrapped: err}
		}
	}

	encodings := contentEncodings(fields)
	for i := len(encodings) - 1; i >= 0; i-- {
		body, err = decodeContentEncoding(encodings[i], body)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func isChunked(fields map[string][]string) bool {
	for _, v := range fields["Transfer-Encoding"] {
		for _, tok := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(tok), "chunked") {
				return true
			}
		}
	}
	return false
}

func contentEncodings(fields map[string][]string) []string {
	var out []string
	for _, v := range fields["Content-Encoding"] {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// dechunk reverses HTTP/1.1 chunked transfer coding (RFC 7230 §4.1).
func dechunk(body []byte) ([]byte, error) {
	var out bytes.Buffer
	r := bytes.NewReader(body)
	br := newLineReader(r)
	for {
		sizeLine, err := br.readLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		sizeStr := strings.TrimSpace(strings.SplitN(string(sizeLine), ";", 2)[0])
		if sizeStr == "" {
			continue
		}
		size, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			break
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		out.Write(chunk)
		// Consume the CRLF after the chunk data.
		if _, err := br.readLine(); err != nil && err != io.EOF {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

type lineReader struct {
	r *bytes.Reader
}

func newLineReader(r *bytes.Reader) *lineReader { return &lineReader{r: r} }

func (l *lineReader) readLine() ([]byte, error) {
	var line []byte
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			if len(line) > 0 {
				return line, nil
			}
			return nil, err
		}
		if b == '\n' {
			return bytes.TrimRight(line, "\r"), nil
		}
		line = append(line, b)
	}
}

// decodeContentEncoding applies one Content-Encoding decoder. Supported
// encodings are backed by real compression packages; see
// SPEC_FULL.md §4.5.
func decodeContentEncoding(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "identity", "":
		return body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		return out, nil
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		return out, nil
	case "br":
		br, err := brotli.NewReader(bytes.NewReader(body), nil)
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		defer br.Close()
		out, err := io.ReadAll(br)
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		return out, nil
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, &DecodingError{Encoding: encoding, wrapped: err}
		}
		return out, nil
	default:
		return nil, &DecodingError{Encoding: encoding}
	}
}
