package warcstream_test

import "strings"

// buildWARC assembles a minimal, valid uncompressed WARC from a
// sequence of (fields, content) record descriptions, joining them with
// the standard CRLF framing, for use as in-memory fixtures across the
// package's tests.
func buildWARC(records ...record) []byte {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.version)
		sb.WriteString("\r\n")
		for _, f := range r.fields {
			sb.WriteString(f)
			sb.WriteString("\r\n")
		}
		sb.WriteString("\r\n")
		sb.WriteString(r.content)
		sb.WriteString("\r\n\r\n")
	}
	return []byte(sb.String())
}

type record struct {
	version string
	fields  []string
	content string
}

func warcinfoRecord(content string) record {
	return record{
		version: "WARC/1.0",
		fields: []string{
			"WARC-Type: warcinfo",
			"WARC-Record-ID: <urn:uuid:00000000-0000-0000-0000-000000000001>",
			"Content-Length: " + itoaLen(content),
			"Content-Type: application/warc-fields",
		},
		content: content,
	}
}

func responseRecord(targetURI, content string) record {
	return record{
		version: "WARC/1.0",
		fields: []string{
			"WARC-Type: response",
			"WARC-Record-ID: <urn:uuid:00000000-0000-0000-0000-000000000002>",
			"WARC-Target-URI: " + targetURI,
			"Content-Length: " + itoaLen(content),
			"Content-Type: application/http; msgtype=response",
		},
		content: content,
	}
}

func itoaLen(s string) string {
	n := len(s)
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
