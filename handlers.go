package warcstream

import (
	"fmt"
	"io"
)

// PrintRecordAttribute builds a Handler that writes one line per record
// to w, naming the record's WARC-Type, byte range, and the named header
// field's value (if present). Modeled on the original source's
// print-record debugging handler.
func PrintRecordAttribute(w io.Writer, field string) Handler {
	return func(r *Record) error {
		value, _ := r.Header.Get(field)
		_, err := fmt.Fprintf(w, "[%d,%d) %s %s=%q\n", r.Start, r.End, r.Type(), field, value)
		return err
	}
}

// MemberOffset is one gzip member's compressed and uncompressed byte
// ranges, as returned by GetMemberOffsets.
type MemberOffset struct {
	CompressedStart, CompressedEnd     int64
	UncompressedStart, UncompressedEnd int64
}

// GetMemberOffsets extracts the (compressed, uncompressed) offset pairs
// from a slice of located gzip members, for callers building an index
// without this module performing indexing itself.
func GetMemberOffsets(members []*GzippedMember) []MemberOffset {
	out := make([]MemberOffset, 0, len(members))
	for _, m := range members {
		out = append(out, MemberOffset{
			CompressedStart:   m.Start,
			CompressedEnd:     m.End,
			UncompressedStart: m.UncompressedStart,
			UncompressedEnd:   m.UncompressedEnd,
		})
	}
	return out
}
