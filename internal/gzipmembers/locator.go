// Package gzipmembers walks a record-at-a-time gzipped WARC one gzip
// member at a time, publishing each member's compressed and
// uncompressed byte ranges. Modeled on the low-level gzip header/footer
// handling in ianlewis/go-dictzip's reader (header parsing over
// compress/flate's raw deflate stream, hash/crc32 + encoding/binary for
// footer verification), rather than monkey-patching the standard
// library's gzip.Reader.
package gzipmembers

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	id1       byte = 0x1f
	id2       byte = 0x8b
	deflateCM byte = 0x08

	flgCRC     = byte(1 << 1)
	flgEXTRA   = byte(1 << 2)
	flgNAME    = byte(1 << 3)
	flgCOMMENT = byte(1 << 4)
)

// ErrNotGzip indicates the bytes at the current position don't begin
// with a gzip member header.
var ErrNotGzip = errors.New("gzipmembers: not a gzip member")

// Member is one located gzip member: its compressed byte range within
// the source stream, and its inflated content.
type Member struct {
	CompressedStart, CompressedEnd     int64
	UncompressedStart, UncompressedEnd int64
	Data                               []byte
}

// countingByteReader wraps an io.Reader, counting bytes read and
// satisfying io.ByteReader for flate.NewReader and header parsing.
type countingByteReader struct {
	r io.Reader
	n int64
	// one-byte scratch for ReadByte
	buf [1]byte
}

func (c *countingByteReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingByteReader) ReadByte() (byte, error) {
	n, err := c.r.Read(c.buf[:])
	if n == 1 {
		c.n++
		return c.buf[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

// Locate walks every gzip member in src starting at its current
// position, invoking fn with each Member in turn. fn's returned error,
// if any, stops the walk and is returned from Locate. Iteration stops
// cleanly at end of stream.
func Locate(src io.Reader, fn func(Member) error) error {
	cr := &countingByteReader{r: src}
	var compressedOffset int64
	var uncompressedOffset int64

	for {
		memberStart := compressedOffset
		ok, err := hasMoreMembers(cr)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := readHeader(cr); err != nil {
			return err
		}

		fr := flate.NewReader(cr)
		data, err := io.ReadAll(fr)
		fr.Close()
		if err != nil {
			return fmt.Errorf("gzipmembers: inflating member at offset %d: %w", memberStart, err)
		}

		footer := make([]byte, 8)
		if _, err := io.ReadFull(cr, footer); err != nil {
			return fmt.Errorf("gzipmembers: reading footer at offset %d: %w", cr.n, err)
		}
		wantCRC := binary.LittleEndian.Uint32(footer[0:4])
		wantISize := binary.LittleEndian.Uint32(footer[4:8])
		gotCRC := crc32.ChecksumIEEE(data)
		gotISize := uint32(len(data))
		if gotCRC != wantCRC || gotISize != wantISize {
			return fmt.Errorf("gzipmembers: member at offset %d failed CRC32/ISIZE check", memberStart)
		}

		compressedEnd := cr.n
		uncompressedEnd := uncompressedOffset + int64(len(data))

		if err := fn(Member{
			CompressedStart:   memberStart,
			CompressedEnd:     compressedEnd,
			UncompressedStart: uncompressedOffset,
			UncompressedEnd:   uncompressedEnd,
			Data:              data,
		}); err != nil {
			return err
		}

		compressedOffset = compressedEnd
		uncompressedOffset = uncompressedEnd
	}
}

// hasMoreMembers peeks for the two gzip magic bytes, distinguishing a
// clean end of stream from the start of another member.
func hasMoreMembers(cr *countingByteReader) (bool, error) {
	b0, err := cr.ReadByte()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	b1, err := cr.ReadByte()
	if err != nil {
		return false, err
	}
	if b0 != id1 || b1 != id2 {
		return false, ErrNotGzip
	}
	// Rewind the two magic bytes into a small prefix reader so
	// readHeader sees the full fixed header.
	cr.r = io.MultiReader(bytes.NewReader([]byte{b0, b1}), cr.r)
	cr.n -= 2
	return true, nil
}

// readHeader consumes one gzip member's header (fixed 10 bytes plus any
// optional FEXTRA/FNAME/FCOMMENT/FHCRC fields named by FLG).
func readHeader(cr *countingByteReader) error {
	head := make([]byte, 10)
	if _, err := io.ReadFull(cr, head); err != nil {
		return fmt.Errorf("gzipmembers: reading header: %w", err)
	}
	if head[0] != id1 || head[1] != id2 {
		return ErrNotGzip
	}
	if head[2] != deflateCM {
		return fmt.Errorf("gzipmembers: unsupported compression method %x", head[2])
	}
	flg := head[3]

	if flg&flgEXTRA != 0 {
		xlenBuf := make([]byte, 2)
		if _, err := io.ReadFull(cr, xlenBuf); err != nil {
			return fmt.Errorf("gzipmembers: reading FEXTRA length: %w", err)
		}
		xlen := binary.LittleEndian.Uint16(xlenBuf)
		extra := make([]byte, xlen)
		if _, err := io.ReadFull(cr, extra); err != nil {
			return fmt.Errorf("gzipmembers: reading FEXTRA: %w", err)
		}
	}
	if flg&flgNAME != 0 {
		if err := readCString(cr); err != nil {
			return fmt.Errorf("gzipmembers: reading FNAME: %w", err)
		}
	}
	if flg&flgCOMMENT != 0 {
		if err := readCString(cr); err != nil {
			return fmt.Errorf("gzipmembers: reading FCOMMENT: %w", err)
		}
	}
	if flg&flgCRC != 0 {
		crcBuf := make([]byte, 2)
		if _, err := io.ReadFull(cr, crcBuf); err != nil {
			return fmt.Errorf("gzipmembers: reading FHCRC: %w", err)
		}
	}
	return nil
}

func readCString(cr *countingByteReader) error {
	for {
		b, err := cr.ReadByte()
		if err != nil {
			return err
		}
		if b == 0 {
			return nil
		}
	}
}
