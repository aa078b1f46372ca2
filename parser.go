package warcstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// state is the parser's current position in the shared driver sequence
// described in SPEC_FULL.md §4.4. Parser.step runs the current state's
// action in a single switch and reports the state to run next, in place
// of the string-keyed dictionary the Python source uses.
type state int

const (
	stateFindWARCHeader state = iota
	stateExtractNextRecord
	stateCheckRecordAgainstFilters
	stateRunRecordHandlers
	stateYieldCurrentRecord
	stateFindNextRecord
	stateRunParserCallbacks
	stateEnd
)

// extractor knows how to pull the next whole record (header bytes plus
// content bytes) out of a Parser's stream, starting at its current
// position. The two concrete strategies are delimiterExtractor and
// contentLengthExtractor; see SPEC_FULL.md §4.3.
type extractor interface {
	extract(p *Parser) (*Record, error)
}

// Parser drives either WARC parsing strategy over a Stream, yielding
// records one at a time through Next.
type Parser struct {
	stream  Stream
	opts    *options
	extract extractor
	log     *logrus.Entry

	sessionID string

	state   state
	current *Record
	count   int

	records         []*Record
	unparsableLines []*UnparsableLine
	Warnings        Validation
	Err             error

	done bool
}

// errSkipRecord is returned by an extractor when a candidate header
// block turned out not to be parsable as a WARC record by that style
// (e.g. a missing or malformed Content-Length under StyleContentLength).
// It routes the driver to stateFindNextRecord instead of ending the
// parse, matching SPEC_FULL.md §4.3.2's FIND_NEXT_RECORD transition.
var errSkipRecord = errors.New("warcstream: candidate header is not parsable as a WARC record")

// errNoWARCHeader is stored in Parser.Err when the stream has bytes but
// does not begin with a WARC version line.
var errNoWARCHeader = errors.New("warcstream: no WARC header found at start of stream")

// NewParser constructs a Parser over stream, validating opts eagerly.
// Parsing does not begin until Next is first called.
func NewParser(stream Stream, opts ...Option) (*Parser, error) {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	var ext extractor
	switch o.style {
	case StyleContentLength:
		ext = contentLengthExtractor{}
	default:
		ext = delimiterExtractor{}
	}

	sid := uuid.NewString()
	return &Parser{
		stream:    stream,
		opts:      o,
		extract:   ext,
		sessionID: sid,
		log:       logrus.WithField("session", sid),
		state:     stateFindWARCHeader,
	}, nil
}

// Next advances the parser and returns the next record that survives
// the filter chain, or (nil, nil) once the stream is exhausted. A
// non-nil error is fatal; the Parser must not be reused afterward.
func (p *Parser) Next() (*Record, error) {
	if p.done {
		return nil, nil
	}
	if p.Err != nil {
		return nil, p.Err
	}

	for {
		next, err := p.step()
		if err != nil {
			p.Err = err
			p.done = true
			return nil, err
		}
		p.state = next

		switch p.state {
		case stateYieldCurrentRecord:
			rec := p.current
			p.current = nil
			if p.opts.stopAfterNth > 0 && p.count >= p.opts.stopAfterNth {
				p.state = stateRunParserCallbacks
			} else {
				p.state = stateFindNextRecord
			}
			if p.opts.collectRecords {
				p.records = append(p.records, rec)
			}
			return rec, nil
		case stateRunParserCallbacks, stateEnd:
			p.done = true
			if err := p.runCallbacks(); err != nil {
				p.Err = err
				return nil, err
			}
			return nil, nil
		}
	}
}

// step runs the current state's action and reports the next state,
// implementing the FIND_WARC_HEADER -> EXTRACT_NEXT_RECORD ->
// CHECK_RECORD_AGAINST_FILTERS -> RUN_RECORD_HANDLERS ->
// YIELD_CURRENT_RECORD -> FIND_NEXT_RECORD -> RUN_PARSER_CALLBACKS -> END
// sequence.
func (p *Parser) step() (state, error) {
	switch p.state {
	case stateFindWARCHeader, stateFindNextRecord:
		ok, err := p.findWARCHeader()
		if err != nil {
			return stateEnd, err
		}
		if !ok {
			return stateEnd, nil
		}
		return stateExtractNextRecord, nil

	case stateExtractNextRecord:
		rec, err := p.extract.extract(p)
		if err != nil {
			if errors.Is(err, errSkipRecord) {
				return stateFindNextRecord, nil
			}
			if errors.Is(err, io.EOF) {
				return stateEnd, nil
			}
			return stateEnd, err
		}
		if rec == nil {
			return stateEnd, nil
		}
		if p.opts.checkContentLengths {
			p.checkContentLength(rec)
		}
		p.current = rec
		p.count++
		return stateCheckRecordAgainstFilters, nil

	case stateCheckRecordAgainstFilters:
		if !p.checkFilters(p.current) {
			p.current = nil
			return stateFindNextRecord, nil
		}
		return stateRunRecordHandlers, nil

	case stateRunRecordHandlers:
		if err := p.runHandlers(p.current); err != nil {
			return stateEnd, err
		}
		return stateYieldCurrentRecord, nil

	default:
		// stateYieldCurrentRecord and stateEnd are handled by Next()
		// directly and never reach step(). stateRunParserCallbacks
		// reaches step() once Next() has set it after the
		// WithStopAfterNth limit; returning stateEnd lets Next() run the
		// callbacks.
		return stateEnd, nil
	}
}

// findWARCHeader advances the stream past any inter-record whitespace
// and peeks far enough to confirm a recognized WARC version line
// begins at the new position. It reports false once the stream has no
// more records.
func (p *Parser) findWARCHeader() (bool, error) {
	for {
		peek, err := p.stream.Peek(len(CRLF))
		if err != nil {
			if err == io.EOF || len(peek) == 0 {
				return false, nil
			}
			return false, err
		}
		skip := SkipLeadingWhitespace(peek)
		if skip == 0 {
			break
		}
		if _, err := p.stream.ReadAll(int64(skip)); err != nil {
			return false, err
		}
	}

	line, err := p.peekLine()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if len(line) == 0 {
		return false, nil
	}
	if !IsWARCVersionLine(line) {
		p.Warnings = append(p.Warnings, fmt.Sprintf("offset %d: expected WARC version line, found %q", p.stream.Tell(), line))
		if p.state == stateFindWARCHeader {
			p.Err = errNoWARCHeader
		}
		return false, nil
	}
	return true, nil
}

// peekLine returns the next line (including its terminator) without
// consuming it, growing the lookahead window until a newline is found
// or the stream is exhausted.
func (p *Parser) peekLine() ([]byte, error) {
	size := 256
	for {
		buf, err := p.stream.Peek(size)
		if len(buf) == 0 && err != nil {
			return nil, err
		}
		if idx := AdvanceToNextLine(buf, 0); idx >= 0 {
			return buf[:idx], nil
		}
		if err != nil {
			// Stream ended before a newline; treat whatever is left as
			// the final line.
			return buf, nil
		}
		size += growChunk
	}
}

// checkContentLength compares the record's Content-Length header
// against its actual content block length, populating
// Record.ContentLengthCheckResult.
func (p *Parser) checkContentLength(rec *Record) {
	declared, ok := rec.Header.Get("Content-Length")
	if !ok {
		result := false
		rec.ContentLengthCheckResult = &result
		p.Warnings = append(p.Warnings, fmt.Sprintf("record at offset %d: missing Content-Length", rec.Start))
		return
	}
	n, ok := FindContentLengthInBytes([]byte("Content-Length: " + declared))
	actual := rec.Content.Len()
	result := ok && n == actual
	rec.ContentLengthCheckResult = &result
	if !result {
		p.Warnings = append(p.Warnings, fmt.Sprintf("record at offset %d: Content-Length mismatch (declared %s, actual %d)", rec.Start, declared, actual))
	}
}

func (p *Parser) checkFilters(rec *Record) bool {
	for _, f := range p.opts.filters {
		if !f(rec) {
			return false
		}
	}
	return true
}

func (p *Parser) runHandlers(rec *Record) error {
	for _, h := range p.opts.handlers {
		if err := h(rec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) runCallbacks() error {
	for _, c := range p.opts.callbacks {
		if err := c(p.records); err != nil {
			return err
		}
	}
	return nil
}

// UnparsableLines returns every UnparsableLine collected so far
// (requires WithCollectUnparsableLines).
func (p *Parser) UnparsableLines() []*UnparsableLine { return p.unparsableLines }

// emitUnparsableLines turns each physical line of a candidate header
// block that couldn't be parsed as a WARC record into an UnparsableLine,
// running the registered handlers and optionally collecting each one, per
// SPEC_FULL.md §4.3.2.
func (p *Parser) emitUnparsableLines(start int64, headerRaw []byte) error {
	cursor := start
	for _, raw := range bytes.SplitAfter(headerRaw, []byte("\n")) {
		if len(raw) == 0 {
			continue
		}
		end := cursor + int64(len(raw))
		line := &UnparsableLine{
			byteRange: newByteRange(cursor, end),
			Reason:    "missing or malformed Content-Length",
		}
		p.attachUnparsableLineBytes(line, raw)

		for _, h := range p.opts.unparsableLineHandlers {
			if err := h(line); err != nil {
				return err
			}
		}
		if p.opts.cacheUnparsableLines {
			p.unparsableLines = append(p.unparsableLines, line)
		}
		cursor = end
	}
	return nil
}

func (p *Parser) attachUnparsableLineBytes(line *UnparsableLine, raw []byte) {
	if p.opts.cacheUnparsableLineBytes {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		line.setCached(cp)
	}
	if p.opts.enableLazyLoading {
		if src := p.stream.Source(); src != nil {
			line.setSource(&offsetSource{base: line.Start, src: src})
		}
	}
}

// Parse drains the parser entirely and returns every record it yielded.
// When collect is true it also turns WithCollectRecords on for the rest
// of the Parser's life, so Callbacks and GetRecordOffsets see the records.
func (p *Parser) Parse(collect bool) ([]*Record, error) {
	if collect {
		p.opts.collectRecords = true
	}
	var out []*Record
	for {
		rec, err := p.Next()
		if err != nil {
			return out, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, rec)
	}
}

// Records returns a channel that yields each record in turn, closing
// once the stream is exhausted or an error occurs; check Err afterward.
func (p *Parser) Records() <-chan *Record {
	ch := make(chan *Record)
	go func() {
		defer close(ch)
		for {
			rec, err := p.Next()
			if err != nil || rec == nil {
				return
			}
			ch <- rec
		}
	}()
	return ch
}

// RecordOffset is the flat (start, end) or (header start, header end,
// content start, content end) tuple SPEC_FULL.md §10 describes as a
// supplemented convenience for CDX-like tooling built outside this
// module.
type RecordOffset struct {
	Start, End                                 int64
	HeaderStart, HeaderEnd                     int64
	ContentStart, ContentEnd                   int64
}

// GetRecordOffsets returns the offsets of every record collected so far
// (requires WithCollectRecords or Parse(true)).
func (p *Parser) GetRecordOffsets() []RecordOffset {
	out := make([]RecordOffset, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, RecordOffset{
			Start: r.Start, End: r.End,
			HeaderStart: r.Header.Start, HeaderEnd: r.Header.End,
			ContentStart: r.Content.Start, ContentEnd: r.Content.End,
		})
	}
	return out
}
