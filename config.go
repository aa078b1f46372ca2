package warcstream

// Style selects which WARC record parsing strategy a Parser uses.
type Style int

const (
	// StyleDelimiter locates record boundaries by scanning for the
	// terminator followed by a recognized WARC version line.
	StyleDelimiter Style = iota
	// StyleContentLength trusts each record's Content-Length header to
	// skip exactly over its content block.
	StyleContentLength
)

func (s Style) String() string {
	switch s {
	case StyleDelimiter:
		return "delimiter"
	case StyleContentLength:
		return "content-length"
	default:
		return "unknown"
	}
}

// Filter is a predicate run against a parsed Record; a Parser drops the
// record (without running handlers or yielding it) if any filter in its
// chain returns false.
type Filter func(*Record) bool

// Handler is a side-effecting visitor run against each record that
// survives the filter chain, before it's yielded to the caller.
type Handler func(*Record) error

// Callback runs once, after the stream is exhausted, with the full set
// of records parsed (only meaningful when options.collectRecords is
// set; see WithCollectRecords).
type Callback func(records []*Record) error

// UnparsableLineHandler is a side-effecting visitor run against each
// UnparsableLine produced when a candidate header block can't be
// interpreted as a WARC record (see SPEC_FULL.md §4.3.2, §4.4
// FIND_NEXT_RECORD).
type UnparsableLineHandler func(*UnparsableLine) error

// options holds every configurable aspect of a Parser, built up through
// functional Option values the way the teacher's warcRecordOptions is
// built from WarcRecordOption.
type options struct {
	style Style

	parsingChunkSize int64
	stopAfterNth     int

	splitRecords        bool
	checkContentLengths bool

	enableLazyLoading bool
	cacheHeaderBytes   bool
	cacheContentBytes  bool
	cacheRecordBytes   bool

	cacheUnparsableLines     bool
	cacheUnparsableLineBytes bool

	collectRecords bool

	filters                []Filter
	handlers               []Handler
	callbacks              []Callback
	unparsableLineHandlers []UnparsableLineHandler
}

func defaultOptions() *options {
	return &options{
		style:             StyleDelimiter,
		parsingChunkSize:  growChunk,
		splitRecords:      true,
		enableLazyLoading: true,
	}
}

// Option configures a Parser or GzipParser at construction time.
type Option func(*options)

// WithStyle selects the parsing strategy.
func WithStyle(s Style) Option {
	return func(o *options) { o.style = s }
}

// WithParsingChunkSize sets the size, in bytes, of the first lookahead
// window used when scanning for a record's end (StyleDelimiter) or its
// header block (StyleContentLength); each failed scan widens the window
// by growChunk bytes.
func WithParsingChunkSize(n int64) Option {
	return func(o *options) { o.parsingChunkSize = n }
}

// WithStopAfterNth stops parsing after the nth record (1-indexed); 0
// (the default) means parse until the stream is exhausted.
func WithStopAfterNth(n int) Option {
	return func(o *options) { o.stopAfterNth = n }
}

// WithSplitRecords makes StyleDelimiter split each record into separate
// header and content block byte ranges (StyleContentLength always does).
// Required by WithCheckContentLengths.
func WithSplitRecords(b bool) Option {
	return func(o *options) { o.splitRecords = b }
}

// WithCheckContentLengths verifies each record's Content-Length header
// against the actual content block length, populating
// Record.ContentLengthCheckResult. Valid only with StyleDelimiter.
func WithCheckContentLengths(b bool) Option {
	return func(o *options) { o.checkContentLengths = b }
}

// WithLazyLoadingOfBytes controls whether byte ranges retain a
// back-reference for re-reading their bytes on demand.
func WithLazyLoadingOfBytes(b bool) Option {
	return func(o *options) { o.enableLazyLoading = b }
}

// WithCacheHeaderBytes caches each record's header bytes eagerly.
func WithCacheHeaderBytes(b bool) Option {
	return func(o *options) { o.cacheHeaderBytes = b }
}

// WithCacheContentBytes caches each record's content block bytes
// eagerly.
func WithCacheContentBytes(b bool) Option {
	return func(o *options) { o.cacheContentBytes = b }
}

// WithCacheRecordBytes caches each record's full bytes (header and
// content together) eagerly.
func WithCacheRecordBytes(b bool) Option {
	return func(o *options) { o.cacheRecordBytes = b }
}

// WithCollectRecords retains every parsed record in memory so
// Callbacks receive the full set at end of parse. Off by default since
// it defeats streaming for large archives.
func WithCollectRecords(b bool) Option {
	return func(o *options) { o.collectRecords = b }
}

// WithFilter appends a filter to the chain. Filters run in the order
// added; a record is dropped as soon as one returns false.
func WithFilter(f Filter) Option {
	return func(o *options) { o.filters = append(o.filters, f) }
}

// WithHandler appends a handler to the chain, run in order for every
// record that survives the filter chain.
func WithHandler(h Handler) Option {
	return func(o *options) { o.handlers = append(o.handlers, h) }
}

// WithCallback appends a callback to run once parsing completes. Only
// receives records when WithCollectRecords(true) is also set.
func WithCallback(c Callback) Option {
	return func(o *options) { o.callbacks = append(o.callbacks, c) }
}

// WithUnparsableLineHandler appends a handler run against each
// UnparsableLine produced when a candidate header can't be parsed (see
// SPEC_FULL.md §4.3.2).
func WithUnparsableLineHandler(h UnparsableLineHandler) Option {
	return func(o *options) { o.unparsableLineHandlers = append(o.unparsableLineHandlers, h) }
}

// WithCollectUnparsableLines retains every UnparsableLine encountered so
// far on the Parser (see Parser.UnparsableLines).
func WithCollectUnparsableLines(b bool) Option {
	return func(o *options) { o.cacheUnparsableLines = b }
}

// WithCacheUnparsableLineBytes caches each UnparsableLine's own bytes
// eagerly, independent of WithCollectUnparsableLines.
func WithCacheUnparsableLineBytes(b bool) Option {
	return func(o *options) { o.cacheUnparsableLineBytes = b }
}

// validate applies the option-combination rules described in SPEC_FULL.md
// §6, returning a *ConfigError for the first violation found.
func (o *options) validate() error {
	if o.checkContentLengths && !o.splitRecords {
		return newConfigError("CheckContentLengths requires SplitRecords")
	}
	if o.checkContentLengths && o.style == StyleContentLength {
		return newConfigError("CheckContentLengths requires StyleDelimiter")
	}
	if !o.enableLazyLoading && !(o.cacheHeaderBytes && o.cacheContentBytes) && !o.cacheRecordBytes {
		return newConfigError("byte ranges must be lazily loaded, or cached (header and content, or whole record)")
	}
	if o.parsingChunkSize <= 0 {
		return newConfigError("ParsingChunkSize must be positive, got %d", o.parsingChunkSize)
	}
	if o.stopAfterNth < 0 {
		return newConfigError("StopAfterNth must be non-negative, got %d", o.stopAfterNth)
	}
	return nil
}
