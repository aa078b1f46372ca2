package warcstream

import (
	"regexp"
	"strconv"
	"strings"
)

// ComparisonOp is the comparison RecordContentLengthFilter applies
// between a record's actual content length and a threshold.
type ComparisonOp int

const (
	LessThan ComparisonOp = iota
	LessOrEqual
	Equal
	GreaterOrEqual
	GreaterThan
)

func (op ComparisonOp) apply(a, b int64) bool {
	switch op {
	case LessThan:
		return a < b
	case LessOrEqual:
		return a <= b
	case Equal:
		return a == b
	case GreaterOrEqual:
		return a >= b
	case GreaterThan:
		return a > b
	default:
		return false
	}
}

// WARCNamedFieldFilter builds a Filter that keeps records whose header
// field name has one of the given values (case-insensitive on the
// value). Passing no values keeps any record where the field is present
// at all.
func WARCNamedFieldFilter(name string, values ...string) Filter {
	return func(r *Record) bool {
		vs, ok := r.Header.Fields[name]
		if !ok {
			return false
		}
		if len(values) == 0 {
			return true
		}
		for _, v := range vs {
			for _, want := range values {
				if strings.EqualFold(v, want) {
					return true
				}
			}
		}
		return false
	}
}

// WARCHeaderRegexFilter builds a Filter that keeps records whose raw
// header bytes match pattern anywhere.
func WARCHeaderRegexFilter(pattern string) (Filter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return func(r *Record) bool {
		raw, err := r.Header.Bytes()
		if err != nil {
			return false
		}
		return re.Match(raw)
	}, nil
}

// RecordContentLengthFilter builds a Filter comparing a record's actual
// content block length against threshold using op.
func RecordContentLengthFilter(op ComparisonOp, threshold int64) Filter {
	return func(r *Record) bool {
		return op.apply(r.Content.Len(), threshold)
	}
}

// RecordContentTypeFilter builds a Filter that keeps records whose
// Content-Type header field matches one of mimeTypes (prefix match, so
// "text/" matches "text/html; charset=utf-8").
func RecordContentTypeFilter(mimeTypes ...string) Filter {
	return func(r *Record) bool {
		ct, ok := r.Header.Get("Content-Type")
		if !ok {
			return false
		}
		for _, want := range mimeTypes {
			if strings.HasPrefix(strings.ToLower(ct), strings.ToLower(want)) {
				return true
			}
		}
		return false
	}
}

// HTTPVerbFilter builds a Filter that keeps "request" records whose
// HTTP method matches one of verbs (case-insensitive).
func HTTPVerbFilter(verbs ...string) Filter {
	return func(r *Record) bool {
		header, err := r.GetHTTPHeaderBlock()
		if err != nil || len(header) == 0 {
			return false
		}
		method := firstToken(header)
		for _, v := range verbs {
			if strings.EqualFold(method, v) {
				return true
			}
		}
		return false
	}
}

// HTTPStatusFilter builds a Filter that keeps "response" records whose
// HTTP status code matches one of codes.
func HTTPStatusFilter(codes ...int) Filter {
	return func(r *Record) bool {
		header, err := r.GetHTTPHeaderBlock()
		if err != nil || len(header) == 0 {
			return false
		}
		line := firstLine(header)
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			return false
		}
		status, err := strconv.Atoi(parts[1])
		if err != nil {
			return false
		}
		for _, c := range codes {
			if status == c {
				return true
			}
		}
		return false
	}
}

// HTTPHeaderFilter builds a Filter that keeps records whose HTTP header
// block contains a field named name with one of the given values
// (case-insensitive value match, like WARCNamedFieldFilter).
func HTTPHeaderFilter(name string, values ...string) Filter {
	return func(r *Record) bool {
		header, err := r.GetHTTPHeaderBlock()
		if err != nil {
			return false
		}
		fields := parseWARCFields(header)
		vs, ok := fields[name]
		if !ok {
			return false
		}
		if len(values) == 0 {
			return true
		}
		for _, v := range vs {
			for _, want := range values {
				if strings.EqualFold(v, want) {
					return true
				}
			}
		}
		return false
	}
}

// HTTPResponseContentTypeFilter builds a Filter that keeps "response"
// records whose HTTP Content-Type header matches one of mimeTypes
// (prefix match).
func HTTPResponseContentTypeFilter(mimeTypes ...string) Filter {
	return HTTPHeaderFilterPrefix("Content-Type", mimeTypes...)
}

// HTTPHeaderFilterPrefix is like HTTPHeaderFilter but matches values by
// prefix instead of full equality; HTTPResponseContentTypeFilter is
// built on it.
func HTTPHeaderFilterPrefix(name string, prefixes ...string) Filter {
	return func(r *Record) bool {
		header, err := r.GetHTTPHeaderBlock()
		if err != nil {
			return false
		}
		fields := parseWARCFields(header)
		vs, ok := fields[name]
		if !ok {
			return false
		}
		for _, v := range vs {
			for _, want := range prefixes {
				if strings.HasPrefix(strings.ToLower(v), strings.ToLower(want)) {
					return true
				}
			}
		}
		return false
	}
}

func firstToken(p []byte) string {
	line := firstLine(p)
	idx := strings.IndexByte(line, ' ')
	if idx < 0 {
		return line
	}
	return line[:idx]
}
