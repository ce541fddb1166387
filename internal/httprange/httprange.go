// Package httprange parses HTTP Range headers against a known resource size.
package httprange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed indicates a Range header that could not be parsed, or one
// whose start exceeds its end. Callers should answer 400.
var ErrMalformed = errors.New("malformed range header")

// ErrUnsatisfiable indicates a syntactically valid range that falls outside
// the file bounds. Callers should answer 416.
var ErrUnsatisfiable = errors.New("range not satisfiable")

// ByteRange is an inclusive byte window into a file.
// Invariant: 0 <= Start <= End < file size.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r *ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange returns the Content-Range header value for this range,
// in the form "bytes start-end/total".
func (r *ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// UnsatisfiableContentRange returns the Content-Range value for 416
// responses, in the form "bytes */total".
func UnsatisfiableContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// Parse parses a Range header of the form "bytes=<start>-<end>" (end
// optional) against the given file size. An empty header means no range was
// requested and returns (nil, nil).
//
// The start position is required: suffix ranges ("bytes=-500") and
// multi-range requests are rejected as malformed. A start or end at or past
// the end of the file is unsatisfiable rather than clamped, so a request for
// bytes beyond EOF fails instead of silently returning less than asked for.
func Parse(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: invalid file size %d", ErrMalformed, size)
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix in %q", ErrMalformed, prefix, header)
	}

	spec := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if strings.Contains(spec, ",") {
		return nil, fmt.Errorf("%w: multi-range requests are not supported", ErrMalformed)
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, fmt.Errorf("%w: expected start-end in %q", ErrMalformed, spec)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, fmt.Errorf("%w: invalid start position %q", ErrMalformed, startStr)
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return nil, fmt.Errorf("%w: invalid end position %q", ErrMalformed, endStr)
		}
	}

	if start > end {
		return nil, fmt.Errorf("%w: start %d > end %d", ErrMalformed, start, end)
	}
	if start >= size {
		return nil, fmt.Errorf("%w: start %d >= file size %d", ErrUnsatisfiable, start, size)
	}
	if end >= size {
		return nil, fmt.Errorf("%w: end %d >= file size %d", ErrUnsatisfiable, end, size)
	}

	return &ByteRange{Start: start, End: end}, nil
}
