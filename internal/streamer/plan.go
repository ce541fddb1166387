// Package streamer plans and drives range-aware video responses.
package streamer

import (
	"net/http"
	"strconv"

	"github.com/emran-niftyitsolution/streaming/internal/httprange"
)

// Plan describes how a streaming response will be framed. It is derived
// purely from the file size and the (optional) requested range; building a
// plan performs no I/O.
type Plan struct {
	Status    int   // http.StatusOK or http.StatusPartialContent
	Partial   bool
	Start     int64 // first byte offset, inclusive
	End       int64 // last byte offset, inclusive
	ChunkSize int64 // number of body bytes: End - Start + 1
	TotalSize int64
}

// BuildPlan computes the response plan for a file of the given size. A nil
// rng means the whole file is served with a 200; otherwise the window is
// served with a 206. The range must already be validated against size.
func BuildPlan(size int64, rng *httprange.ByteRange) Plan {
	if rng == nil {
		return Plan{
			Status:    http.StatusOK,
			Partial:   false,
			Start:     0,
			End:       size - 1,
			ChunkSize: size,
			TotalSize: size,
		}
	}
	return Plan{
		Status:    http.StatusPartialContent,
		Partial:   true,
		Start:     rng.Start,
		End:       rng.End,
		ChunkSize: rng.End - rng.Start + 1,
		TotalSize: size,
	}
}

// Headers returns the framing headers the plan requires. Content-Length is
// always present; partial plans additionally carry Content-Range and
// Accept-Ranges.
func (p Plan) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Length", strconv.FormatInt(p.ChunkSize, 10))
	if p.Partial {
		rng := httprange.ByteRange{Start: p.Start, End: p.End}
		h.Set("Content-Range", rng.ContentRange(p.TotalSize))
		h.Set("Accept-Ranges", "bytes")
	}
	return h
}
