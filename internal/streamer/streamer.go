package streamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// defaultBufferSize is the copy buffer used while streaming (64KB).
const defaultBufferSize = 64 * 1024

// State is the lifecycle state of a single streaming response.
type State int

const (
	// StateIdle: nothing written yet; errors here can still become a 500.
	StateIdle State = iota
	// StateHeadersSent: status line and headers are on the wire.
	StateHeadersSent
	// StateStreaming: at least one body byte has been written.
	StateStreaming
	// StateCompleted: the full planned window was delivered.
	StateCompleted
	// StateAborted: the response ended early after headers were sent,
	// either because the client went away or because the source failed.
	// Headers cannot be un-sent, so this is terminal.
	StateAborted
	// StateFailed: the stream failed before any header was written; the
	// caller still owns the response and should send an error status.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeadersSent:
		return "headers_sent"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result reports how a stream ended.
type Result struct {
	State        State
	BytesSent    int64
	Disconnected bool // the client went away; a normal termination, not an error
}

// Streamer copies a planned byte window from a seekable source to an HTTP
// response, enforcing the headers-before-body invariant in one place.
type Streamer struct {
	// BufferSize is the copy buffer size; zero means the default.
	BufferSize int
}

// New returns a Streamer with the default buffer size.
func New() *Streamer {
	return &Streamer{}
}

// Stream writes the plan's headers and body window from src to w.
//
// Failure semantics: if the source cannot be positioned before anything was
// written, the result is StateFailed with a non-nil error and the caller may
// still send a 500. Once headers are out, a source read error terminates the
// response (StateAborted) and is returned for logging; a write error or a
// cancelled ctx means the client disconnected, which is reported via
// Result.Disconnected with a nil error.
func (s *Streamer) Stream(ctx context.Context, w http.ResponseWriter, src io.ReadSeeker, plan Plan) (Result, error) {
	res := Result{State: StateIdle}

	if _, err := src.Seek(plan.Start, io.SeekStart); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("failed to seek to offset %d: %w", plan.Start, err)
	}

	for key, values := range plan.Headers() {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(plan.Status)
	res.State = StateHeadersSent

	size := s.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	buf := make([]byte, size)
	remaining := plan.ChunkSize

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			res.State = StateAborted
			res.Disconnected = true
			return res, nil
		}

		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}

		read, rerr := src.Read(buf[:n])
		if read > 0 {
			written, werr := w.Write(buf[:read])
			res.BytesSent += int64(written)
			res.State = StateStreaming
			remaining -= int64(written)
			if werr != nil {
				// The response writer only fails when the client is gone.
				res.State = StateAborted
				res.Disconnected = true
				return res, nil
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) && remaining == 0 {
				break
			}
			res.State = StateAborted
			return res, fmt.Errorf("read failed after %d bytes: %w", res.BytesSent, rerr)
		}
	}

	res.State = StateCompleted
	return res, nil
}
