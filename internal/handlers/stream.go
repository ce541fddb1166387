package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/emran-niftyitsolution/streaming/internal/config"
	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/httprange"
	"github.com/emran-niftyitsolution/streaming/internal/metrics"
	"github.com/emran-niftyitsolution/streaming/internal/models"
	"github.com/emran-niftyitsolution/streaming/internal/streamer"
)

// StreamVideoHandler serves a published video, honoring single-range
// requests with 206 responses. End offsets past EOF are refused with 416
// rather than clamped, so a stale client learns the real file size from the
// Content-Range header instead of silently getting fewer bytes.
func StreamVideoHandler(db *sql.DB, cfg *config.Config) http.HandlerFunc {
	str := streamer.New()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		filename := strings.TrimPrefix(r.URL.Path, "/videos/stream/")
		if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
			sendError(w, "Invalid filename", "INVALID_FILENAME", http.StatusBadRequest)
			return
		}

		video, err := database.GetVideoByFilename(db, filename)
		if err != nil {
			slog.Error("failed to look up video", "filename", filename, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		if video == nil {
			sendError(w, "Video not found", "VIDEO_NOT_FOUND", http.StatusNotFound)
			return
		}

		path := filepath.Join(cfg.VideoDir, video.Filename)
		f, err := os.Open(path)
		if err != nil {
			// A DB row without its artifact means the store is inconsistent;
			// to the client it is still just a missing video.
			slog.Error("video artifact missing on disk", "filename", filename, "path", path, "error", err)
			sendError(w, "Video not found", "VIDEO_NOT_FOUND", http.StatusNotFound)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			slog.Error("failed to stat video artifact", "filename", filename, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		size := info.Size()

		rangeHeader := r.Header.Get("Range")
		rng, err := httprange.Parse(rangeHeader, size)
		if err != nil {
			if errors.Is(err, httprange.ErrUnsatisfiable) {
				metrics.RangeRequestsTotal.WithLabelValues("unsatisfiable").Inc()
				sendRangeNotSatisfiable(w, rangeHeader, size)
				return
			}
			metrics.RangeRequestsTotal.WithLabelValues("malformed").Inc()
			sendError(w, "Malformed Range header", "MALFORMED_RANGE", http.StatusBadRequest)
			return
		}

		if rng == nil {
			metrics.RangeRequestsTotal.WithLabelValues("full").Inc()
		} else {
			metrics.RangeRequestsTotal.WithLabelValues("partial").Inc()
		}

		mimeType := video.MimeType
		if mimeType == "" {
			mimeType = "video/mp4"
		}
		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Cache-Control", "no-cache")

		plan := streamer.BuildPlan(size, rng)

		if r.Method == http.MethodHead {
			for key, values := range plan.Headers() {
				for _, v := range values {
					w.Header().Set(key, v)
				}
			}
			w.WriteHeader(plan.Status)
			return
		}

		result, err := str.Stream(r.Context(), w, f, plan)
		metrics.StreamsTotal.WithLabelValues(result.State.String()).Inc()
		metrics.StreamBytesSent.Observe(float64(result.BytesSent))

		switch {
		case result.State == streamer.StateFailed:
			slog.Error("stream failed before headers",
				"filename", filename, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
		case result.Disconnected:
			// Clients seeking around a video abandon ranges constantly.
			slog.Info("client disconnected mid-stream",
				"filename", filename,
				"bytes_sent", result.BytesSent,
				"planned_bytes", plan.ChunkSize,
			)
		case err != nil:
			slog.Error("stream aborted",
				"filename", filename,
				"bytes_sent", result.BytesSent,
				"error", err,
			)
		default:
			slog.Debug("stream completed",
				"filename", filename,
				"status", plan.Status,
				"bytes_sent", result.BytesSent,
			)
		}
	}
}

// sendRangeNotSatisfiable writes the 416 response. Content-Range carries the
// "bytes */<size>" form so clients can retry with valid bounds.
func sendRangeNotSatisfiable(w http.ResponseWriter, rangeHeader string, size int64) {
	w.Header().Set("Content-Range", httprange.UnsatisfiableContentRange(size))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)

	resp := models.RangeErrorResponse{
		Error:          "Requested range not satisfiable",
		Code:           "RANGE_NOT_SATISFIABLE",
		RequestedRange: rangeHeader,
		FileSize:       size,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode range error response", "error", err)
	}
}
