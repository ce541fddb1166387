package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/config"
	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/metrics"
	"github.com/emran-niftyitsolution/streaming/internal/models"
	"github.com/emran-niftyitsolution/streaming/internal/uploads"
	"github.com/emran-niftyitsolution/streaming/internal/utils"
)

// UploadChunkHandler receives one chunk of a chunked video upload. The first
// chunk of a new client filename implicitly creates the session; chunks may
// arrive in any order, and re-uploading an ordinal overwrites it.
func UploadChunkHandler(db *sql.DB, cfg *config.Config, store *uploads.ChunkStore, tracker *uploads.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		tracker.Start()
		defer tracker.Finish()

		// Cap the request body slightly above the chunk limit so the
		// multipart framing itself does not trip the limit.
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxChunkSize+64*1024)

		if err := r.ParseMultipartForm(cfg.MaxChunkSize + 64*1024); err != nil {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Chunk exceeds maximum size or body is not valid multipart",
				"CHUNK_TOO_LARGE", http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		clientFilename := r.FormValue("filename")
		chunkNumber, err1 := strconv.Atoi(r.FormValue("chunkNumber"))
		totalChunks, err2 := strconv.Atoi(r.FormValue("totalChunks"))
		fileSize, err3 := strconv.ParseInt(r.FormValue("fileSize"), 10, 64)
		if clientFilename == "" || err1 != nil || err2 != nil || err3 != nil {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Missing or invalid chunk metadata (filename, chunkNumber, totalChunks, fileSize)",
				"INVALID_CHUNK_METADATA", http.StatusBadRequest)
			return
		}

		if totalChunks < 1 {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "totalChunks must be at least 1", "INVALID_CHUNK_METADATA", http.StatusBadRequest)
			return
		}
		if chunkNumber < 1 || chunkNumber > totalChunks {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, fmt.Sprintf("Chunk number %d outside valid range [1, %d]", chunkNumber, totalChunks),
				"INVALID_CHUNK_ORDINAL", http.StatusBadRequest)
			return
		}
		if fileSize <= 0 || fileSize > cfg.MaxUploadSize {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, fmt.Sprintf("File size must be between 1 and %d bytes", cfg.MaxUploadSize),
				"FILE_TOO_LARGE", http.StatusBadRequest)
			return
		}

		allowed, ext, err := utils.IsVideoAllowed(clientFilename, cfg.AllowedExtensions)
		if err != nil || !allowed {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, fmt.Sprintf("File extension %q is not an allowed video type", ext),
				"EXTENSION_NOT_ALLOWED", http.StatusBadRequest)
			return
		}

		if ok, reason, err := utils.CheckDiskSpace(cfg.VideoDir, cfg.MaxChunkSize); err != nil || !ok {
			if err != nil {
				slog.Error("disk space check failed", "error", err)
			}
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Insufficient storage: "+reason, "INSUFFICIENT_STORAGE", http.StatusInsufficientStorage)
			return
		}

		sessionKey := uploads.SessionKey(clientFilename)
		session, err := database.GetUploadSession(db, sessionKey)
		if err != nil {
			slog.Error("failed to look up upload session", "session", sessionKey, "error", err)
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}

		if session == nil {
			now := time.Now()
			session = &models.UploadSession{
				SessionKey:     sessionKey,
				StoredFilename: uploads.NewStoredFilename(clientFilename),
				OriginalName:   sessionKey,
				DeclaredSize:   fileSize,
				TotalChunks:    totalChunks,
				CreatedAt:      now,
				LastActivity:   now,
			}
			if err := database.CreateUploadSession(db, session); err != nil {
				// Two first-chunks can race on session creation; the loser
				// re-reads the winner's row.
				session, err = database.GetUploadSession(db, sessionKey)
				if err != nil || session == nil {
					slog.Error("failed to create upload session", "session", sessionKey, "error", err)
					metrics.ChunksTotal.WithLabelValues("failure").Inc()
					sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
					return
				}
			} else {
				slog.Info("upload session created",
					"session", sessionKey,
					"stored_filename", session.StoredFilename,
					"total_chunks", totalChunks,
					"declared_size", fileSize,
				)
			}
		}

		if session.Completed {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Upload already finalized", "ALREADY_FINALIZED", http.StatusConflict)
			return
		}
		if session.TotalChunks != totalChunks || session.DeclaredSize != fileSize {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, fmt.Sprintf("Chunk metadata disagrees with session (expected %d chunks, %d bytes)",
				session.TotalChunks, session.DeclaredSize),
				"SESSION_MISMATCH", http.StatusBadRequest)
			return
		}

		chunk, _, err := r.FormFile("chunk")
		if err != nil {
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Missing chunk file field", "MISSING_CHUNK", http.StatusBadRequest)
			return
		}
		defer chunk.Close()

		existed, _, err := store.ChunkExists(sessionKey, chunkNumber)
		if err != nil {
			slog.Error("failed to check chunk existence", "session", sessionKey, "error", err)
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}

		written, err := store.SaveChunk(sessionKey, chunkNumber, chunk)
		if err != nil {
			slog.Error("failed to save chunk",
				"session", sessionKey, "chunk_number", chunkNumber, "error", err)
			metrics.ChunksTotal.WithLabelValues("failure").Inc()
			sendError(w, "Failed to persist chunk", "CHUNK_WRITE_FAILED", http.StatusInternalServerError)
			return
		}

		if existed {
			// Overwrite of a retried ordinal: the count stays put.
			if err := database.TouchUploadSession(db, sessionKey); err != nil {
				slog.Warn("failed to touch session", "session", sessionKey, "error", err)
			}
		} else {
			if err := database.IncrementChunksReceived(db, sessionKey, written); err != nil {
				slog.Error("failed to record chunk", "session", sessionKey, "error", err)
				metrics.ChunksTotal.WithLabelValues("failure").Inc()
				sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
				return
			}
		}

		metrics.ChunksTotal.WithLabelValues("success").Inc()
		metrics.ChunkSizeBytes.Observe(float64(written))

		session, err = database.GetUploadSession(db, sessionKey)
		if err != nil || session == nil {
			slog.Error("failed to re-read session", "session", sessionKey, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}

		slog.Debug("chunk received",
			"session", sessionKey,
			"chunk_number", chunkNumber,
			"chunks_received", session.ChunksReceived,
			"total_chunks", session.TotalChunks,
			"size", written,
			"retransmit", existed,
		)

		sendJSON(w, http.StatusOK, models.UploadChunkResponse{
			Success:        true,
			ChunkNumber:    chunkNumber,
			ChunksReceived: session.ChunksReceived,
			TotalChunks:    session.TotalChunks,
			Complete:       session.ChunksReceived >= session.TotalChunks,
		})
	}
}

// FinalizeUploadHandler verifies and publishes a chunked upload.
func FinalizeUploadHandler(db *sql.DB, cfg *config.Config, finalizer *uploads.Finalizer, tracker *uploads.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		tracker.Start()
		defer tracker.Finish()

		var req models.FinalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid JSON body", "INVALID_REQUEST", http.StatusBadRequest)
			return
		}
		if req.Filename == "" {
			sendError(w, "filename is required", "INVALID_REQUEST", http.StatusBadRequest)
			return
		}

		sessionKey := uploads.SessionKey(req.Filename)
		session, err := database.GetUploadSession(db, sessionKey)
		if err != nil {
			slog.Error("failed to look up upload session", "session", sessionKey, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		if session == nil {
			metrics.FinalizesTotal.WithLabelValues("not_found").Inc()
			sendError(w, "No upload session for this filename", "SESSION_NOT_FOUND", http.StatusNotFound)
			return
		}

		if req.TotalChunks != session.TotalChunks || req.FileSize != session.DeclaredSize {
			metrics.FinalizesTotal.WithLabelValues("conflict").Inc()
			sendError(w, fmt.Sprintf("Finalize parameters disagree with session (expected %d chunks, %d bytes)",
				session.TotalChunks, session.DeclaredSize),
				"PARAMETER_MISMATCH", http.StatusBadRequest)
			return
		}

		video, err := finalizer.Finalize(session)
		if err != nil {
			var incomplete *uploads.IncompleteUploadError
			var mismatch *uploads.SizeMismatchError
			switch {
			case errors.As(err, &incomplete):
				metrics.FinalizesTotal.WithLabelValues("incomplete").Inc()
				sendJSON(w, http.StatusBadRequest, models.FinalizeErrorResponse{
					Success:       false,
					Error:         "Upload incomplete: chunks missing",
					Code:          "UPLOAD_INCOMPLETE",
					MissingChunks: incomplete.Missing,
				})
			case errors.As(err, &mismatch):
				metrics.FinalizesTotal.WithLabelValues("size_mismatch").Inc()
				sendJSON(w, http.StatusBadRequest, models.FinalizeErrorResponse{
					Success:      false,
					Error:        "Assembled size does not match declared size",
					Code:         "SIZE_MISMATCH",
					ExpectedSize: mismatch.Expected,
					ActualSize:   mismatch.Actual,
				})
			case errors.Is(err, uploads.ErrFinalizeInFlight):
				metrics.FinalizesTotal.WithLabelValues("conflict").Inc()
				sendError(w, "Finalize already in progress for this upload",
					"FINALIZE_IN_FLIGHT", http.StatusConflict)
			default:
				metrics.FinalizesTotal.WithLabelValues("failure").Inc()
				slog.Error("finalize failed", "session", sessionKey, "error", err)
				sendError(w, "Failed to finalize upload", "FINALIZE_FAILED", http.StatusInternalServerError)
			}
			return
		}

		metrics.FinalizesTotal.WithLabelValues("success").Inc()

		sendJSON(w, http.StatusOK, models.FinalizeResponse{
			Success:  true,
			Filename: video.Filename,
			Size:     video.Size,
		})
	}
}

// UploadStatusHandler reports session progress, including which ordinals are
// still missing, so interrupted clients can resume instead of restarting.
func UploadStatusHandler(db *sql.DB, store *uploads.ChunkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		filename := strings.TrimPrefix(r.URL.Path, "/videos/upload-status/")
		if filename == "" {
			sendError(w, "Invalid filename", "INVALID_FILENAME", http.StatusBadRequest)
			return
		}

		sessionKey := uploads.SessionKey(filename)
		session, err := database.GetUploadSession(db, sessionKey)
		if err != nil {
			slog.Error("failed to look up upload session", "session", sessionKey, "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		if session == nil {
			sendError(w, "No upload session for this filename", "SESSION_NOT_FOUND", http.StatusNotFound)
			return
		}

		var missing []int
		if !session.Completed {
			missing, err = store.MissingChunks(sessionKey, session.TotalChunks)
			if err != nil {
				slog.Error("failed to list missing chunks", "session", sessionKey, "error", err)
				sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
				return
			}
		}

		sendJSON(w, http.StatusOK, models.UploadStatusResponse{
			SessionKey:     session.SessionKey,
			Filename:       session.StoredFilename,
			ChunksReceived: session.ChunksReceived,
			TotalChunks:    session.TotalChunks,
			MissingChunks:  missing,
			Complete:       session.Completed,
		})
	}
}
