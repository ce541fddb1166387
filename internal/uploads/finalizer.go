package uploads

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/metrics"
	"github.com/emran-niftyitsolution/streaming/internal/models"
)

// ErrFinalizeInFlight means another finalize call for the same session is
// currently running. At most one finalize per session may be in flight so a
// competing call can never race the chunk-remnant removal.
var ErrFinalizeInFlight = errors.New("finalize already in progress for this session")

// ErrArtifactExists means the target filename is already published.
// Published names are write-once; this should never happen with generated
// names and indicates a corrupted session.
var ErrArtifactExists = errors.New("artifact already exists under final name")

// IncompleteUploadError reports the chunk ordinals still missing.
type IncompleteUploadError struct {
	Missing []int
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload incomplete: %d chunks missing", len(e.Missing))
}

// SizeMismatchError reports a reassembled artifact whose byte length
// disagrees with the client-declared size.
type SizeMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("assembled size %d does not match declared size %d", e.Actual, e.Expected)
}

// Finalizer turns a complete chunk set into a published video artifact.
//
// Publication is atomic: chunks are concatenated into a temp file inside the
// partial namespace (same filesystem as the video directory) and moved to
// the final name with a rename, so listing and streaming can never observe a
// half-written artifact. On any failure the final name stays absent and the
// chunk remnants are preserved for retry.
type Finalizer struct {
	db       *sql.DB
	store    *ChunkStore
	videoDir string

	// locks holds one mutex per session key to serialize finalize calls.
	locks sync.Map
}

// NewFinalizer creates a Finalizer publishing into videoDir.
func NewFinalizer(db *sql.DB, store *ChunkStore, videoDir string) *Finalizer {
	return &Finalizer{db: db, store: store, videoDir: videoDir}
}

func (f *Finalizer) sessionLock(sessionKey string) *sync.Mutex {
	mu, _ := f.locks.LoadOrStore(sessionKey, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Finalize verifies that every chunk of the session is present, reassembles
// them in ordinal order, checks the result against the declared size, and
// publishes the artifact. Re-finalizing an already completed session is
// idempotent and returns the previously published video.
func (f *Finalizer) Finalize(session *models.UploadSession) (*models.Video, error) {
	mu := f.sessionLock(session.SessionKey)
	if !mu.TryLock() {
		return nil, ErrFinalizeInFlight
	}
	defer mu.Unlock()

	// Re-read the session under the lock: a concurrent finalize may have
	// completed between the caller's lookup and our lock acquisition.
	current, err := database.GetUploadSession(f.db, session.SessionKey)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("upload session %q no longer exists", session.SessionKey)
	}
	if current.Completed {
		video, err := database.GetVideoByFilename(f.db, current.StoredFilename)
		if err != nil {
			return nil, err
		}
		if video == nil {
			return nil, fmt.Errorf("session %q marked completed but artifact %q is not published",
				current.SessionKey, current.StoredFilename)
		}
		slog.Info("finalize repeated on completed session",
			"session", current.SessionKey,
			"filename", video.Filename,
		)
		return video, nil
	}

	missing, err := f.store.MissingChunks(current.SessionKey, current.TotalChunks)
	if err != nil {
		return nil, fmt.Errorf("failed to check for missing chunks: %w", err)
	}
	if len(missing) > 0 {
		return nil, &IncompleteUploadError{Missing: missing}
	}

	finalPath := filepath.Join(f.videoDir, current.StoredFilename)
	if _, err := os.Stat(finalPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactExists, current.StoredFilename)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat final path: %w", err)
	}

	tmpPath := filepath.Join(f.store.SessionDir(current.SessionKey), "assembled.tmp")
	written, err := f.assembleToTemp(current, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	if written != current.DeclaredSize {
		os.Remove(tmpPath)
		return nil, &SizeMismatchError{Expected: current.DeclaredSize, Actual: written}
	}

	mimeType := "video/mp4"
	if detected, err := mimetype.DetectFile(tmpPath); err == nil {
		mimeType = detected.String()
	}

	// Atomic publish: rename within the same filesystem.
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to publish artifact: %w", err)
	}

	video := &models.Video{
		Filename:     current.StoredFilename,
		OriginalName: current.OriginalName,
		Size:         written,
		MimeType:     mimeType,
		CreatedAt:    time.Now(),
	}
	if err := database.CreateVideo(f.db, video); err != nil {
		// Unpublish so the artifact is never reachable without a record.
		os.Remove(finalPath)
		return nil, err
	}

	if err := database.MarkSessionCompleted(f.db, current.SessionKey); err != nil {
		slog.Error("failed to mark session completed", "session", current.SessionKey, "error", err)
		// The artifact is published; the reaper will retire the session row.
	}

	if err := f.store.DeleteChunks(current.SessionKey); err != nil {
		slog.Error("failed to delete chunk remnants", "session", current.SessionKey, "error", err)
		// Not fatal: remnants are cleaned up by the reaper.
	}

	slog.Info("upload finalized",
		"session", current.SessionKey,
		"filename", video.Filename,
		"size", video.Size,
		"total_chunks", current.TotalChunks,
		"mime_type", mimeType,
	)

	return video, nil
}

func (f *Finalizer) assembleToTemp(session *models.UploadSession, tmpPath string) (int64, error) {
	start := time.Now()

	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp artifact: %w", err)
	}

	written, err := f.store.Assemble(session.SessionKey, session.TotalChunks, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close temp artifact: %w", cerr)
	}
	if err != nil {
		return written, err
	}

	metrics.AssemblyDuration.Observe(time.Since(start).Seconds())
	slog.Debug("chunks assembled",
		"session", session.SessionKey,
		"total_chunks", session.TotalChunks,
		"bytes", written,
		"duration", time.Since(start),
	)

	return written, nil
}
