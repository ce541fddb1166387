package uploads

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// partialDirName is the subdirectory of the video directory that holds
	// in-progress upload sessions. The leading dot keeps it out of listings.
	partialDirName = ".partial"

	// assembleBufferSize is the buffered-writer size used during chunk
	// concatenation (4MB) to reduce syscall overhead on large files.
	assembleBufferSize = 4 * 1024 * 1024
)

// ChunkStore persists upload chunks on the local filesystem, one directory
// per session, one file per ordinal. Chunks are 1-indexed and write-once
// from the client's perspective; rewriting an ordinal overwrites in place.
type ChunkStore struct {
	videoDir string
}

// NewChunkStore creates a ChunkStore rooted at the given video directory
// and ensures the partial-upload namespace exists.
func NewChunkStore(videoDir string) (*ChunkStore, error) {
	partial := filepath.Join(videoDir, partialDirName)
	if err := os.MkdirAll(partial, 0755); err != nil {
		return nil, fmt.Errorf("failed to create partial upload directory: %w", err)
	}
	return &ChunkStore{videoDir: videoDir}, nil
}

// PartialDir returns the root of the partial-upload namespace.
func (cs *ChunkStore) PartialDir() string {
	return filepath.Join(cs.videoDir, partialDirName)
}

// SessionDir returns the chunk directory for a session.
func (cs *ChunkStore) SessionDir(sessionKey string) string {
	return filepath.Join(cs.PartialDir(), sessionKey)
}

// ChunkPath returns the file path for one chunk ordinal.
func (cs *ChunkStore) ChunkPath(sessionKey string, chunkNumber int) string {
	return filepath.Join(cs.SessionDir(sessionKey), fmt.Sprintf("chunk_%d", chunkNumber))
}

// SaveChunk persists one chunk, overwriting any previous bytes for the same
// ordinal. Returns the number of bytes written.
func (cs *ChunkStore) SaveChunk(sessionKey string, chunkNumber int, r io.Reader) (int64, error) {
	if err := os.MkdirAll(cs.SessionDir(sessionKey), 0755); err != nil {
		return 0, fmt.Errorf("failed to create session directory: %w", err)
	}

	path := cs.ChunkPath(sessionKey, chunkNumber)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create chunk file: %w", err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return written, fmt.Errorf("failed to write chunk data: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("failed to close chunk file: %w", err)
	}

	// No fsync here: a lost chunk after a crash is re-uploadable, and
	// finalize re-verifies presence and total size.

	slog.Debug("chunk saved",
		"session", sessionKey,
		"chunk_number", chunkNumber,
		"size", written,
	)

	return written, nil
}

// ChunkExists reports whether a chunk ordinal is present and its size.
func (cs *ChunkStore) ChunkExists(sessionKey string, chunkNumber int) (bool, int64, error) {
	info, err := os.Stat(cs.ChunkPath(sessionKey, chunkNumber))
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to stat chunk file: %w", err)
	}
	return true, info.Size(), nil
}

// MissingChunks returns the ordinals in [1, totalChunks] that are absent,
// in ascending order.
func (cs *ChunkStore) MissingChunks(sessionKey string, totalChunks int) ([]int, error) {
	var missing []int
	for n := 1; n <= totalChunks; n++ {
		exists, _, err := cs.ChunkExists(sessionKey, n)
		if err != nil {
			return nil, fmt.Errorf("failed to check chunk %d: %w", n, err)
		}
		if !exists {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

// SessionSize returns the total bytes currently stored for a session.
func (cs *ChunkStore) SessionSize(sessionKey string) (int64, error) {
	entries, err := os.ReadDir(cs.SessionDir(sessionKey))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, fmt.Errorf("failed to stat chunk: %w", err)
		}
		total += info.Size()
	}
	return total, nil
}

// Assemble concatenates chunks 1..totalChunks in strict ordinal order into
// dst. All chunks must be present; callers check MissingChunks first, and
// Assemble re-verifies as it goes. Returns the total bytes written.
func (cs *ChunkStore) Assemble(sessionKey string, totalChunks int, dst io.Writer) (int64, error) {
	w := bufio.NewWriterSize(dst, assembleBufferSize)

	var total int64
	for n := 1; n <= totalChunks; n++ {
		chunk, err := os.Open(cs.ChunkPath(sessionKey, n))
		if err != nil {
			return total, fmt.Errorf("failed to open chunk %d: %w", n, err)
		}

		written, err := io.Copy(w, chunk)
		chunk.Close()
		if err != nil {
			return total, fmt.Errorf("failed to copy chunk %d: %w", n, err)
		}
		total += written
	}

	if err := w.Flush(); err != nil {
		return total, fmt.Errorf("failed to flush assembled output: %w", err)
	}

	return total, nil
}

// DeleteChunks removes all chunk remnants for a session.
func (cs *ChunkStore) DeleteChunks(sessionKey string) error {
	dir := cs.SessionDir(sessionKey)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete chunk directory: %w", err)
	}

	slog.Debug("chunks deleted", "session", sessionKey, "path", dir)
	return nil
}
