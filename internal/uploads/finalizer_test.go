package uploads

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/models"
)

func setupFinalizer(t *testing.T) (*Finalizer, *sql.DB, *ChunkStore, string) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	videoDir := t.TempDir()
	store, err := NewChunkStore(videoDir)
	if err != nil {
		t.Fatalf("NewChunkStore: %v", err)
	}

	return NewFinalizer(db, store, videoDir), db, store, videoDir
}

func createSession(t *testing.T, db *sql.DB, key string, declaredSize int64, totalChunks int) *models.UploadSession {
	t.Helper()

	now := time.Now()
	session := &models.UploadSession{
		SessionKey:     key,
		StoredFilename: "20260101T000000-abcd1234-" + key,
		OriginalName:   key,
		DeclaredSize:   declaredSize,
		TotalChunks:    totalChunks,
		CreatedAt:      now,
		LastActivity:   now,
	}
	if err := database.CreateUploadSession(db, session); err != nil {
		t.Fatalf("CreateUploadSession: %v", err)
	}
	return session
}

func TestFinalizeReassemblesByteEqual(t *testing.T) {
	f, db, store, videoDir := setupFinalizer(t)

	// Five chunks of varying sizes; the published file must equal their
	// concatenation in ordinal order.
	chunks := [][]byte{
		bytes.Repeat([]byte{0x01}, 1000),
		bytes.Repeat([]byte{0x02}, 500),
		bytes.Repeat([]byte{0x03}, 2000),
		bytes.Repeat([]byte{0x04}, 1),
		bytes.Repeat([]byte{0x05}, 250),
	}
	var want []byte
	for i, data := range chunks {
		if _, err := store.SaveChunk("movie.mp4", i+1, bytes.NewReader(data)); err != nil {
			t.Fatalf("SaveChunk %d: %v", i+1, err)
		}
		want = append(want, data...)
	}

	session := createSession(t, db, "movie.mp4", int64(len(want)), len(chunks))

	video, err := f.Finalize(session)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if video.Size != int64(len(want)) {
		t.Errorf("video.Size = %d, want %d", video.Size, len(want))
	}

	got, err := os.ReadFile(filepath.Join(videoDir, video.Filename))
	if err != nil {
		t.Fatalf("read published file: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("published bytes differ from concatenated chunks")
	}

	// Chunk remnants are gone and the session is marked completed.
	if _, err := os.Stat(store.SessionDir("movie.mp4")); !os.IsNotExist(err) {
		t.Error("chunk remnants not removed after finalize")
	}
	sess, err := database.GetUploadSession(db, "movie.mp4")
	if err != nil {
		t.Fatalf("GetUploadSession: %v", err)
	}
	if !sess.Completed {
		t.Error("session not marked completed")
	}
}

func TestFinalizeMissingChunks(t *testing.T) {
	f, db, store, videoDir := setupFinalizer(t)

	for _, n := range []int{1, 2, 4} {
		if _, err := store.SaveChunk("movie.mp4", n, bytes.NewReader([]byte("data"))); err != nil {
			t.Fatalf("SaveChunk %d: %v", n, err)
		}
	}
	session := createSession(t, db, "movie.mp4", 16, 4)

	_, err := f.Finalize(session)
	var incomplete *IncompleteUploadError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Finalize error = %v, want IncompleteUploadError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != 3 {
		t.Errorf("Missing = %v, want [3]", incomplete.Missing)
	}

	// Nothing published, chunks preserved for retry.
	if _, err := os.Stat(filepath.Join(videoDir, session.StoredFilename)); !os.IsNotExist(err) {
		t.Error("artifact published despite missing chunks")
	}
	exists, _, err := store.ChunkExists("movie.mp4", 1)
	if err != nil || !exists {
		t.Errorf("chunk 1 gone after failed finalize (exists=%v err=%v)", exists, err)
	}
}

func TestFinalizeSizeMismatch(t *testing.T) {
	f, db, store, videoDir := setupFinalizer(t)

	for n := 1; n <= 2; n++ {
		if _, err := store.SaveChunk("movie.mp4", n, bytes.NewReader([]byte("1234"))); err != nil {
			t.Fatalf("SaveChunk %d: %v", n, err)
		}
	}
	// Declared size disagrees with the 8 bytes actually stored.
	session := createSession(t, db, "movie.mp4", 100, 2)

	_, err := f.Finalize(session)
	var mismatch *SizeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Finalize error = %v, want SizeMismatchError", err)
	}
	if mismatch.Expected != 100 || mismatch.Actual != 8 {
		t.Errorf("mismatch = %+v, want Expected=100 Actual=8", mismatch)
	}

	if _, err := os.Stat(filepath.Join(videoDir, session.StoredFilename)); !os.IsNotExist(err) {
		t.Error("artifact published despite size mismatch")
	}
	// Chunks preserved so the client can re-upload the bad ordinal.
	exists, _, err := store.ChunkExists("movie.mp4", 2)
	if err != nil || !exists {
		t.Errorf("chunk 2 gone after failed finalize (exists=%v err=%v)", exists, err)
	}
	// The temp assembly file must not linger either.
	tmp := filepath.Join(store.SessionDir("movie.mp4"), "assembled.tmp")
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("temp assembly file left behind")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	f, db, store, _ := setupFinalizer(t)

	if _, err := store.SaveChunk("movie.mp4", 1, bytes.NewReader([]byte("payload"))); err != nil {
		t.Fatalf("SaveChunk: %v", err)
	}
	session := createSession(t, db, "movie.mp4", 7, 1)

	first, err := f.Finalize(session)
	if err != nil {
		t.Fatalf("first Finalize: %v", err)
	}

	second, err := f.Finalize(session)
	if err != nil {
		t.Fatalf("repeat Finalize: %v", err)
	}
	if second.Filename != first.Filename || second.Size != first.Size {
		t.Errorf("repeat finalize returned %+v, want %+v", second, first)
	}

	// Still exactly one published video.
	videos, err := database.ListVideos(db)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("got %d videos after repeat finalize, want 1", len(videos))
	}
}

func TestFinalizeInFlight(t *testing.T) {
	f, db, store, _ := setupFinalizer(t)

	if _, err := store.SaveChunk("movie.mp4", 1, bytes.NewReader([]byte("payload"))); err != nil {
		t.Fatalf("SaveChunk: %v", err)
	}
	session := createSession(t, db, "movie.mp4", 7, 1)

	// Hold the session lock as a concurrent finalize would.
	mu := f.sessionLock(session.SessionKey)
	mu.Lock()
	defer mu.Unlock()

	_, err := f.Finalize(session)
	if !errors.Is(err, ErrFinalizeInFlight) {
		t.Errorf("Finalize error = %v, want ErrFinalizeInFlight", err)
	}
}
