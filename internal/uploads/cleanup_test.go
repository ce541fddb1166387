package uploads

import (
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/models"
)

func TestReaperSweep(t *testing.T) {
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

	store, err := NewChunkStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewChunkStore: %v", err)
	}

	stale := &models.UploadSession{
		SessionKey:     "old.mp4",
		StoredFilename: "20260101T000000-aaaaaaaa-old.mp4",
		OriginalName:   "old.mp4",
		DeclaredSize:   100,
		TotalChunks:    2,
		CreatedAt:      time.Now().Add(-48 * time.Hour),
		LastActivity:   time.Now().Add(-48 * time.Hour),
	}
	if err := database.CreateUploadSession(db, stale); err != nil {
		t.Fatalf("CreateUploadSession: %v", err)
	}
	if _, err := store.SaveChunk("old.mp4", 1, strings.NewReader("data")); err != nil {
		t.Fatalf("SaveChunk: %v", err)
	}

	fresh := &models.UploadSession{
		SessionKey:     "new.mp4",
		StoredFilename: "20260101T000000-bbbbbbbb-new.mp4",
		OriginalName:   "new.mp4",
		DeclaredSize:   100,
		TotalChunks:    2,
		CreatedAt:      time.Now(),
		LastActivity:   time.Now(),
	}
	if err := database.CreateUploadSession(db, fresh); err != nil {
		t.Fatalf("CreateUploadSession: %v", err)
	}

	r := NewReaper(db, store, 24*time.Hour, time.Hour)
	if removed := r.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d sessions, want 1", removed)
	}

	// Stale session and its chunks are gone; the fresh one survives.
	if got, err := database.GetUploadSession(db, "old.mp4"); err != nil || got != nil {
		t.Errorf("stale session still present (got=%v err=%v)", got, err)
	}
	if _, err := os.Stat(store.SessionDir("old.mp4")); !os.IsNotExist(err) {
		t.Error("stale chunk directory still present")
	}
	if got, err := database.GetUploadSession(db, "new.mp4"); err != nil || got == nil {
		t.Errorf("fresh session missing (got=%v err=%v)", got, err)
	}
}
