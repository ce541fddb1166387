// Package testutil provides shared fixtures for handler and integration tests.
package testutil

import (
	"bytes"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/emran-niftyitsolution/streaming/internal/config"
	"github.com/emran-niftyitsolution/streaming/internal/database"
)

// SetupTestDB creates an in-memory SQLite database for testing
// The database is automatically closed when the test completes
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// IMPORTANT: Force single connection for in-memory databases
	// Each connection in the pool gets its own separate :memory: database
	db.SetMaxOpenConns(1)

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupTestConfig creates a test configuration backed by a temporary video
// directory that is cleaned up after the test.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cfg.Port = "8080"
	cfg.DBPath = ":memory:"
	cfg.VideoDir = t.TempDir()
	cfg.MaxUploadSize = 100 * 1024 * 1024 // 100MB
	cfg.MaxChunkSize = 10 * 1024 * 1024   // 10MB
	cfg.SessionExpiryHours = 24
	cfg.CleanupIntervalMinutes = 60
	cfg.PublicURL = ""

	return cfg
}

// CreateMultipartChunk builds a multipart body carrying one upload chunk
// plus its metadata fields. Returns the body and content type.
func CreateMultipartChunk(t *testing.T, chunkContent []byte, formValues map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if chunkContent != nil {
		part, err := writer.CreateFormFile("chunk", "blob")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(chunkContent)); err != nil {
			t.Fatalf("failed to write chunk content: %v", err)
		}
	}

	for key, val := range formValues {
		if err := writer.WriteField(key, val); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

// AssertStatusCode checks that the HTTP response status code matches expected
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int) {
	t.Helper()

	if rr.Code != wantStatus {
		t.Errorf("status code = %d, want %d\nBody: %s", rr.Code, wantStatus, rr.Body.String())
	}
}
