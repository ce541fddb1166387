package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/models"
)

// CreateUploadSession inserts a new upload session record.
func CreateUploadSession(db *sql.DB, session *models.UploadSession) error {
	query := `
		INSERT INTO upload_sessions (
			session_key, stored_filename, original_name, declared_size,
			total_chunks, chunks_received, received_bytes,
			created_at, last_activity, completed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		session.SessionKey,
		session.StoredFilename,
		session.OriginalName,
		session.DeclaredSize,
		session.TotalChunks,
		session.ChunksReceived,
		session.ReceivedBytes,
		session.CreatedAt,
		session.LastActivity,
		session.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload session: %w", err)
	}

	return nil
}

// GetUploadSession retrieves an upload session by its key.
// Returns (nil, nil) when no such session exists.
func GetUploadSession(db *sql.DB, sessionKey string) (*models.UploadSession, error) {
	query := `
		SELECT session_key, stored_filename, original_name, declared_size,
		       total_chunks, chunks_received, received_bytes,
		       created_at, last_activity, completed
		FROM upload_sessions
		WHERE session_key = ?
	`

	session := &models.UploadSession{}
	err := db.QueryRow(query, sessionKey).Scan(
		&session.SessionKey,
		&session.StoredFilename,
		&session.OriginalName,
		&session.DeclaredSize,
		&session.TotalChunks,
		&session.ChunksReceived,
		&session.ReceivedBytes,
		&session.CreatedAt,
		&session.LastActivity,
		&session.Completed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}

	return session, nil
}

// IncrementChunksReceived records a newly persisted chunk.
func IncrementChunksReceived(db *sql.DB, sessionKey string, chunkBytes int64) error {
	query := `
		UPDATE upload_sessions
		SET chunks_received = chunks_received + 1,
		    received_bytes = received_bytes + ?,
		    last_activity = ?
		WHERE session_key = ?
	`

	if _, err := db.Exec(query, chunkBytes, time.Now(), sessionKey); err != nil {
		return fmt.Errorf("failed to increment chunks received: %w", err)
	}
	return nil
}

// TouchUploadSession updates the last_activity timestamp.
func TouchUploadSession(db *sql.DB, sessionKey string) error {
	query := `UPDATE upload_sessions SET last_activity = ? WHERE session_key = ?`

	if _, err := db.Exec(query, time.Now(), sessionKey); err != nil {
		return fmt.Errorf("failed to touch upload session: %w", err)
	}
	return nil
}

// MarkSessionCompleted marks an upload session as finalized.
func MarkSessionCompleted(db *sql.DB, sessionKey string) error {
	query := `UPDATE upload_sessions SET completed = 1, last_activity = ? WHERE session_key = ?`

	if _, err := db.Exec(query, time.Now(), sessionKey); err != nil {
		return fmt.Errorf("failed to mark session completed: %w", err)
	}
	return nil
}

// DeleteUploadSession removes an upload session record.
func DeleteUploadSession(db *sql.DB, sessionKey string) error {
	if _, err := db.Exec(`DELETE FROM upload_sessions WHERE session_key = ?`, sessionKey); err != nil {
		return fmt.Errorf("failed to delete upload session: %w", err)
	}
	return nil
}

// GetAbandonedSessions returns sessions whose last activity is older than
// the cutoff. Completed sessions are included so their rows can be reaped
// once the artifact is long published.
func GetAbandonedSessions(db *sql.DB, cutoff time.Time) ([]*models.UploadSession, error) {
	query := `
		SELECT session_key, stored_filename, original_name, declared_size,
		       total_chunks, chunks_received, received_bytes,
		       created_at, last_activity, completed
		FROM upload_sessions
		WHERE last_activity < ?
	`

	rows, err := db.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query abandoned sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.UploadSession
	for rows.Next() {
		session := &models.UploadSession{}
		if err := rows.Scan(
			&session.SessionKey,
			&session.StoredFilename,
			&session.OriginalName,
			&session.DeclaredSize,
			&session.TotalChunks,
			&session.ChunksReceived,
			&session.ReceivedBytes,
			&session.CreatedAt,
			&session.LastActivity,
			&session.Completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return sessions, nil
}
