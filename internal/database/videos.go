package database

import (
	"database/sql"
	"fmt"

	"github.com/emran-niftyitsolution/streaming/internal/models"
)

// CreateVideo inserts a published video record. This is the moment the
// artifact becomes visible to listing and streaming.
func CreateVideo(db *sql.DB, video *models.Video) error {
	query := `
		INSERT INTO videos (filename, original_name, size, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		video.Filename,
		video.OriginalName,
		video.Size,
		video.MimeType,
		video.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create video record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get video id: %w", err)
	}
	video.ID = id

	return nil
}

// GetVideoByFilename retrieves a published video by its stored filename.
// Returns (nil, nil) when no such video exists.
func GetVideoByFilename(db *sql.DB, filename string) (*models.Video, error) {
	query := `
		SELECT id, filename, original_name, size, mime_type, created_at
		FROM videos
		WHERE filename = ?
	`

	video := &models.Video{}
	err := db.QueryRow(query, filename).Scan(
		&video.ID,
		&video.Filename,
		&video.OriginalName,
		&video.Size,
		&video.MimeType,
		&video.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// ListVideos returns all published videos, newest first.
func ListVideos(db *sql.DB) ([]*models.Video, error) {
	query := `
		SELECT id, filename, original_name, size, mime_type, created_at
		FROM videos
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		video := &models.Video{}
		if err := rows.Scan(
			&video.ID,
			&video.Filename,
			&video.OriginalName,
			&video.Size,
			&video.MimeType,
			&video.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate video rows: %w", err)
	}

	return videos, nil
}

// DeleteVideo removes a published video record by stored filename.
func DeleteVideo(db *sql.DB, filename string) error {
	if _, err := db.Exec(`DELETE FROM videos WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to delete video record: %w", err)
	}
	return nil
}
