package models

import "time"

// Video represents a published video artifact on disk.
// A row only exists once finalization has completed successfully, so
// everything in this table is safe to list and stream.
type Video struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`      // unique stored name under the video directory
	OriginalName string    `json:"original_name"` // client-declared name, sanitized
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrorResponse is the JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RangeErrorResponse is the JSON body for 416 responses. It carries the
// requested bounds and the actual file size so clients can diagnose the
// failure without server log access.
type RangeErrorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	RequestedRange string `json:"requested_range"`
	FileSize       int64  `json:"file_size"`
}
