package models

import "time"

// UploadSession represents a chunked upload in progress. Sessions are
// created implicitly by the first chunk that arrives for a given client
// filename and are keyed by the sanitized form of that name.
type UploadSession struct {
	SessionKey     string    `json:"session_key"`
	StoredFilename string    `json:"stored_filename"` // final artifact name, chosen at session creation
	OriginalName   string    `json:"original_name"`
	DeclaredSize   int64     `json:"declared_size"`
	TotalChunks    int       `json:"total_chunks"`
	ChunksReceived int       `json:"chunks_received"`
	ReceivedBytes  int64     `json:"received_bytes"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
	Completed      bool      `json:"completed"`
}

// UploadChunkResponse is returned for each uploaded chunk.
type UploadChunkResponse struct {
	Success        bool `json:"success"`
	ChunkNumber    int  `json:"chunk_number"`
	ChunksReceived int  `json:"chunks_received"`
	TotalChunks    int  `json:"total_chunks"`
	Complete       bool `json:"complete"`
}

// FinalizeRequest is the JSON body of a finalize call.
type FinalizeRequest struct {
	Filename    string `json:"filename"`
	TotalChunks int    `json:"totalChunks"`
	FileSize    int64  `json:"fileSize"`
}

// FinalizeResponse reports the published artifact.
type FinalizeResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// FinalizeErrorResponse identifies which finalize validation failed.
type FinalizeErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Code          string `json:"code"`
	MissingChunks []int  `json:"missing_chunks,omitempty"`
	ExpectedSize  int64  `json:"expected_size,omitempty"`
	ActualSize    int64  `json:"actual_size,omitempty"`
}

// UploadStatusResponse reports session progress.
type UploadStatusResponse struct {
	SessionKey     string `json:"session_key"`
	Filename       string `json:"filename"`
	ChunksReceived int    `json:"chunks_received"`
	TotalChunks    int    `json:"total_chunks"`
	MissingChunks  []int  `json:"missing_chunks,omitempty"`
	Complete       bool   `json:"complete"`
}
