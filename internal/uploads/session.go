// Package uploads implements chunked upload persistence and reassembly.
package uploads

import (
	"time"

	"github.com/google/uuid"

	"github.com/emran-niftyitsolution/streaming/internal/utils"
)

// SessionKey derives the stable session identifier for a client-declared
// filename. All chunks of one logical upload address the same key.
func SessionKey(clientFilename string) string {
	return utils.SanitizeFilename(clientFilename)
}

// NewStoredFilename generates a collision-resistant name for the final
// artifact: a UTC timestamp plus a short random token prefixed to the
// sanitized client name. The token closes the (unlikely) gap of two sessions
// for the same name starting within the same second.
func NewStoredFilename(clientFilename string) string {
	ts := time.Now().UTC().Format("20060102T150405")
	token := uuid.New().String()[:8]
	return ts + "-" + token + "-" + utils.SanitizeFilename(clientFilename)
}
