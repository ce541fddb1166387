package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsVideoAllowed checks a filename against the configured allowlist of video
// extensions. Returns (allowed, extension, error).
func IsVideoAllowed(filename string, allowedExtensions []string) (bool, string, error) {
	if filename == "" {
		return false, "", fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false, "", nil
	}

	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true, ext, nil
		}
	}

	return false, ext, nil
}
