// Package utils provides filename and filesystem helpers.
package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename maps a client-supplied filename onto the safe storage
// charset. Path components are stripped and every rune outside
// [A-Za-z0-9._-] is replaced with an underscore, which prevents path
// traversal, header injection, and control characters in logs.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return "upload"
	}

	// Only the base name matters; directories are never client-controlled.
	filename = filepath.Base(filename)

	var b strings.Builder
	b.Grow(len(filename))

	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	result := strings.Trim(b.String(), ".")
	if result == "" {
		return "upload"
	}

	// Keep within common filesystem name limits, preserving the extension.
	if len(result) > 255 {
		ext := filepath.Ext(result)
		if len(ext) > 0 && len(ext) < 20 {
			base := result[:len(result)-len(ext)]
			if len(base) > 255-len(ext) {
				base = base[:255-len(ext)]
			}
			result = base + ext
		} else {
			result = result[:255]
		}
	}

	return result
}
