package utils

import "testing"

func TestIsVideoAllowed(t *testing.T) {
	allowed := []string{".mp4", ".webm", ".mov", ".mkv"}

	tests := []struct {
		name     string
		filename string
		want     bool
		wantExt  string
	}{
		{"mp4 allowed", "video.mp4", true, ".mp4"},
		{"uppercase extension", "video.MP4", true, ".mp4"},
		{"webm allowed", "clip.webm", true, ".webm"},
		{"executable rejected", "malware.exe", false, ".exe"},
		{"double extension uses last", "video.mp4.exe", false, ".exe"},
		{"no extension rejected", "video", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ext, err := IsVideoAllowed(tt.filename, allowed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsVideoAllowed(%q) = %v, want %v", tt.filename, got, tt.want)
			}
			if ext != tt.wantExt {
				t.Errorf("extension = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestIsVideoAllowedEmptyFilename(t *testing.T) {
	if _, _, err := IsVideoAllowed("", []string{".mp4"}); err == nil {
		t.Error("expected error for empty filename")
	}
}
