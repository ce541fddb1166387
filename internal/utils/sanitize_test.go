package utils

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean name", "video.mp4", "video.mp4"},
		{"spaces replaced", "my vacation video.mp4", "my_vacation_video.mp4"},
		{"path traversal stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", "..\\..\\video.mp4", "_.._video.mp4"},
		{"quotes replaced", `vid"eo.mp4`, "vid_eo.mp4"},
		{"unicode replaced", "vidéo.mp4", "vid_o.mp4"},
		{"newline replaced", "video\n.mp4", "video_.mp4"},
		{"allowed punctuation kept", "my-video_v2.final.mp4", "my-video_v2.final.mp4"},
		{"empty input", "", "upload"},
		{"only dots", "...", "upload"},
		{"leading dots trimmed", "..video.mp4", "video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameLongName(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	long += ".mp4"

	got := SanitizeFilename(long)
	if len(got) > 255 {
		t.Errorf("sanitized name too long: %d", len(got))
	}
	if got[len(got)-4:] != ".mp4" {
		t.Errorf("extension not preserved: %q", got[len(got)-4:])
	}
}
