package uploads

import (
	"strings"
	"testing"
)

func TestSessionKeyStable(t *testing.T) {
	a := SessionKey("My Movie (2024).mp4")
	b := SessionKey("My Movie (2024).mp4")
	if a != b {
		t.Errorf("SessionKey not stable: %q vs %q", a, b)
	}
	if strings.ContainsAny(a, "/\\ ()") {
		t.Errorf("SessionKey %q contains unsafe characters", a)
	}
}

func TestSessionKeyStripsPath(t *testing.T) {
	got := SessionKey("../../etc/passwd")
	if strings.Contains(got, "..") || strings.Contains(got, "/") {
		t.Errorf("SessionKey %q retains path components", got)
	}
}

func TestNewStoredFilename(t *testing.T) {
	name := NewStoredFilename("movie.mp4")
	if !strings.HasSuffix(name, "-movie.mp4") {
		t.Errorf("stored name %q does not end with sanitized client name", name)
	}
	// Timestamp + token prefix: 15 chars timestamp, dash, 8 char token, dash.
	if len(name) != 15+1+8+1+len("movie.mp4") {
		t.Errorf("stored name %q has unexpected length", name)
	}

	other := NewStoredFilename("movie.mp4")
	if name == other {
		t.Error("two stored names for the same client name collided")
	}
}
