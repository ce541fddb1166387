package httprange

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantErr   error
	}{
		{
			name:      "basic range",
			header:    "bytes=0-1023",
			size:      2048,
			wantStart: 0,
			wantEnd:   1023,
		},
		{
			name:      "range from middle",
			header:    "bytes=200-499",
			size:      1000,
			wantStart: 200,
			wantEnd:   499,
		},
		{
			name:      "open-ended range",
			header:    "bytes=1024-",
			size:      2048,
			wantStart: 1024,
			wantEnd:   2047,
		},
		{
			name:      "single byte",
			header:    "bytes=0-0",
			size:      2048,
			wantStart: 0,
			wantEnd:   0,
		},
		{
			name:      "last byte",
			header:    "bytes=2047-2047",
			size:      2048,
			wantStart: 2047,
			wantEnd:   2047,
		},
		{
			name:      "entire file",
			header:    "bytes=0-2047",
			size:      2048,
			wantStart: 0,
			wantEnd:   2047,
		},
		{
			name:      "whitespace tolerated",
			header:    "bytes= 10 - 20 ",
			size:      100,
			wantStart: 10,
			wantEnd:   20,
		},
		{
			name:    "missing bytes prefix",
			header:  "0-1023",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "no hyphen",
			header:  "bytes=1023",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "suffix range rejected",
			header:  "bytes=-500",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "multi-range rejected",
			header:  "bytes=0-100,200-300",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "start not a number",
			header:  "bytes=abc-100",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "end not a number",
			header:  "bytes=0-xyz",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "start greater than end",
			header:  "bytes=2000-1000",
			size:    2048,
			wantErr: ErrMalformed,
		},
		{
			name:    "start beyond file size",
			header:  "bytes=5000-6000",
			size:    2048,
			wantErr: ErrUnsatisfiable,
		},
		{
			name:    "start at file size",
			header:  "bytes=2048-",
			size:    2048,
			wantErr: ErrUnsatisfiable,
		},
		{
			name:    "end beyond file size not clamped",
			header:  "bytes=900-1500",
			size:    1000,
			wantErr: ErrUnsatisfiable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.header, tt.size)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q, %d) error = %v, want %v", tt.header, tt.size, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Parse(%q, %d) unexpected error: %v", tt.header, tt.size, err)
			}
			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("Parse(%q, %d) = [%d, %d], want [%d, %d]",
					tt.header, tt.size, got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseNoHeader(t *testing.T) {
	got, err := Parse("", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil range for absent header, got %+v", got)
	}
}

func TestLength(t *testing.T) {
	r := &ByteRange{Start: 200, End: 499}
	if got := r.Length(); got != 300 {
		t.Errorf("Length() = %d, want 300", got)
	}
}

func TestContentRange(t *testing.T) {
	r := &ByteRange{Start: 200, End: 499}
	if got := r.ContentRange(1000); got != "bytes 200-499/1000" {
		t.Errorf("ContentRange(1000) = %q, want %q", got, "bytes 200-499/1000")
	}
}
