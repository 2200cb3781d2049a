package dateutil

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFormat - EDTF output keeps the available precision
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  string
	}{
		{name: "day precision", year: 2008, month: 8, day: 14, want: "2008-08-14"},
		{name: "month precision", year: 2008, month: 8, want: "2008-08"},
		{name: "year precision", year: 2008, want: "2008"},
		{name: "day without month is dropped", year: 2008, day: 14, want: "2008"},
		{name: "zero year yields empty string", month: 8, day: 14, want: ""},
		{name: "early year is zero padded", year: 812, month: 1, day: 1, want: "0812-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Format(tt.year, tt.month, tt.day)
			if got != tt.want {
				t.Errorf("Format(%d, %d, %d) = %q, want %q", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParse - EDTF input is split into parts
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		input               string
		wantY, wantM, wantD int
		wantErr             error
	}{
		{name: "full date", input: "2008-08-14", wantY: 2008, wantM: 8, wantD: 14},
		{name: "year and month", input: "2008-08", wantY: 2008, wantM: 8},
		{name: "year only", input: "2008", wantY: 2008},
		{name: "surrounding spaces", input: " 2008 ", wantY: 2008},
		{name: "empty", input: "", wantErr: ErrInvalidDate},
		{name: "unpadded month", input: "2008-8", wantErr: ErrInvalidDate},
		{name: "month out of range", input: "2008-13", wantErr: ErrInvalidDate},
		{name: "day out of range", input: "2008-01-32", wantErr: ErrInvalidDate},
		{name: "too many parts", input: "2008-01-01-01", wantErr: ErrInvalidDate},
		{name: "letters", input: "20ab", wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			y, m, d, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if y != tt.wantY || m != tt.wantM || d != tt.wantD {
				t.Errorf("Parse(%q) = %d, %d, %d, want %d, %d, %d", tt.input, y, m, d, tt.wantY, tt.wantM, tt.wantD)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormatParse_RoundTrip - Formatted values parse back to the same parts
// ---------------------------------------------------------------------------

func TestFormatParse_RoundTrip(t *testing.T) {
	t.Parallel()

	s := Format(1999, 12, 31)
	y, m, d, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", s, err)
	}
	if y != 1999 || m != 12 || d != 31 {
		t.Errorf("round trip = %d-%d-%d, want 1999-12-31", y, m, d)
	}
}
