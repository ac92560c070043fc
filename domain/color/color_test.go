package color

import (
	"image/color"
	"testing"
)

func TestToDisplay(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		want    string
		wantErr bool
	}{
		{name: "with hash", stored: "#4D1A2B3C", want: "#1A2B3C4D"},
		{name: "without hash", stored: "4D1A2B3C", want: "1A2B3C4D"},
		{name: "lowercase", stored: "#aa33ffff", want: "#33ffffaa"},
		{name: "too short", stored: "#1A2B3C", wantErr: true},
		{name: "too long", stored: "#1A2B3C4D5E", wantErr: true},
		{name: "non hex", stored: "#1A2B3CZZ", wantErr: true},
		{name: "empty", stored: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDisplay(tt.stored)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToDisplay(%q) expected error, got %q", tt.stored, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToDisplay(%q) unexpected error: %v", tt.stored, err)
			}
			if got != tt.want {
				t.Errorf("ToDisplay(%q) = %q, want %q", tt.stored, got, tt.want)
			}
		})
	}
}

func TestToStorage(t *testing.T) {
	got, err := ToStorage("#1A2B3C4D")
	if err != nil {
		t.Fatalf("ToStorage: %v", err)
	}
	if got != "#4D1A2B3C" {
		t.Errorf("ToStorage(#1A2B3C4D) = %q, want #4D1A2B3C", got)
	}
}

// Storing a display value and converting back must yield the original
// string exactly.
func TestRoundTrip(t *testing.T) {
	values := []string{"#1A2B3C4D", "1A2B3C4D", "#aa33ffff", "#00000000", "#ffffffff"}
	for _, display := range values {
		stored, err := ToStorage(display)
		if err != nil {
			t.Fatalf("ToStorage(%q): %v", display, err)
		}
		back, err := ToDisplay(stored)
		if err != nil {
			t.Fatalf("ToDisplay(%q): %v", stored, err)
		}
		if back != display {
			t.Errorf("round trip %q -> %q -> %q", display, stored, back)
		}
	}

	for _, stored := range values {
		display, err := ToDisplay(stored)
		if err != nil {
			t.Fatalf("ToDisplay(%q): %v", stored, err)
		}
		back, err := ToStorage(display)
		if err != nil {
			t.Fatalf("ToStorage(%q): %v", display, err)
		}
		if back != stored {
			t.Errorf("round trip %q -> %q -> %q", stored, display, back)
		}
	}
}

func TestParseStored(t *testing.T) {
	got, err := ParseStored("#4D1A2B3C")
	if err != nil {
		t.Fatalf("ParseStored: %v", err)
	}
	want := color.NRGBA{A: 0x4D, R: 0x1A, G: 0x2B, B: 0x3C}
	if got != want {
		t.Errorf("ParseStored(#4D1A2B3C) = %+v, want %+v", got, want)
	}

	if _, err := ParseStored("#nothex!"); err == nil {
		t.Error("ParseStored accepted malformed value")
	}
}
