package overlay

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#00FF00", Color{G: 0xFF}},
		{"0078d7", Color{G: 0x78, B: 0xD7}},
		{"#fa0", Color{R: 0xFF, G: 0xAA}},
		{"orange", Color{R: 0xFF, G: 0xA5}},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "#12345", "#GGHHII", "chartreuse-ish"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("ParseColor(%q) expected ErrInvalidColor, got %v", bad, err)
		}
	}
}

func TestColorHexRoundTripsPresets(t *testing.T) {
	for _, p := range PresetColors {
		got, err := ParseColor(p.Color.Hex())
		if err != nil || got != p.Color {
			t.Fatalf("preset %s did not round trip: %+v %v", p.Name, got, err)
		}
	}
}

func TestNextPresetWraps(t *testing.T) {
	last := PresetColors[len(PresetColors)-1].Color
	if NextPreset(last) != PresetColors[0].Color {
		t.Fatalf("expected wrap to first preset")
	}
	if NextPreset(Color{R: 1, G: 2, B: 3}) != PresetColors[0].Color {
		t.Fatalf("expected unknown colour to start at first preset")
	}
}

func TestValidFontSizeBounds(t *testing.T) {
	for size, want := range map[int]bool{6: false, 7: true, 99: true, 100: false} {
		if ValidFontSize(size) != want {
			t.Fatalf("ValidFontSize(%d) != %v", size, want)
		}
	}
}
