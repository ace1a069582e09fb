package overlay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinFontSize = 7
	MaxFontSize = 99
)

var (
	ErrFontUnresolved = errors.New("font could not be resolved")
	ErrInvalidColor   = errors.New("invalid color")
)

type Font struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
}

// ValidFontSize is the bound callers enforce before asking for a new size.
func ValidFontSize(size int) bool {
	return size >= MinFontSize && size <= MaxFontSize
}

// Face measures text for one resolved font.
type Face interface {
	Measure(text string) Size
}

// FontResolver turns a family/size pair into a Face, or fails with ErrFontUnresolved.
type FontResolver interface {
	Resolve(font Font) (Face, error)
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

type NamedColor struct {
	Name  string
	Color Color
}

// PresetColors mirrors the text colour menu.
var PresetColors = []NamedColor{
	{Name: "Lime", Color: Color{R: 0x00, G: 0xFF, B: 0x00}},
	{Name: "White", Color: Color{R: 0xFF, G: 0xFF, B: 0xFF}},
	{Name: "Red", Color: Color{R: 0xFF, G: 0x00, B: 0x00}},
	{Name: "Yellow", Color: Color{R: 0xFF, G: 0xFF, B: 0x00}},
	{Name: "Cyan", Color: Color{R: 0x00, G: 0xFF, B: 0xFF}},
	{Name: "Magenta", Color: Color{R: 0xFF, G: 0x00, B: 0xFF}},
	{Name: "Orange", Color: Color{R: 0xFF, G: 0xA5, B: 0x00}},
	{Name: "Blue", Color: Color{R: 0x00, G: 0x78, B: 0xD7}},
}

// ParseColor accepts "#RRGGBB", "#RGB" or a preset name (case-insensitive).
func ParseColor(raw string) (Color, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	for _, p := range PresetColors {
		if strings.EqualFold(p.Name, raw) {
			return p.Color, nil
		}
	}
	hex := strings.TrimPrefix(raw, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// NextPreset returns the preset after c, wrapping; unknown colours start at the first preset.
func NextPreset(c Color) Color {
	for i, p := range PresetColors {
		if p.Color == c {
			return PresetColors[(i+1)%len(PresetColors)].Color
		}
	}
	return PresetColors[0].Color
}
