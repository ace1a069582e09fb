package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"netmeter/internal/overlay"
)

// One terminal cell at the reference size, in overlay units.
const (
	CellWidth     = 8
	CellHeight    = 16
	referenceSize = 12
)

var DefaultFamilies = []string{
	"Segoe UI", "Arial", "Consolas", "Tahoma", "Calibri", "Times New Roman",
	"Courier New", "DejaVu Sans Mono", "Monospace",
}

// CellFontResolver measures text in terminal cells scaled by the requested point size.
type CellFontResolver struct {
	families map[string]string
}

func NewCellFontResolver(families ...string) *CellFontResolver {
	if len(families) == 0 {
		families = DefaultFamilies
	}
	r := &CellFontResolver{families: make(map[string]string, len(families))}
	for _, f := range families {
		r.families[strings.ToLower(strings.TrimSpace(f))] = f
	}
	return r
}

func (r *CellFontResolver) Resolve(font overlay.Font) (overlay.Face, error) {
	if font.Size <= 0 {
		return nil, fmt.Errorf("%w: size %d", overlay.ErrFontUnresolved, font.Size)
	}
	if _, ok := r.families[strings.ToLower(strings.TrimSpace(font.Family))]; !ok {
		return nil, fmt.Errorf("%w: unknown family %q", overlay.ErrFontUnresolved, font.Family)
	}
	return cellFace{size: font.Size}, nil
}

// Families lists the resolvable family names, sorted.
func (r *CellFontResolver) Families() []string {
	out := make([]string, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type cellFace struct {
	size int
}

func (f cellFace) Measure(text string) overlay.Size {
	if text == "" {
		return overlay.Size{}
	}
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return overlay.Size{
		W: widest * CellWidth * f.size / referenceSize,
		H: len(lines) * CellHeight * f.size / referenceSize,
	}
}
