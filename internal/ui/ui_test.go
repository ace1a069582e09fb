package ui

import (
	"errors"
	"testing"

	termui "github.com/gizak/termui/v3"

	"netmeter/internal/overlay"
)

func TestCellFontResolverMeasuresInUnits(t *testing.T) {
	r := NewCellFontResolver()
	face, err := r.Resolve(overlay.Font{Family: "consolas", Size: 12})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	got := face.Measure("12.34 MB/s\nab")
	if got != (overlay.Size{W: 10 * CellWidth, H: 2 * CellHeight}) {
		t.Fatalf("unexpected size at reference size: %+v", got)
	}

	big, err := r.Resolve(overlay.Font{Family: "Arial", Size: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := big.Measure("ab"); got != (overlay.Size{W: 2 * CellWidth * 2, H: CellHeight * 2}) {
		t.Fatalf("unexpected size at double size: %+v", got)
	}
	if got := big.Measure(""); got != (overlay.Size{}) {
		t.Fatalf("expected empty text to measure zero, got %+v", got)
	}
}

func TestCellFontResolverRejectsUnknownFonts(t *testing.T) {
	r := NewCellFontResolver("Arial")
	if _, err := r.Resolve(overlay.Font{Family: "Segoe UI", Size: 12}); !errors.Is(err, overlay.ErrFontUnresolved) {
		t.Fatalf("expected ErrFontUnresolved for unknown family, got %v", err)
	}
	if _, err := r.Resolve(overlay.Font{Family: "Arial", Size: 0}); !errors.Is(err, overlay.ErrFontUnresolved) {
		t.Fatalf("expected ErrFontUnresolved for zero size, got %v", err)
	}
	if len(r.Families()) != 1 {
		t.Fatalf("expected one family, got %v", r.Families())
	}
}

func TestTranslateMouseEvents(t *testing.T) {
	press := Translate(termui.Event{Type: termui.MouseEvent, ID: "<MouseLeft>", Payload: termui.Mouse{X: 3, Y: 2}})
	if press.Kind != ActionPointer || press.Pointer != overlay.EventPress || press.At != (overlay.Point{X: 24, Y: 32}) {
		t.Fatalf("unexpected press translation: %+v", press)
	}

	move := Translate(termui.Event{Type: termui.MouseEvent, ID: "<MouseLeft>", Payload: termui.Mouse{X: 4, Y: 2, Drag: true}})
	if move.Pointer != overlay.EventMove {
		t.Fatalf("expected drag to translate to move, got %+v", move)
	}

	release := Translate(termui.Event{Type: termui.MouseEvent, ID: "<MouseRelease>", Payload: termui.Mouse{X: 4, Y: 2}})
	if release.Pointer != overlay.EventRelease {
		t.Fatalf("expected release, got %+v", release)
	}

	if got := Translate(termui.Event{Type: termui.MouseEvent, ID: "<MouseWheelUp>", Payload: termui.Mouse{}}); got.Kind != ActionNone {
		t.Fatalf("expected wheel to be ignored, got %+v", got)
	}
}

func TestTranslateKeysAndResize(t *testing.T) {
	tests := map[string]ActionKind{
		"q":       ActionQuit,
		"<C-c>":   ActionQuit,
		"f":       ActionToggleFixed,
		"a":       ActionToggleAuto,
		"<Tab>":   ActionNextAdapter,
		"+":       ActionFontUp,
		"-":       ActionFontDown,
		"c":       ActionNextColor,
		"<Enter>": ActionNone,
	}
	for id, want := range tests {
		if got := Translate(termui.Event{Type: termui.KeyboardEvent, ID: id}); got.Kind != want {
			t.Fatalf("key %q translated to %v, want %v", id, got.Kind, want)
		}
	}
	if got := Translate(termui.Event{Type: termui.ResizeEvent, Payload: termui.Resize{Width: 80, Height: 24}}); got.Kind != ActionResize {
		t.Fatalf("expected resize action, got %+v", got)
	}
}

func TestUnitsToCellsFloorsNegativePositions(t *testing.T) {
	x, y := UnitsToCells(overlay.Point{X: -1, Y: 17})
	if x != -1 || y != 1 {
		t.Fatalf("unexpected cells (%d,%d)", x, y)
	}
	if ceilDiv(17, CellWidth) != 3 || ceilDiv(0, CellWidth) != 0 {
		t.Fatalf("unexpected ceilDiv results")
	}
}

func TestTermColorMapsToCube(t *testing.T) {
	if got := termColor(overlay.Color{G: 0xFF}); got != termui.Color(16+6*5) {
		t.Fatalf("unexpected lime mapping %d", got)
	}
	if got := termColor(overlay.Color{R: 0xFF, G: 0xFF, B: 0xFF}); got != termui.Color(231) {
		t.Fatalf("unexpected white mapping %d", got)
	}
}

func TestCellFontResolverFamiliesSorted(t *testing.T) {
	got := NewCellFontResolver("Tahoma", "Arial", "Consolas").Families()
	if len(got) != 3 || got[0] != "Arial" || got[1] != "Consolas" || got[2] != "Tahoma" {
		t.Fatalf("families = %v, want sorted", got)
	}
}
