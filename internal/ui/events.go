package ui

import (
	termui "github.com/gizak/termui/v3"

	"netmeter/internal/overlay"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionQuit
	ActionPointer
	ActionResize
	ActionToggleFixed
	ActionToggleAuto
	ActionNextAdapter
	ActionFontUp
	ActionFontDown
	ActionNextColor
)

// Action is a toolkit-free description of one terminal event. Pointer positions are global,
// in overlay units.
type Action struct {
	Kind    ActionKind
	Pointer overlay.EventKind
	At      overlay.Point
}

// Translate maps a termui event onto an Action.
func Translate(e termui.Event) Action {
	switch e.Type {
	case termui.KeyboardEvent:
		return translateKey(e.ID)
	case termui.MouseEvent:
		m, ok := e.Payload.(termui.Mouse)
		if !ok {
			return Action{}
		}
		at := CellToUnits(m.X, m.Y)
		switch e.ID {
		case "<MouseLeft>":
			if m.Drag {
				return Action{Kind: ActionPointer, Pointer: overlay.EventMove, At: at}
			}
			return Action{Kind: ActionPointer, Pointer: overlay.EventPress, At: at}
		case "<MouseRelease>":
			return Action{Kind: ActionPointer, Pointer: overlay.EventRelease, At: at}
		}
	case termui.ResizeEvent:
		return Action{Kind: ActionResize}
	}
	return Action{}
}

func translateKey(id string) Action {
	switch id {
	case "q", "<C-c>":
		return Action{Kind: ActionQuit}
	case "f":
		return Action{Kind: ActionToggleFixed}
	case "a":
		return Action{Kind: ActionToggleAuto}
	case "<Tab>":
		return Action{Kind: ActionNextAdapter}
	case "+", "=":
		return Action{Kind: ActionFontUp}
	case "-":
		return Action{Kind: ActionFontDown}
	case "c":
		return Action{Kind: ActionNextColor}
	}
	return Action{}
}

func CellToUnits(x, y int) overlay.Point {
	return overlay.Point{X: x * CellWidth, Y: y * CellHeight}
}

// UnitsToCells rounds a unit position down to its cell.
func UnitsToCells(p overlay.Point) (int, int) {
	return floorDiv(p.X, CellWidth), floorDiv(p.Y, CellHeight)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
