package ui

import (
	termui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"netmeter/internal/overlay"
)

// TermSurface draws the overlay as a borderless paragraph inside the terminal and keeps the
// bottom row as a status line standing in for the tray tooltip. Every method must be called
// from the goroutine that owns the presenter.
type TermSurface struct {
	label   *widgets.Paragraph
	status  *widgets.Paragraph
	last    overlay.State
	drawn   bool
	tooltip string
}

func NewTermSurface() (*TermSurface, error) {
	if err := termui.Init(); err != nil {
		return nil, err
	}
	label := widgets.NewParagraph()
	label.Border = false
	label.WrapText = false

	status := widgets.NewParagraph()
	status.Border = false
	status.TextStyle = termui.NewStyle(termui.ColorWhite)

	return &TermSurface{label: label, status: status}, nil
}

// Events exposes termui's event channel.
func (s *TermSurface) Events() <-chan termui.Event {
	return termui.PollEvents()
}

func (s *TermSurface) Close() {
	termui.Close()
}

func (s *TermSurface) Render(state overlay.State) {
	s.last = state
	s.drawn = true
	s.draw()
}

// WorkArea is the terminal minus the status row, in overlay units.
func (s *TermSurface) WorkArea() overlay.Rect {
	w, h := termui.TerminalDimensions()
	if h > 1 {
		h--
	}
	return overlay.Rect{Size: overlay.Size{W: w * CellWidth, H: h * CellHeight}}
}

func (s *TermSurface) SetTooltip(text string) {
	s.tooltip = text
	s.draw()
}

// Redraw repaints after a terminal resize.
func (s *TermSurface) Redraw() {
	termui.Clear()
	s.draw()
}

func (s *TermSurface) draw() {
	w, h := termui.TerminalDimensions()
	s.status.Text = s.tooltip
	s.status.SetRect(0, h-1, w, h)
	if !s.drawn {
		termui.Render(s.status)
		return
	}

	x1, y1 := UnitsToCells(s.last.Position)
	x2 := x1 + ceilDiv(s.last.Size.W, CellWidth)
	y2 := y1 + ceilDiv(s.last.Size.H, CellHeight)
	s.label.Text = s.last.Text
	s.label.TextStyle = termui.NewStyle(termColor(s.last.TextColor))
	s.label.SetRect(x1, y1, x2, y2)

	termui.Clear()
	termui.Render(s.label, s.status)
}

// termColor maps an RGB colour onto the xterm 6x6x6 cube.
func termColor(c overlay.Color) termui.Color {
	scale := func(v uint8) int { return (int(v)*5 + 127) / 255 }
	return termui.Color(16 + 36*scale(c.R) + 6*scale(c.G) + scale(c.B))
}
