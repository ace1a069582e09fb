package ui

import (
	"log/slog"

	"netmeter/internal/overlay"
)

// HeadlessSurface logs overlay updates instead of drawing them.
type HeadlessSurface struct {
	logger  *slog.Logger
	work    overlay.Rect
	tooltip string
}

func NewHeadlessSurface(logger *slog.Logger) *HeadlessSurface {
	return &HeadlessSurface{
		logger: logger,
		work:   overlay.Rect{Size: overlay.Size{W: 1920, H: 1040}},
	}
}

func (s *HeadlessSurface) Render(state overlay.State) {
	s.logger.Debug("overlay render", "x", state.Position.X, "y", state.Position.Y, "w", state.Size.W, "h", state.Size.H, "allow_drag", state.AllowDrag)
}

func (s *HeadlessSurface) WorkArea() overlay.Rect {
	return s.work
}

func (s *HeadlessSurface) SetTooltip(text string) {
	if text == s.tooltip {
		return
	}
	s.tooltip = text
	s.logger.Info("throughput", "tooltip", text)
}
