package overlay

import (
	"log/slog"
)

const (
	PadWidth     = 28
	PadHeight    = 18
	ScreenMargin = 10
)

var DefaultFont = Font{Family: "Segoe UI", Size: 12}

// Surface is the toolkit side of the overlay: it draws a state and reports the usable work area.
type Surface interface {
	Render(State)
	WorkArea() Rect
}

// State is a snapshot of the overlay. DragAnchor is non-nil only while dragging.
type State struct {
	Position   Point  `json:"position"`
	Size       Size   `json:"size"`
	AllowDrag  bool   `json:"allow_drag"`
	Dragging   bool   `json:"dragging"`
	DragAnchor *Point `json:"drag_anchor,omitempty"`
	Text       string `json:"text"`
	Font       Font   `json:"font"`
	TextColor  Color  `json:"text_color"`
}

func (s State) Bounds() Rect {
	return Rect{Min: s.Position, Size: s.Size}
}

type Config struct {
	// Position is the persisted top-left; nil means place at the work area's bottom-right
	// after the first reading sizes the surface.
	Position  *Point
	AllowDrag bool
	Font      Font
	TextColor Color
}

// Presenter owns the overlay state. It is not safe for concurrent use.
type Presenter struct {
	surface  Surface
	resolver FontResolver
	face     Face
	state    State
	placed   bool
	logger   *slog.Logger
}

func New(surface Surface, resolver FontResolver, cfg Config, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Presenter{
		surface:  surface,
		resolver: resolver,
		logger:   logger,
		state: State{
			AllowDrag: cfg.AllowDrag,
			TextColor: cfg.TextColor,
		},
	}
	if cfg.Position != nil {
		p.state.Position = *cfg.Position
		p.placed = true
	}
	if !p.applyFont(cfg.Font) && !p.applyFont(DefaultFont) {
		p.logger.Warn("no usable overlay font", "family", cfg.Font.Family, "size", cfg.Font.Size)
	}
	return p
}

// State returns a copy of the current overlay state.
func (p *Presenter) State() State {
	s := p.state
	if s.DragAnchor != nil {
		a := *s.DragAnchor
		s.DragAnchor = &a
	}
	return s
}

func (p *Presenter) DragState() DragState {
	if p.state.Dragging {
		return Dragging
	}
	return Idle
}

func (p *Presenter) Placed() bool {
	return p.placed
}

// SetReading replaces the label and resizes the surface around it. The top-left stays put.
func (p *Presenter) SetReading(text string) {
	p.state.Text = text
	p.resize()
	if !p.placed && p.surface != nil {
		p.PlaceDefault(p.surface.WorkArea())
		return
	}
	p.render()
}

// PlaceDefault anchors the surface to the bottom-right of workArea minus the screen margin.
func (p *Presenter) PlaceDefault(workArea Rect) {
	max := workArea.Max()
	p.state.Position = Point{
		X: max.X - p.state.Size.W - ScreenMargin,
		Y: max.Y - p.state.Size.H - ScreenMargin,
	}
	p.placed = true
	p.render()
}

// SetFont applies family and size together. An unresolvable font is ignored and the
// previous one kept; the return value reports whether the font changed.
func (p *Presenter) SetFont(family string, size int) bool {
	if !p.applyFont(Font{Family: family, Size: size}) {
		p.logger.Debug("font not applied", "family", family, "size", size)
		return false
	}
	p.resize()
	p.render()
	return true
}

func (p *Presenter) SetFontFamily(family string) bool {
	return p.SetFont(family, p.state.Font.Size)
}

func (p *Presenter) SetFontSize(size int) bool {
	return p.SetFont(p.state.Font.Family, size)
}

func (p *Presenter) SetTextColor(c Color) {
	p.state.TextColor = c
	p.render()
}

// SetAllowDrag toggles fixed mode. Disabling drag ends any drag in progress.
func (p *Presenter) SetAllowDrag(allow bool) {
	p.state.AllowDrag = allow
	if !allow {
		p.endDrag()
	}
	p.render()
}

// HandleInput drives the drag state machine.
func (p *Presenter) HandleInput(ev InputEvent) {
	if ev.Button != ButtonPrimary {
		return
	}
	switch ev.Kind {
	case EventPress:
		if !p.state.AllowDrag {
			return
		}
		anchor := ev.Pos
		p.state.Dragging = true
		p.state.DragAnchor = &anchor
	case EventMove:
		if !p.state.AllowDrag || !p.state.Dragging || p.state.DragAnchor == nil {
			return
		}
		p.state.Position = p.state.Position.Add(ev.Pos.Sub(*p.state.DragAnchor))
		p.placed = true
		p.render()
	case EventRelease:
		p.endDrag()
	}
}

// HitTest reports how the window manager should treat a pointer at global point pt.
func (p *Presenter) HitTest(pt Point) HitResult {
	if !p.state.Bounds().Contains(pt) {
		return HitNowhere
	}
	if p.state.AllowDrag {
		return HitCaption
	}
	return HitClient
}

// MoveTo is the OS-level move gesture granted by HitCaption. It is refused in fixed mode.
func (p *Presenter) MoveTo(pos Point) bool {
	if !p.state.AllowDrag {
		return false
	}
	p.state.Position = pos
	p.placed = true
	p.render()
	return true
}

func (p *Presenter) endDrag() {
	p.state.Dragging = false
	p.state.DragAnchor = nil
}

func (p *Presenter) applyFont(f Font) bool {
	if p.resolver == nil {
		return false
	}
	face, err := p.resolver.Resolve(f)
	if err != nil || face == nil {
		return false
	}
	p.face = face
	p.state.Font = f
	return true
}

func (p *Presenter) resize() {
	var text Size
	if p.face != nil {
		text = p.face.Measure(p.state.Text)
	}
	p.state.Size = Size{W: text.W + PadWidth, H: text.H + PadHeight}
}

func (p *Presenter) render() {
	if p.surface != nil {
		p.surface.Render(p.State())
	}
}
