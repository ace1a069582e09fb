package overlay

type EventKind int

const (
	EventPress EventKind = iota + 1
	EventMove
	EventRelease
)

func (k EventKind) String() string {
	switch k {
	case EventPress:
		return "press"
	case EventMove:
		return "move"
	case EventRelease:
		return "release"
	default:
		return "unknown"
	}
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// InputEvent is a pointer event on the surface. Pos is local to the surface's top-left.
type InputEvent struct {
	Kind   EventKind
	Pos    Point
	Button Button
}

type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// HitResult answers a window-manager hit-test query.
type HitResult int

const (
	HitNowhere HitResult = iota
	HitClient
	HitCaption
)

func (h HitResult) String() string {
	switch h {
	case HitClient:
		return "client"
	case HitCaption:
		return "caption"
	default:
		return "nowhere"
	}
}
