package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"netmeter/internal/adapter"
	"netmeter/internal/format"
	"netmeter/internal/model"
	"netmeter/internal/overlay"
	"netmeter/internal/sampler"
	"netmeter/internal/stream"
)

var (
	ErrUnknownAdapter  = errors.New("adapter is not up")
	ErrInvalidFontSize = errors.New("font size out of range")
	ErrMeterStopped    = errors.New("meter stopped")
	ErrPositionFixed   = errors.New("overlay position is fixed")
)

type SettingsStore interface {
	Load(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

// Tooltipper is implemented by surfaces that can show the secondary tooltip text.
type Tooltipper interface {
	SetTooltip(text string)
}

type Redrawer interface {
	Redraw()
}

// Snapshot is the latest state published by the meter goroutine.
type Snapshot struct {
	Adapter    string                  `json:"adapter"`
	AutoSelect bool                    `json:"auto_select"`
	Reading    model.ThroughputReading `json:"reading"`
	Download   string                  `json:"download"`
	Upload     string                  `json:"upload"`
	Tooltip    string                  `json:"tooltip"`
	SampledAt  time.Time               `json:"sampled_at"`
	Overlay    overlay.State           `json:"overlay"`
}

type MeterConfig struct {
	HostID         string
	PollInterval   time.Duration
	RescanInterval time.Duration
	SinkBuffer     int
	// OnSend observes every sink result; nil error means the frame was delivered.
	OnSend func(error)
}

type command struct {
	fn   func(context.Context) error
	done chan error
}

// Meter is the driver: it owns the sampler and the presenter and mutates them only from the
// goroutine running Run. Other goroutines talk to it through commands and Snapshot.
type Meter struct {
	logger    *slog.Logger
	cfg       MeterConfig
	source    adapter.Source
	presenter *overlay.Presenter
	surface   overlay.Surface
	sink      stream.Sink
	store     SettingsStore
	now       func() time.Time
	opts      []sampler.Option

	settings model.Settings
	sampler  *sampler.ThroughputSampler
	last     model.ThroughputReading
	lastAt   time.Time

	cmds     chan command
	frames   chan model.ReadingFrame
	snapshot atomic.Pointer[Snapshot]
	stopped  chan struct{}
}

type MeterOption func(*Meter)

func WithClock(now func() time.Time) MeterOption {
	return func(m *Meter) {
		if now != nil {
			m.now = now
			m.opts = append(m.opts, sampler.WithClock(now))
		}
	}
}

func NewMeter(
	logger *slog.Logger,
	cfg MeterConfig,
	source adapter.Source,
	presenter *overlay.Presenter,
	surface overlay.Surface,
	sink stream.Sink,
	store SettingsStore,
	settings model.Settings,
	opts ...MeterOption,
) *Meter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 800 * time.Millisecond
	}
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = 10 * time.Second
	}
	if cfg.SinkBuffer <= 0 {
		cfg.SinkBuffer = 64
	}
	if sink == nil {
		sink = stream.NopSink{}
	}
	m := &Meter{
		logger:    logger,
		cfg:       cfg,
		source:    source,
		presenter: presenter,
		surface:   surface,
		sink:      sink,
		store:     store,
		now:       time.Now,
		settings:  settings,
		cmds:      make(chan command),
		frames:    make(chan model.ReadingFrame, cfg.SinkBuffer),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.opts = append(m.opts, sampler.WithLogger(logger))
	m.publishSnapshot()
	return m
}

// PresenterConfig maps persisted settings onto the overlay's startup configuration.
func PresenterConfig(s model.Settings) overlay.Config {
	cfg := overlay.Config{
		AllowDrag: !s.FixedPosition,
		Font:      overlay.Font{Family: s.FontFamily, Size: s.FontSize},
	}
	if s.HasPosition {
		cfg.Position = &overlay.Point{X: s.PositionX, Y: s.PositionY}
	}
	c, err := overlay.ParseColor(s.TextColor)
	if err != nil {
		c, _ = overlay.ParseColor(model.DefaultTextColor)
	}
	cfg.TextColor = c
	return cfg
}

// Run drives the meter until ctx is done and returns the final settings. It must be called once.
func (m *Meter) Run(ctx context.Context) (model.Settings, error) {
	defer close(m.stopped)

	m.bind(ctx, m.initialAdapter(ctx))
	m.publishSnapshot()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.runSinkPump(gctx)
	})
	g.Go(func() error {
		return m.runLoop(gctx)
	})
	err := g.Wait()
	m.syncPosition()
	return m.settings, err
}

func (m *Meter) Snapshot() Snapshot {
	return *m.snapshot.Load()
}

func (m *Meter) SelectAdapter(ctx context.Context, name string) error {
	return m.submit(ctx, func(ctx context.Context) error {
		if !slices.Contains(adapter.ListUp(ctx, m.source), name) {
			return fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
		}
		m.settings.AutoSelectAdapter = false
		m.bind(ctx, name)
		m.persist(ctx)
		return nil
	})
}

// SetAutoSelect toggles automatic adapter selection. Enabling it rebinds to the best adapter.
func (m *Meter) SetAutoSelect(ctx context.Context, on bool) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setAutoSelect(ctx, on)
		return nil
	})
}

func (m *Meter) ToggleAutoSelect(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setAutoSelect(ctx, !m.settings.AutoSelectAdapter)
		return nil
	})
}

// NextAdapter manually selects the up adapter following the current one.
func (m *Meter) NextAdapter(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context) error {
		up := adapter.ListUp(ctx, m.source)
		if len(up) == 0 {
			return ErrUnknownAdapter
		}
		next := up[0]
		if i := slices.Index(up, m.sampler.Requested()); i >= 0 {
			next = up[(i+1)%len(up)]
		}
		m.settings.AutoSelectAdapter = false
		m.bind(ctx, next)
		m.persist(ctx)
		return nil
	})
}

func (m *Meter) SetFixed(ctx context.Context, fixed bool) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setFixed(ctx, fixed)
		return nil
	})
}

func (m *Meter) ToggleFixed(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setFixed(ctx, m.presenter.State().AllowDrag)
		return nil
	})
}

// MoveTo places the overlay's top-left at pos. It is refused in fixed mode.
func (m *Meter) MoveTo(ctx context.Context, pos overlay.Point) error {
	return m.submit(ctx, func(ctx context.Context) error {
		if !m.presenter.MoveTo(pos) {
			return ErrPositionFixed
		}
		m.rememberPosition(ctx)
		return nil
	})
}

func (m *Meter) SetFont(ctx context.Context, family string, size int) error {
	return m.submit(ctx, func(ctx context.Context) error {
		return m.applyFont(ctx, family, size)
	})
}

// StepFontSize nudges the font size by delta, staying within the valid range.
func (m *Meter) StepFontSize(ctx context.Context, delta int) error {
	return m.submit(ctx, func(ctx context.Context) error {
		f := m.presenter.State().Font
		size := min(max(f.Size+delta, overlay.MinFontSize), overlay.MaxFontSize)
		if size == f.Size {
			return nil
		}
		return m.applyFont(ctx, f.Family, size)
	})
}

func (m *Meter) SetTextColor(ctx context.Context, c overlay.Color) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setColor(ctx, c)
		return nil
	})
}

// NextColor cycles through the preset palette.
func (m *Meter) NextColor(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context) error {
		m.setColor(ctx, overlay.NextPreset(m.presenter.State().TextColor))
		return nil
	})
}

// Pointer feeds a pointer event at global position at into the drag state machine. A press
// only starts a drag when it lands on the overlay's caption area.
func (m *Meter) Pointer(ctx context.Context, kind overlay.EventKind, at overlay.Point) error {
	return m.submit(ctx, func(ctx context.Context) error {
		before := m.presenter.State()
		if kind == overlay.EventPress && m.presenter.HitTest(at) != overlay.HitCaption {
			return nil
		}
		m.presenter.HandleInput(overlay.InputEvent{
			Kind:   kind,
			Pos:    at.Sub(before.Position),
			Button: overlay.ButtonPrimary,
		})
		if kind == overlay.EventRelease && before.Dragging {
			m.rememberPosition(ctx)
		}
		return nil
	})
}

func (m *Meter) Redraw(ctx context.Context) error {
	return m.submit(ctx, func(context.Context) error {
		if r, ok := m.surface.(Redrawer); ok {
			r.Redraw()
		}
		return nil
	})
}

func (m *Meter) submit(ctx context.Context, fn func(context.Context) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case m.cmds <- cmd:
	case <-m.stopped:
		return ErrMeterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-m.stopped:
		return ErrMeterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Meter) runLoop(ctx context.Context) error {
	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()
	rescan := time.NewTicker(m.cfg.RescanInterval)
	defer rescan.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-m.cmds:
			err := cmd.fn(ctx)
			m.publishSnapshot()
			cmd.done <- err
		case <-poll.C:
			m.tick(ctx)
		case <-rescan.C:
			m.rescan(ctx)
		}
	}
}

func (m *Meter) runSinkPump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-m.frames:
			err := m.sink.SendReading(ctx, frame)
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("reading export failed", "adapter", frame.Adapter, "error", err)
			}
			if m.cfg.OnSend != nil && ctx.Err() == nil {
				m.cfg.OnSend(err)
			}
		}
	}
}

func (m *Meter) tick(ctx context.Context) {
	r := m.sampler.Poll(ctx)
	m.last = r
	m.lastAt = m.now()

	m.presenter.SetReading(format.Label(r))
	if t, ok := m.surface.(Tooltipper); ok {
		t.SetTooltip(format.Tooltip(r))
	}
	if m.rememberDefaultPlacement(ctx) {
		m.logger.Debug("overlay placed", "x", m.settings.PositionX, "y", m.settings.PositionY)
	}

	frame := model.ReadingFrame{
		HostID:        m.cfg.HostID,
		Adapter:       m.sampler.Adapter(),
		TimestampUnix: m.lastAt.Unix(),
		Reading:       r,
		Download:      format.Rate(r.DownloadBytesPerSec),
		Upload:        format.Rate(r.UploadBytesPerSec),
	}
	select {
	case m.frames <- frame:
	default:
		m.logger.Debug("export buffer full, dropping reading", "adapter", frame.Adapter)
	}
	m.publishSnapshot()
}

// rescan rebinds to the best adapter when auto-select is on and the bound adapter went away.
func (m *Meter) rescan(ctx context.Context) {
	if !m.settings.AutoSelectAdapter || m.sampler.Up(ctx) {
		return
	}
	best, ok := m.bestAdapter(ctx)
	if !ok || best == m.sampler.Adapter() {
		return
	}
	m.logger.Info("bound adapter is down, switching", "from", m.sampler.Requested(), "to", best)
	m.bind(ctx, best)
	m.persist(ctx)
	m.publishSnapshot()
}

func (m *Meter) initialAdapter(ctx context.Context) string {
	if m.settings.AutoSelectAdapter {
		if best, ok := m.bestAdapter(ctx); ok {
			return best
		}
	}
	if m.settings.SelectedAdapter != "" {
		return m.settings.SelectedAdapter
	}
	if up := adapter.ListUp(ctx, m.source); len(up) > 0 {
		return up[0]
	}
	return ""
}

func (m *Meter) bestAdapter(ctx context.Context) (string, bool) {
	infos, err := m.source.Adapters(ctx)
	if err != nil {
		m.logger.Debug("adapter enumeration failed", "error", err)
		return "", false
	}
	return adapter.Best(infos)
}

// bind replaces the sampler; the old one is dropped between ticks.
func (m *Meter) bind(ctx context.Context, name string) {
	m.sampler = sampler.New(ctx, m.source, name, m.opts...)
	if name != "" {
		m.settings.SelectedAdapter = name
	}
	if m.sampler.Bound() {
		m.logger.Info("sampling adapter", "adapter", name)
	} else {
		m.logger.Warn("no usable adapter", "requested", name)
	}
}

func (m *Meter) setAutoSelect(ctx context.Context, on bool) {
	if m.settings.AutoSelectAdapter == on {
		return
	}
	m.settings.AutoSelectAdapter = on
	if on {
		if best, ok := m.bestAdapter(ctx); ok {
			m.bind(ctx, best)
		}
	}
	m.persist(ctx)
}

// setFixed ends any drag in progress; the position reached so far is kept.
func (m *Meter) setFixed(ctx context.Context, fixed bool) {
	wasDragging := m.presenter.DragState() == overlay.Dragging
	m.presenter.SetAllowDrag(!fixed)
	if m.settings.FixedPosition != fixed {
		m.settings.FixedPosition = fixed
		m.persist(ctx)
	}
	if wasDragging {
		m.rememberPosition(ctx)
	}
}

func (m *Meter) applyFont(ctx context.Context, family string, size int) error {
	if !overlay.ValidFontSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidFontSize, size)
	}
	if !m.presenter.SetFont(family, size) {
		return fmt.Errorf("%w: %s %d", overlay.ErrFontUnresolved, family, size)
	}
	m.settings.FontFamily = family
	m.settings.FontSize = size
	m.persist(ctx)
	return nil
}

func (m *Meter) setColor(ctx context.Context, c overlay.Color) {
	m.presenter.SetTextColor(c)
	m.settings.TextColor = c.Hex()
	m.persist(ctx)
}

func (m *Meter) rememberPosition(ctx context.Context) {
	pos := m.presenter.State().Position
	if m.settings.HasPosition && m.settings.PositionX == pos.X && m.settings.PositionY == pos.Y {
		return
	}
	m.settings.HasPosition = true
	m.settings.PositionX = pos.X
	m.settings.PositionY = pos.Y
	m.persist(ctx)
}

// syncPosition copies the overlay position into the settings without persisting them.
func (m *Meter) syncPosition() {
	if !m.presenter.Placed() {
		return
	}
	pos := m.presenter.State().Position
	m.settings.HasPosition = true
	m.settings.PositionX = pos.X
	m.settings.PositionY = pos.Y
}

// rememberDefaultPlacement records the first automatic placement so later runs reuse it.
func (m *Meter) rememberDefaultPlacement(ctx context.Context) bool {
	if m.settings.HasPosition || !m.presenter.Placed() {
		return false
	}
	m.rememberPosition(ctx)
	return true
}

func (m *Meter) persist(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, m.settings); err != nil {
		m.logger.Warn("persist settings failed", "error", err)
	}
}

func (m *Meter) publishSnapshot() {
	s := &Snapshot{
		AutoSelect: m.settings.AutoSelectAdapter,
		Reading:    m.last,
		Download:   format.Rate(m.last.DownloadBytesPerSec),
		Upload:     format.Rate(m.last.UploadBytesPerSec),
		Tooltip:    format.Tooltip(m.last),
		SampledAt:  m.lastAt,
	}
	if m.sampler != nil {
		s.Adapter = m.sampler.Adapter()
	}
	if m.presenter != nil {
		s.Overlay = m.presenter.State()
	}
	m.snapshot.Store(s)
}
