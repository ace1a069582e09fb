package collector

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"netmeter/internal/adapter"
	"netmeter/internal/model"
	"netmeter/internal/overlay"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource grows every up adapter's counters by step on each read.
type fakeSource struct {
	mu       sync.Mutex
	adapters []model.AdapterInfo
	counters map[string]adapter.Counters
	step     uint64
}

func newFakeSource(adapters ...model.AdapterInfo) *fakeSource {
	return &fakeSource{adapters: adapters, counters: map[string]adapter.Counters{}, step: 4096}
}

func (f *fakeSource) Adapters(ctx context.Context) ([]model.AdapterInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AdapterInfo(nil), f.adapters...), nil
}

func (f *fakeSource) Counters(ctx context.Context, name string) (adapter.Counters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.adapters {
		if a.Name == name && a.Up {
			c := f.counters[name]
			c.RxBytes += f.step
			c.TxBytes += f.step / 2
			f.counters[name] = c
			return c, nil
		}
	}
	return adapter.Counters{}, adapter.ErrAdapterUnavailable
}

func (f *fakeSource) setUp(name string, up bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.adapters {
		if f.adapters[i].Name == name {
			f.adapters[i].Up = up
		}
	}
}

type fakeSurface struct {
	mu      sync.Mutex
	renders int
	tooltip string
	redraws int
}

func (s *fakeSurface) Render(overlay.State) {
	s.mu.Lock()
	s.renders++
	s.mu.Unlock()
}

func (s *fakeSurface) WorkArea() overlay.Rect {
	return overlay.Rect{Size: overlay.Size{W: 1920, H: 1040}}
}

func (s *fakeSurface) SetTooltip(text string) {
	s.mu.Lock()
	s.tooltip = text
	s.mu.Unlock()
}

func (s *fakeSurface) Redraw() {
	s.mu.Lock()
	s.redraws++
	s.mu.Unlock()
}

func (s *fakeSurface) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

type fixedFace struct{}

func (fixedFace) Measure(string) overlay.Size { return overlay.Size{W: 80, H: 32} }

type fakeResolver struct{}

func (fakeResolver) Resolve(f overlay.Font) (overlay.Face, error) {
	switch f.Family {
	case "Segoe UI", "Arial":
	default:
		return nil, overlay.ErrFontUnresolved
	}
	if f.Size <= 0 {
		return nil, overlay.ErrFontUnresolved
	}
	return fixedFace{}, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []model.Settings
}

func (s *fakeStore) Load(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return model.DefaultSettings(), nil
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *fakeStore) Save(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, settings)
	return nil
}

func (s *fakeStore) last(t *testing.T) model.Settings {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		t.Fatal("no settings persisted")
	}
	return s.saved[len(s.saved)-1]
}

type recordingSink struct {
	frames chan model.ReadingFrame
	block  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{frames: make(chan model.ReadingFrame, 128)}
}

func (s *recordingSink) SendReading(ctx context.Context, frame model.ReadingFrame) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case s.frames <- frame:
	default:
	}
	return nil
}

func (s *recordingSink) Close(context.Context) error { return nil }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
