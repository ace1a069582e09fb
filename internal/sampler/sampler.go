package sampler

import (
	"context"
	"log/slog"
	"time"

	"netmeter/internal/adapter"
	"netmeter/internal/model"
)

// ThroughputSampler turns one adapter's cumulative counters into per-second rates.
// It is not safe for concurrent use; the driver owns it from a single goroutine.
type ThroughputSampler struct {
	source  adapter.Source
	handle  *adapter.Handle
	last    model.CounterSample
	primed  bool
	now     func() time.Time
	logger  *slog.Logger
	request string
}

type Option func(*ThroughputSampler)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ThroughputSampler) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ThroughputSampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New binds to name when it exists and is up; otherwise the sampler reports (0,0)
// forever. The baseline is captured immediately.
func New(ctx context.Context, src adapter.Source, name string, opts ...Option) *ThroughputSampler {
	s := &ThroughputSampler{
		source:  src,
		now:     time.Now,
		logger:  slog.Default(),
		request: name,
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := adapter.Bind(ctx, src, name)
	if err != nil {
		s.logger.Debug("sampler bound to no adapter", "adapter", name, "error", err)
	} else {
		s.handle = h
	}
	s.Reset(ctx)
	return s
}

// Adapter returns the bound adapter name, or "" in the no-adapter state.
func (s *ThroughputSampler) Adapter() string {
	if s.handle == nil {
		return ""
	}
	return s.handle.Name()
}

// Requested is the name the sampler was constructed with, bound or not.
func (s *ThroughputSampler) Requested() string {
	return s.request
}

func (s *ThroughputSampler) Bound() bool {
	return s.handle != nil
}

// Up reports whether the bound adapter is currently operational.
func (s *ThroughputSampler) Up(ctx context.Context) bool {
	return s.handle != nil && s.handle.Up(ctx)
}

// Reset re-captures the baseline without emitting a reading.
func (s *ThroughputSampler) Reset(ctx context.Context) {
	s.primed = false
	s.last = model.CounterSample{Timestamp: s.now()}
	if s.handle == nil {
		return
	}
	c, err := s.handle.Read(ctx)
	if err != nil {
		s.logger.Debug("baseline capture failed", "adapter", s.handle.Name(), "error", err)
		return
	}
	s.last.BytesReceived = c.RxBytes
	s.last.BytesSent = c.TxBytes
}

// Poll reads the counters and returns the rates since the previous poll.
func (s *ThroughputSampler) Poll(ctx context.Context) model.ThroughputReading {
	now := s.now()
	if s.handle == nil {
		s.last = model.CounterSample{Timestamp: now}
		return model.ThroughputReading{}
	}

	c, err := s.handle.Read(ctx)
	if err != nil {
		if s.primed {
			s.logger.Debug("counter query failed", "adapter", s.handle.Name(), "error", err)
		}
		s.primed = false
		s.last = model.CounterSample{Timestamp: now}
		return model.ThroughputReading{}
	}

	cur := model.CounterSample{BytesReceived: c.RxBytes, BytesSent: c.TxBytes, Timestamp: now}
	prev := s.last
	wasPrimed := s.primed
	s.last = cur
	s.primed = true

	elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if !wasPrimed || elapsed <= 0 {
		return model.ThroughputReading{}
	}
	return model.ThroughputReading{
		DownloadBytesPerSec: float64(deltaCounter(cur.BytesReceived, prev.BytesReceived)) / elapsed,
		UploadBytesPerSec:   float64(deltaCounter(cur.BytesSent, prev.BytesSent)) / elapsed,
	}
}

// deltaCounter clamps a regression (counter reset) to zero.
func deltaCounter(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}
