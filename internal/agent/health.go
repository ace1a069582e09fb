package agent

import (
	"sync/atomic"
	"time"
)

type HealthStatus struct {
	adapterBound    atomic.Bool
	streamConnected atomic.Bool
	lastSampleAt    atomic.Int64
}

func NewHealthStatus() *HealthStatus {
	h := &HealthStatus{}
	h.adapterBound.Store(false)
	h.streamConnected.Store(false)
	return h
}

func (h *HealthStatus) SetAdapterBound(ok bool) {
	h.adapterBound.Store(ok)
}

func (h *HealthStatus) SetStreamConnected(ok bool) {
	h.streamConnected.Store(ok)
}

func (h *HealthStatus) MarkSample(ts time.Time) {
	h.lastSampleAt.Store(ts.UnixNano())
}

func (h *HealthStatus) Snapshot() map[string]any {
	out := map[string]any{
		"adapter_bound":    h.adapterBound.Load(),
		"stream_connected": h.streamConnected.Load(),
	}
	if v := h.lastSampleAt.Load(); v > 0 {
		out["last_sample_at"] = time.Unix(0, v).UTC()
	}
	return out
}
