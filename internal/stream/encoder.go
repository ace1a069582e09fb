package stream

import (
	"context"
	"encoding/json"
	"time"

	"netmeter/internal/model"
)

type Sink interface {
	SendReading(ctx context.Context, frame model.ReadingFrame) error
	Close(ctx context.Context) error
}

func EncodeEnvelope(e model.Envelope) ([]byte, error) {
	return json.Marshal(e)
}

func NewReadingEnvelope(frame model.ReadingFrame) model.Envelope {
	return model.Envelope{
		Type:      model.MetricTypeReading,
		HostID:    frame.HostID,
		Timestamp: time.Unix(frame.TimestampUnix, 0).UTC(),
		Payload:   frame,
	}
}

// NopSink discards every frame.
type NopSink struct{}

func (NopSink) SendReading(context.Context, model.ReadingFrame) error { return nil }

func (NopSink) Close(context.Context) error { return nil }
