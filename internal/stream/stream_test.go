package stream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"netmeter/internal/config"
	"netmeter/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewReadingEnvelope(t *testing.T) {
	frame := model.ReadingFrame{
		HostID:        "desk-1",
		Adapter:       "eth0",
		TimestampUnix: 1700000000,
		Reading:       model.ThroughputReading{DownloadBytesPerSec: 2048, UploadBytesPerSec: 512},
		Download:      "2.00 KB/s",
		Upload:        "0.50 KB/s",
	}
	env := NewReadingEnvelope(frame)
	if env.Type != model.MetricTypeReading {
		t.Fatalf("type = %q", env.Type)
	}
	if env.HostID != "desk-1" || env.Timestamp.Unix() != 1700000000 {
		t.Fatalf("envelope header = %+v", env)
	}

	raw, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			Adapter string `json:"adapter"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "throughput_reading" || decoded.Payload.Adapter != "eth0" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestNewSinkFromConfig(t *testing.T) {
	cases := []struct {
		mode config.StreamMode
		ok   bool
	}{
		{config.StreamModeNone, true},
		{config.StreamModeGRPC, true},
		{config.StreamModeWebSocket, true},
		{"kafka", false},
	}
	for _, tc := range cases {
		sink, err := NewSinkFromConfig(config.Config{StreamMode: tc.mode, BackendGRPCAddr: "127.0.0.1:1", BackendWSURL: "ws://127.0.0.1:1/ws"}, nil, testLogger())
		if tc.ok && (err != nil || sink == nil) {
			t.Fatalf("mode %q: sink=%v err=%v", tc.mode, sink, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("mode %q: expected error", tc.mode)
		}
	}
}

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	if err := s.SendReading(context.Background(), model.ReadingFrame{}); err != nil {
		t.Fatalf("SendReading: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
