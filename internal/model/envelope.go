package model

import "time"

type MetricType string

const (
	MetricTypeReading MetricType = "throughput_reading"
)

// Envelope is transport-agnostic framing for stream payloads.
type Envelope struct {
	Type      MetricType `json:"type"`
	HostID    string     `json:"host_id"`
	Timestamp time.Time  `json:"timestamp"`
	Payload   any        `json:"payload"`
}
