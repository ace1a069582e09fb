package model

import "time"

// CounterSample is one observation of an adapter's cumulative byte counters.
type CounterSample struct {
	BytesReceived uint64    `json:"bytes_received"`
	BytesSent     uint64    `json:"bytes_sent"`
	Timestamp     time.Time `json:"timestamp"`
}

// ThroughputReading is an instantaneous rate derived from two samples. Both fields are >= 0.
type ThroughputReading struct {
	DownloadBytesPerSec float64 `json:"download_bytes_per_sec"`
	UploadBytesPerSec   float64 `json:"upload_bytes_per_sec"`
}

// IsZero reports whether the reading carries no throughput on either axis.
func (r ThroughputReading) IsZero() bool {
	return r.DownloadBytesPerSec == 0 && r.UploadBytesPerSec == 0
}

type ReadingFrame struct {
	HostID        string            `json:"host_id"`
	Adapter       string            `json:"adapter"`
	TimestampUnix int64             `json:"timestamp_unix"`
	Reading       ThroughputReading `json:"reading"`
	Download      string            `json:"download"`
	Upload        string            `json:"upload"`
}
