package format

import (
	"fmt"

	"netmeter/internal/model"
)

const megabyte = 1024 * 1024

// Rate renders bytes/sec as MB/s at or above 1024*1024, KB/s below, two decimals.
func Rate(bytesPerSec float64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	if bytesPerSec >= megabyte {
		return fmt.Sprintf("%.2f MB/s", bytesPerSec/megabyte)
	}
	return fmt.Sprintf("%.2f KB/s", bytesPerSec/1024)
}

// Label is the two-line overlay text, upload first.
func Label(r model.ThroughputReading) string {
	return fmt.Sprintf("⬆️ %s\n⬇️ %s", Rate(r.UploadBytesPerSec), Rate(r.DownloadBytesPerSec))
}

// Tooltip is the one-line tray summary.
func Tooltip(r model.ThroughputReading) string {
	return fmt.Sprintf("D: %s | U: %s", Rate(r.DownloadBytesPerSec), Rate(r.UploadBytesPerSec))
}
