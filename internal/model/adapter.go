package model

type AdapterInfo struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Loopback  bool   `json:"loopback"`
	Up        bool   `json:"up"`
	SpeedMbps uint64 `json:"speed_mbps"`
}
