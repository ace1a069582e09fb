package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NETMETER_DATA_DIR", dir)
	t.Setenv("NETMETER_HOST_ID", "desk-1")
	t.Setenv("NETMETER_ADAPTER_BACKEND", "gopsutil")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 800*time.Millisecond {
		t.Fatalf("poll interval = %v, want 800ms", cfg.PollInterval)
	}
	if cfg.RescanInterval != 10*time.Second {
		t.Fatalf("rescan interval = %v, want 10s", cfg.RescanInterval)
	}
	if cfg.StreamMode != StreamModeNone {
		t.Fatalf("stream mode = %q, want none", cfg.StreamMode)
	}
	if cfg.UIMode != UIModeTerminal {
		t.Fatalf("ui mode = %q, want terminal", cfg.UIMode)
	}
	if cfg.ControlListenAddr != "127.0.0.1:7480" {
		t.Fatalf("control addr = %q", cfg.ControlListenAddr)
	}
	if want := filepath.Join(dir, "netmeter.log"); cfg.LogFile != want {
		t.Fatalf("log file = %q, want %q", cfg.LogFile, want)
	}
	if cfg.HostID != "desk-1" {
		t.Fatalf("host id = %q", cfg.HostID)
	}
}

func TestLoadHeadlessLogsToStderr(t *testing.T) {
	t.Setenv("NETMETER_DATA_DIR", t.TempDir())
	t.Setenv("NETMETER_UI", "headless")
	t.Setenv("NETMETER_ADAPTER_BACKEND", "gopsutil")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFile != "" {
		t.Fatalf("log file = %q, want empty", cfg.LogFile)
	}
}

func TestLoadEmptyControlAddrDisablesAPI(t *testing.T) {
	t.Setenv("NETMETER_DATA_DIR", t.TempDir())
	t.Setenv("NETMETER_ADAPTER_BACKEND", "gopsutil")
	t.Setenv("NETMETER_CONTROL_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ControlListenAddr != "" {
		t.Fatalf("control addr = %q, want empty", cfg.ControlListenAddr)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("NETMETER_DATA_DIR", t.TempDir())
	t.Setenv("NETMETER_ADAPTER_BACKEND", "gopsutil")
	t.Setenv("NETMETER_POLL_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 800*time.Millisecond {
		t.Fatalf("poll interval = %v, want fallback", cfg.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		HostID:                  "h",
		AgentVersion:            HardcodedVersion,
		AdapterBackend:          "netlink",
		UIMode:                  UIModeHeadless,
		DataDir:                 "/tmp/netmeter",
		PollInterval:            time.Second,
		RescanInterval:          time.Second,
		HealthInterval:          time.Second,
		ShutdownTimeout:         time.Second,
		StreamMode:              StreamModeNone,
		StreamBufferSize:        8,
		GRPCReadingStreamMethod: "/netmeter.v1.ReadingService/StreamReadings",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "NETMETER_POLL_INTERVAL"},
		{"bad backend", func(c *Config) { c.AdapterBackend = "wmi" }, "adapter backend"},
		{"bad ui", func(c *Config) { c.UIMode = "gtk" }, "ui mode"},
		{"bad stream", func(c *Config) { c.StreamMode = "kafka" }, "stream mode"},
		{"grpc without addr", func(c *Config) {
			c.StreamMode = StreamModeGRPC
			c.BackendGRPCAddr = ""
		}, "NETMETER_BACKEND_GRPC_ADDR"},
		{"websocket without url", func(c *Config) {
			c.StreamMode = StreamModeWebSocket
			c.BackendWSURL = ""
		}, "NETMETER_BACKEND_WS_URL"},
		{"zero buffer", func(c *Config) { c.StreamBufferSize = 0 }, "NETMETER_STREAM_BUFFER_SIZE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestTLSConfigDisabled(t *testing.T) {
	cfg, err := Config{}.TLSConfig()
	if err != nil || cfg != nil {
		t.Fatalf("TLSConfig() = %v, %v; want nil, nil", cfg, err)
	}
}

func TestTLSConfigRequiresCertAndKey(t *testing.T) {
	_, err := Config{TLSEnabled: true, TLSCertPath: "/tmp/cert.pem"}.TLSConfig()
	if err == nil {
		t.Fatal("expected error for cert without key")
	}
}
