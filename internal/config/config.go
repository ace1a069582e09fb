package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type StreamMode string

const (
	StreamModeNone      StreamMode = "none"
	StreamModeGRPC      StreamMode = "grpc"
	StreamModeWebSocket StreamMode = "websocket"
	HardcodedVersion    string     = "V0.1"
)

type UIMode string

const (
	UIModeTerminal UIMode = "terminal"
	UIModeHeadless UIMode = "headless"
)

type Config struct {
	HostID                  string
	Hostname                string
	AdapterBackend          string
	UIMode                  UIMode
	DataDir                 string
	ControlListenAddr       string
	PollInterval            time.Duration
	RescanInterval          time.Duration
	HealthInterval          time.Duration
	ShutdownTimeout         time.Duration
	StreamMode              StreamMode
	BackendGRPCAddr         string
	BackendWSURL            string
	BackendToken            string
	AgentVersion            string
	TLSEnabled              bool
	TLSSkipVerify           bool
	TLSCAPath               string
	TLSCertPath             string
	TLSKeyPath              string
	LogJSON                 bool
	LogLevel                string
	LogFile                 string
	GRPCReadingStreamMethod string
	WebSocketWriteTimeout   time.Duration
	WebSocketPingInterval   time.Duration
	StreamBufferSize        int
}

func Load() (Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	dataDir := env("NETMETER_DATA_DIR", defaultDataDir())
	uiMode := UIMode(strings.ToLower(env("NETMETER_UI", string(UIModeTerminal))))
	logFile := env("NETMETER_LOG_FILE", "")
	if logFile == "" && uiMode == UIModeTerminal {
		logFile = filepath.Join(dataDir, "netmeter.log")
	}

	cfg := Config{
		HostID:                  env("NETMETER_HOST_ID", hostname),
		Hostname:                hostname,
		AdapterBackend:          strings.ToLower(env("NETMETER_ADAPTER_BACKEND", defaultBackend())),
		UIMode:                  uiMode,
		DataDir:                 dataDir,
		ControlListenAddr:       strings.TrimSpace(os.Getenv("NETMETER_CONTROL_ADDR")),
		PollInterval:            envDuration("NETMETER_POLL_INTERVAL", 800*time.Millisecond),
		RescanInterval:          envDuration("NETMETER_RESCAN_INTERVAL", 10*time.Second),
		HealthInterval:          envDuration("NETMETER_HEALTH_INTERVAL", 30*time.Second),
		ShutdownTimeout:         envDuration("NETMETER_SHUTDOWN_TIMEOUT", 5*time.Second),
		StreamMode:              StreamMode(strings.ToLower(env("NETMETER_STREAM_MODE", string(StreamModeNone)))),
		BackendGRPCAddr:         env("NETMETER_BACKEND_GRPC_ADDR", "127.0.0.1:3001"),
		BackendWSURL:            env("NETMETER_BACKEND_WS_URL", "ws://127.0.0.1:3001/ws/readings"),
		BackendToken:            env("NETMETER_BACKEND_TOKEN", ""),
		AgentVersion:            HardcodedVersion,
		TLSEnabled:              envBool("NETMETER_TLS_ENABLED", false),
		TLSSkipVerify:           envBool("NETMETER_TLS_SKIP_VERIFY", false),
		TLSCAPath:               env("NETMETER_TLS_CA_PATH", ""),
		TLSCertPath:             env("NETMETER_TLS_CERT_PATH", ""),
		TLSKeyPath:              env("NETMETER_TLS_KEY_PATH", ""),
		LogJSON:                 envBool("NETMETER_LOG_JSON", false),
		LogLevel:                strings.ToLower(env("NETMETER_LOG_LEVEL", "info")),
		LogFile:                 logFile,
		GRPCReadingStreamMethod: env("NETMETER_GRPC_READING_STREAM_METHOD", "/netmeter.v1.ReadingService/StreamReadings"),
		WebSocketWriteTimeout:   envDuration("NETMETER_WS_WRITE_TIMEOUT", 5*time.Second),
		WebSocketPingInterval:   envDuration("NETMETER_WS_PING_INTERVAL", 10*time.Second),
		StreamBufferSize:        envInt("NETMETER_STREAM_BUFFER_SIZE", 64),
	}
	if _, set := os.LookupEnv("NETMETER_CONTROL_ADDR"); !set {
		cfg.ControlListenAddr = "127.0.0.1:7480"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HostID == "" {
		return errors.New("NETMETER_HOST_ID is required")
	}
	if strings.TrimSpace(c.AgentVersion) == "" {
		return errors.New("agent version must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("NETMETER_DATA_DIR is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("NETMETER_POLL_INTERVAL must be > 0")
	}
	if c.RescanInterval <= 0 {
		return errors.New("NETMETER_RESCAN_INTERVAL must be > 0")
	}
	if c.HealthInterval <= 0 {
		return errors.New("NETMETER_HEALTH_INTERVAL must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("NETMETER_SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.StreamBufferSize <= 0 {
		return errors.New("NETMETER_STREAM_BUFFER_SIZE must be > 0")
	}
	switch c.AdapterBackend {
	case "netlink", "gopsutil":
	default:
		return fmt.Errorf("unsupported adapter backend %q", c.AdapterBackend)
	}
	switch c.UIMode {
	case UIModeTerminal, UIModeHeadless:
	default:
		return fmt.Errorf("unsupported ui mode %q", c.UIMode)
	}
	switch c.StreamMode {
	case StreamModeNone, StreamModeGRPC, StreamModeWebSocket:
	default:
		return fmt.Errorf("unsupported stream mode %q", c.StreamMode)
	}
	if c.StreamMode == StreamModeGRPC {
		if c.BackendGRPCAddr == "" {
			return errors.New("NETMETER_BACKEND_GRPC_ADDR is required for grpc mode")
		}
		if strings.TrimSpace(c.GRPCReadingStreamMethod) == "" {
			return errors.New("NETMETER_GRPC_READING_STREAM_METHOD is required for grpc mode")
		}
	}
	if c.StreamMode == StreamModeWebSocket && c.BackendWSURL == "" {
		return errors.New("NETMETER_BACKEND_WS_URL is required for websocket mode")
	}
	return nil
}

func (c Config) TLSConfig() (*tls.Config, error) {
	if !c.TLSEnabled {
		return nil, nil
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: c.TLSSkipVerify}
	if c.TLSCAPath != "" {
		caBytes, err := os.ReadFile(c.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, errors.New("append CA cert failed")
		}
		tlsCfg.RootCAs = pool
	}
	if c.TLSCertPath != "" || c.TLSKeyPath != "" {
		if c.TLSCertPath == "" || c.TLSKeyPath == "" {
			return nil, errors.New("both TLS cert and key are required")
		}
		crt, err := tls.LoadX509KeyPair(c.TLSCertPath, c.TLSKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load mTLS cert/key: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{crt}
	}
	return tlsCfg, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "netmeter")
	}
	return filepath.Join(os.TempDir(), "netmeter")
}

func defaultBackend() string {
	if runtime.GOOS == "linux" {
		return "netlink"
	}
	return "gopsutil"
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
