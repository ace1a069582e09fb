package stream

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"netmeter/internal/config"
)

const defaultReadingStreamMethod = "/netmeter.v1.ReadingService/StreamReadings"

func NewSinkFromConfig(cfg config.Config, tlsCfg *tls.Config, logger *slog.Logger) (Sink, error) {
	switch cfg.StreamMode {
	case config.StreamModeNone:
		return NopSink{}, nil
	case config.StreamModeGRPC:
		method := cfg.GRPCReadingStreamMethod
		if method == "" {
			method = defaultReadingStreamMethod
		}
		return NewGRPCClient(cfg.BackendGRPCAddr, tlsCfg, cfg.BackendToken, method, logger), nil
	case config.StreamModeWebSocket:
		return NewWebSocketClient(cfg.BackendWSURL, cfg.BackendToken, tlsCfg, cfg.WebSocketWriteTimeout, cfg.WebSocketPingInterval, logger), nil
	default:
		return nil, fmt.Errorf("unsupported stream mode %q", cfg.StreamMode)
	}
}
