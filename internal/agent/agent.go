package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"netmeter/internal/adapter"
	"netmeter/internal/collector"
	"netmeter/internal/config"
	"netmeter/internal/model"
	"netmeter/internal/overlay"
	"netmeter/internal/settings"
	"netmeter/internal/stream"
	"netmeter/internal/ui"
)

type Agent struct {
	cfg       config.Config
	logger    *slog.Logger
	source    adapter.Source
	store     *settings.Store
	sink      stream.Sink
	surface   overlay.Surface
	meter     *collector.Meter
	health    *HealthStatus
	fonts     []string
	closeUI   func()
	saveFinal time.Duration
}

func New(cfg config.Config, logger *slog.Logger) (*Agent, error) {
	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("tls config: %w", err)
	}

	source, err := adapter.NewSource(cfg.AdapterBackend)
	if err != nil {
		return nil, fmt.Errorf("adapter source: %w", err)
	}

	store, err := settings.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("settings store: %w", err)
	}
	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	persisted, err := store.Load(loadCtx)
	if err != nil {
		logger.Warn("load settings failed, using defaults", "error", err)
		persisted = model.DefaultSettings()
	}

	sink, err := stream.NewSinkFromConfig(cfg, tlsCfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("stream sink: %w", err)
	}

	a := &Agent{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		store:     store,
		sink:      sink,
		health:    NewHealthStatus(),
		closeUI:   func() {},
		saveFinal: 3 * time.Second,
	}

	switch cfg.UIMode {
	case config.UIModeTerminal:
		term, err := ui.NewTermSurface()
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("terminal ui: %w", err)
		}
		a.surface = term
		a.closeUI = term.Close
	default:
		a.surface = ui.NewHeadlessSurface(logger)
	}

	resolver := ui.NewCellFontResolver()
	a.fonts = resolver.Families()
	presenter := overlay.New(a.surface, resolver, collector.PresenterConfig(persisted), logger)
	a.meter = collector.NewMeter(
		logger,
		collector.MeterConfig{
			HostID:         cfg.HostID,
			PollInterval:   cfg.PollInterval,
			RescanInterval: cfg.RescanInterval,
			SinkBuffer:     cfg.StreamBufferSize,
			OnSend:         a.observeSend,
		},
		source,
		presenter,
		a.surface,
		sink,
		store,
		persisted,
	)
	return a, nil
}

func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("starting netmeter", "host_id", a.cfg.HostID, "backend", a.cfg.AdapterBackend, "ui", a.cfg.UIMode, "version", a.cfg.AgentVersion)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- a.run(runCtx)
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case runErr = <-runErrCh:
		// Stopped by itself: quit key, startup error or parent ctx canceled.
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received, starting graceful shutdown", "signal", sig.String(), "timeout", a.cfg.ShutdownTimeout)
		cancelRun()

		graceTimer := time.NewTimer(a.cfg.ShutdownTimeout)
		defer graceTimer.Stop()

		select {
		case runErr = <-runErrCh:
		case sig2 := <-sigCh:
			a.logger.Warn("second signal received, forcing immediate shutdown", "signal", sig2.String())
			runErr = context.Canceled
		case <-graceTimer.C:
			a.logger.Warn("graceful shutdown timeout reached, forcing shutdown", "timeout", a.cfg.ShutdownTimeout)
			runErr = context.DeadlineExceeded
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancelShutdown()
	a.shutdown(shutdownCtx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	a.logger.Info("netmeter stopped")
	return nil
}

// BuildLogger returns the process logger and a func that releases its output.
func BuildLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	release := func() {}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		release = func() { _ = f.Close() }
	}

	hOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(out, hOpts)), release, nil
	}
	return slog.New(slog.NewTextHandler(out, hOpts)), release, nil
}

func (a *Agent) observeSend(err error) {
	a.health.SetStreamConnected(err == nil)
}
