package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	termui "github.com/gizak/termui/v3"
	"golang.org/x/sync/errgroup"

	"netmeter/internal/config"
	"netmeter/internal/model"
	"netmeter/internal/ui"
)

var errQuitRequested = errors.New("quit requested")

type eventSource interface {
	Events() <-chan termui.Event
}

func (a *Agent) run(ctx context.Context) error {
	a.health.SetStreamConnected(a.cfg.StreamMode == config.StreamModeNone)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		final, err := a.meter.Run(gctx)
		a.saveSettings(final)
		return err
	})
	g.Go(func() error {
		return a.runHealthLoop(gctx)
	})
	if events, ok := a.surface.(eventSource); ok {
		g.Go(func() error {
			return a.runUIPump(gctx, events.Events())
		})
	}
	if a.cfg.ControlListenAddr != "" {
		g.Go(func() error {
			return a.runControlAPI(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errQuitRequested) {
		return err
	}
	return nil
}

// runUIPump turns terminal events into meter commands. It never touches the surface itself.
func (a *Agent) runUIPump(ctx context.Context, events <-chan termui.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			action := ui.Translate(e)
			if action.Kind == ui.ActionQuit {
				a.logger.Info("quit requested from terminal")
				return errQuitRequested
			}
			if err := a.dispatch(ctx, action); err != nil && ctx.Err() == nil {
				a.logger.Debug("terminal action failed", "action", action.Kind, "error", err)
			}
		}
	}
}

func (a *Agent) dispatch(ctx context.Context, action ui.Action) error {
	switch action.Kind {
	case ui.ActionPointer:
		return a.meter.Pointer(ctx, action.Pointer, action.At)
	case ui.ActionResize:
		return a.meter.Redraw(ctx)
	case ui.ActionToggleFixed:
		return a.meter.ToggleFixed(ctx)
	case ui.ActionToggleAuto:
		return a.meter.ToggleAutoSelect(ctx)
	case ui.ActionNextAdapter:
		return a.meter.NextAdapter(ctx)
	case ui.ActionFontUp:
		return a.meter.StepFontSize(ctx, 1)
	case ui.ActionFontDown:
		return a.meter.StepFontSize(ctx, -1)
	case ui.ActionNextColor:
		return a.meter.NextColor(ctx)
	}
	return nil
}

func (a *Agent) runHealthLoop(ctx context.Context) error {
	t := time.NewTicker(a.cfg.HealthInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			snap := a.meter.Snapshot()
			a.health.SetAdapterBound(snap.Adapter != "")
			if !snap.SampledAt.IsZero() {
				a.health.MarkSample(snap.SampledAt)
			}
			status := "ok"
			if snap.Adapter == "" {
				status = "no_adapter"
			}
			a.logHealth(status)
		}
	}
}

func (a *Agent) logHealth(status string) {
	a.logger.Log(context.Background(), slog.LevelDebug, "agent health", "status", status, "snapshot", a.health.Snapshot())
}

// saveSettings persists the final settings on a context detached from the run.
func (a *Agent) saveSettings(s model.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), a.saveFinal)
	defer cancel()
	if err := a.store.Save(ctx, s); err != nil {
		a.logger.Warn("save final settings failed", "error", err)
	}
}

func (a *Agent) shutdown(ctx context.Context) {
	a.closeUI()
	if err := a.sink.Close(ctx); err != nil {
		a.logger.Warn("stream sink close failed", "error", err)
	}
	a.health.SetStreamConnected(false)
	if err := a.store.Close(); err != nil {
		a.logger.Warn("settings store close failed", "error", err)
	}
}
