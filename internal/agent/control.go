package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"netmeter/internal/adapter"
	"netmeter/internal/collector"
	"netmeter/internal/model"
	"netmeter/internal/overlay"
)

// meterControl is the part of collector.Meter the control API drives.
type meterControl interface {
	Snapshot() collector.Snapshot
	SelectAdapter(ctx context.Context, name string) error
	SetAutoSelect(ctx context.Context, on bool) error
	SetFixed(ctx context.Context, fixed bool) error
	SetFont(ctx context.Context, family string, size int) error
	SetTextColor(ctx context.Context, c overlay.Color) error
	MoveTo(ctx context.Context, pos overlay.Point) error
}

// ControlAPI is the loopback HTTP surface standing in for the tray menu.
type ControlAPI struct {
	meter  meterControl
	source adapter.Source
	health *HealthStatus
	fonts  []string
	router chi.Router
}

func NewControlAPI(meter meterControl, source adapter.Source, health *HealthStatus, fonts []string) *ControlAPI {
	api := &ControlAPI{meter: meter, source: source, health: health, fonts: fonts}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(5 * time.Second))

	r.Get("/healthz", api.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/reading", api.handleReading)
		r.Get("/adapters", api.handleAdapters)
		r.Put("/adapter", api.handleSelectAdapter)
		r.Put("/overlay/fixed", api.handleFixed)
		r.Put("/overlay/position", api.handlePosition)
		r.Get("/overlay/fonts", api.handleFonts)
		r.Put("/overlay/font", api.handleFont)
		r.Put("/overlay/color", api.handleColor)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	api.router = r
	return api
}

func (c *ControlAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}

func (c *ControlAPI) handleHealthz(w http.ResponseWriter, r *http.Request) {
	snap := c.meter.Snapshot()
	out := c.health.Snapshot()
	out["adapter_bound"] = snap.Adapter != ""
	out["ok"] = true
	writeJSON(w, http.StatusOK, out)
}

func (c *ControlAPI) handleReading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, c.meter.Snapshot())
}

type adaptersResponse struct {
	Selected   string              `json:"selected"`
	AutoSelect bool                `json:"auto_select"`
	Adapters   []model.AdapterInfo `json:"adapters"`
}

func (c *ControlAPI) handleAdapters(w http.ResponseWriter, r *http.Request) {
	adapters, err := c.source.Adapters(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("list adapters: %w", err))
		return
	}
	snap := c.meter.Snapshot()
	writeJSON(w, http.StatusOK, adaptersResponse{
		Selected:   snap.Adapter,
		AutoSelect: snap.AutoSelect,
		Adapters:   adapters,
	})
}

type selectAdapterRequest struct {
	Name string `json:"name"`
	Auto bool   `json:"auto"`
}

func (c *ControlAPI) handleSelectAdapter(w http.ResponseWriter, r *http.Request) {
	var req selectAdapterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var err error
	switch {
	case req.Auto:
		err = c.meter.SetAutoSelect(r.Context(), true)
	case req.Name != "":
		err = c.meter.SelectAdapter(r.Context(), req.Name)
	default:
		writeError(w, http.StatusBadRequest, errors.New("name or auto is required"))
		return
	}
	c.respond(w, err)
}

func (c *ControlAPI) handleFixed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fixed bool `json:"fixed"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	c.respond(w, c.meter.SetFixed(r.Context(), req.Fixed))
}

func (c *ControlAPI) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, errors.New("x and y are required"))
		return
	}
	c.respond(w, c.meter.MoveTo(r.Context(), overlay.Point{X: *req.X, Y: *req.Y}))
}

func (c *ControlAPI) handleFonts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"families": c.fonts})
}

// handleFont accepts a family, a size, or both. Omitted fields keep their current value.
func (c *ControlAPI) handleFont(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Family string `json:"family"`
		Size   *int   `json:"size"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	current := c.meter.Snapshot().Overlay.Font
	family, size := current.Family, current.Size
	if req.Family != "" {
		family = req.Family
	}
	if req.Size != nil {
		size = *req.Size
	}
	c.respond(w, c.meter.SetFont(r.Context(), family, size))
}

func (c *ControlAPI) handleColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	color, err := overlay.ParseColor(req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c.respond(w, c.meter.SetTextColor(r.Context(), color))
}

func (c *ControlAPI) respond(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, c.meter.Snapshot())
	case errors.Is(err, collector.ErrInvalidFontSize),
		errors.Is(err, overlay.ErrFontUnresolved),
		errors.Is(err, overlay.ErrInvalidColor):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, collector.ErrUnknownAdapter):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, collector.ErrPositionFixed):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, collector.ErrMeterStopped):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *Agent) runControlAPI(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.ControlListenAddr)
	if err != nil {
		return fmt.Errorf("listen control endpoint %s: %w", a.cfg.ControlListenAddr, err)
	}
	srv := &http.Server{
		Handler:           NewControlAPI(a.meter, a.source, a.health, a.fonts),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.logger.Info("control endpoint listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve control endpoint: %w", err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
