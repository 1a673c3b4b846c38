package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"servingd/internal/registry"
	"servingd/pkg/types"
)

// Runtime modes, in selection order.
const (
	ModeAttach = "attach"
	ModeSpawn  = "spawn"
	ModeLocal  = "local"
)

// Handle owns the connection to one inference engine for the lifetime of
// the daemon. Construction does not return until the engine answers its
// model-listing probe, so a live Handle implies a reachable engine.
type Handle struct {
	cfg     Config
	backend Backend
	proc    *process
	reg     *registry.Registry
	log     zerolog.Logger
	events  EventPublisher
	start   time.Time
	mode    string
	url     string

	requests atomic.Uint64
	streams  atomic.Uint64
	lastErr  atomic.Value
}

// New selects a runtime mode from the configuration and brings the engine
// up: attach to a running runtime when a URL is given, spawn a runtime
// binary when one is configured, otherwise run the model in process.
// It fails rather than degrade; callers should treat an error as fatal.
func New(ctx context.Context, cfg Config) (*Handle, error) {
	cfg = cfg.withDefaults()
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("engine: model id is required")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	h := &Handle{
		cfg:    cfg,
		reg:    registry.New(cfg.ModelID, cfg.ServedModelNames),
		log:    log,
		events: cfg.Events,
		start:  time.Now(),
	}

	switch {
	case cfg.EngineURL != "":
		h.mode = ModeAttach
		b := newHTTPBackend(cfg.EngineURL, cfg.ConnectTimeout)
		if err := waitReady(ctx, b, cfg.StartTimeout, nil); err != nil {
			b.Close()
			return nil, fmt.Errorf("engine at %s: %w", cfg.EngineURL, err)
		}
		h.backend = b
		h.url = cfg.EngineURL
	case cfg.EngineBin != "":
		h.mode = ModeSpawn
		proc, err := startProcess(cfg, log, h.events)
		if err != nil {
			return nil, err
		}
		b := newHTTPBackend(proc.baseURL, cfg.ConnectTimeout)
		if err := waitReady(ctx, b, cfg.StartTimeout, proc); err != nil {
			b.Close()
			_ = proc.Stop()
			return nil, fmt.Errorf("spawned engine: %w", err)
		}
		h.backend = b
		h.proc = proc
		h.url = proc.baseURL
	default:
		h.mode = ModeLocal
		b, err := newLocalBackend(cfg)
		if err != nil {
			return nil, err
		}
		h.backend = b
	}

	h.events.Publish(Event{Name: "engine_ready", Model: cfg.ModelID, Fields: map[string]any{"mode": h.mode, "url": h.url}})
	log.Info().Str("mode", h.mode).Str("model", cfg.ModelID).Str("url", h.url).Msg("engine ready")
	return h, nil
}

// waitReady polls the model-listing probe until the backend answers or the
// deadline passes. When supervising a spawned process it also fails fast if
// the process dies first, surfacing the stderr tail.
func waitReady(ctx context.Context, b Backend, timeout time.Duration, proc *process) error {
	deadline := time.Now().Add(timeout)
	for {
		if proc != nil {
			if exited, err := proc.exited(); exited {
				return fmt.Errorf("runtime exited before ready (%v); stderr: %s", err, proc.stderrTail())
			}
		}
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := b.Healthy(probeCtx)
		cancel()
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			if proc != nil {
				return fmt.Errorf("not ready after %s; stderr: %s", timeout, proc.stderrTail())
			}
			return fmt.Errorf("not ready after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// ChatCompletion forwards one request body to the engine. The outcome shape
// is whatever the engine produced; transport faults are recorded and
// returned as errors.
func (h *Handle) ChatCompletion(ctx context.Context, payload []byte) (*Result, error) {
	h.requests.Add(1)
	res, err := h.backend.ChatCompletion(ctx, payload)
	if err != nil {
		h.lastErr.Store(err.Error())
		return nil, err
	}
	if res.Stream != nil {
		h.streams.Add(1)
	}
	return res, nil
}

// ServedModels lists the model names this deployment answers to.
func (h *Handle) ServedModels() types.ModelList {
	return h.reg.List()
}

// ServedModelNames returns the alias list without the listing envelope.
func (h *Handle) ServedModelNames() []string {
	return h.reg.Names()
}

// Mode reports the selected runtime mode.
func (h *Handle) Mode() string { return h.mode }

// URL reports the runtime endpoint, empty in local mode.
func (h *Handle) URL() string { return h.url }

// Close releases the backend and stops a spawned runtime if one exists.
func (h *Handle) Close() error {
	var err error
	if h.backend != nil {
		err = h.backend.Close()
	}
	if h.proc != nil {
		if serr := h.proc.Stop(); serr != nil && err == nil {
			err = serr
		}
	}
	h.events.Publish(Event{Name: "engine_stop", Model: h.cfg.ModelID, Fields: map[string]any{"mode": h.mode}})
	return err
}
