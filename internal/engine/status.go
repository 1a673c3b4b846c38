package engine

import (
	"context"
	"time"

	"servingd/pkg/types"
)

// Status reports the live view of the engine for the operational endpoint.
// The state field reflects a fresh probe, not a cached readiness flag.
func (h *Handle) Status(ctx context.Context) types.StatusResponse {
	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	state := "ready"
	if !h.backend.Healthy(probeCtx) {
		state = "unreachable"
	}

	rt := types.RuntimeStatus{Mode: h.mode, URL: h.url}
	if h.proc != nil {
		rt.PID = h.proc.pid
		rt.Port = h.proc.port
	}

	var lastErr string
	if v := h.lastErr.Load(); v != nil {
		lastErr = v.(string)
	}

	return types.StatusResponse{
		State:             state,
		ModelID:           h.cfg.ModelID,
		ServedModels:      h.reg.Names(),
		ParallelismDegree: h.cfg.TensorParallel,
		Runtime:           rt,
		RequestsTotal:     h.requests.Load(),
		StreamsTotal:      h.streams.Load(),
		LastError:         lastErr,
		UptimeSeconds:     int64(time.Since(h.start).Seconds()),
		ServerTimeUnix:    time.Now().Unix(),
	}
}
