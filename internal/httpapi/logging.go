package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"servingd/internal/engine"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("LOG_LEVEL"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

func reqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func logInvocationStart(r *http.Request, model string, stream bool) {
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path).Str("model", model).Bool("stream", stream)
		if rid := reqID(r); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("invocation start")
		return
	}
	log.Printf("invocation start path=%s model=%s stream=%v", r.URL.Path, model, stream)
}

func logInvocationEnd(r *http.Request, status int, dur time.Duration, chunks int, err error) {
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", dur)
		if chunks > 0 {
			z = z.Int("chunks", chunks)
		}
		if rid := reqID(r); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("invocation end")
		return
	}
	log.Printf("invocation end status=%d dur=%s chunks=%d err=%v", status, dur, chunks, err)
}

// logInvariantViolation records a mismatch between the caller's declared
// response mode and the shape the engine produced. Always logged, whatever
// the request log level: this is a fault in the deployment, not the request.
func logInvariantViolation(r *http.Request, wantStream bool, res *engine.Result) {
	gotStream := res != nil && res.Stream != nil
	if zlog != nil {
		z := zlog.Error().
			Str("event", "invariant_violation").
			Bool("requested_stream", wantStream).
			Bool("engine_streamed", gotStream)
		if rid := reqID(r); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("engine response shape contradicts request stream flag")
		return
	}
	log.Printf("invariant_violation requested_stream=%v engine_streamed=%v", wantStream, gotStream)
}
