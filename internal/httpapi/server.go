package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"servingd/internal/engine"
	"servingd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ServedModels() types.ModelList
	Status(ctx context.Context) types.StatusResponse
	ChatCompletion(ctx context.Context, payload []byte) (*engine.Result, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// No compression middleware: event-stream responses must reach the
	// client chunk by chunk, and gzip buffers them.
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Container liveness probe. The engine is brought up before the listener
	// binds, so a bound socket already implies a loaded model; the probe
	// answers unconditionally.
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	})

	r.Post("/invocations", func(w http.ResponseWriter, r *http.Request) {
		handleInvocation(svc, w, r)
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.ServedModels()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status(r.Context())); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleInvocation admits one platform request, forwards it to the engine and
// relays the outcome. The response branch follows the caller's declared mode,
// never the engine's: a mismatch between the two is an internal fault.
func handleInvocation(svc Service, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lvl := requestLogLevel(r)

	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		observeInvocation("invalid")
		writeInvalidRequest(w, err.Error())
		return
	}
	var req types.ChatCompletionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		observeInvocation("invalid")
		writeInvalidRequest(w, err.Error())
		return
	}
	if details, ok := validateRequest(req); !ok {
		observeInvocation("invalid")
		writeInvalidRequest(w, details)
		return
	}

	if lvl >= LevelInfo {
		logInvocationStart(r, req.Model, req.Stream)
	}

	// Join server base context with request context so shutdown cancels
	// in-flight work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if invocationTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(invocationTimeout)*time.Second)
		defer tcancel()
	}

	res, err := svc.ChatCompletion(ctx, payload)
	if err != nil {
		// Client disconnect or shutdown: nothing useful to write.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		observeInvocation("fault")
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		if lvl >= LevelError {
			logInvocationEnd(r, http.StatusInternalServerError, time.Since(start), 0, err)
		}
		return
	}

	switch {
	case res.Err != nil:
		// Engine-declared rejection: relay status and body untouched.
		observeInvocation("domain_error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.Err.Status)
		_, _ = w.Write(res.Err.Body)
		if lvl >= LevelInfo {
			logInvocationEnd(r, res.Err.Status, time.Since(start), 0, nil)
		}

	case req.Stream && res.Stream != nil:
		chunks, err := relayStream(w, res.Stream)
		observeInvocation("stream")
		addStreamChunks(chunks)
		if lvl >= LevelInfo {
			logInvocationEnd(r, http.StatusOK, time.Since(start), chunks, err)
		}

	case !req.Stream && res.Response != nil:
		observeInvocation("buffered")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(res.Response)
		if lvl >= LevelInfo {
			logInvocationEnd(r, http.StatusOK, time.Since(start), 0, nil)
		}

	default:
		// The engine produced the opposite shape from what the caller asked
		// for. Do not improvise a translation; fail loudly.
		if res.Stream != nil {
			res.Stream.Close()
		}
		observeInvocation("invariant_violation")
		logInvariantViolation(r, req.Stream, res)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		if lvl >= LevelError {
			logInvocationEnd(r, http.StatusInternalServerError, time.Since(start), 0, nil)
		}
	}
}

// validateRequest applies the request-shape checks that fall to admission
// rather than the engine: the fields every invocation must carry. The model
// field stays optional; an omitted model means the served default.
func validateRequest(req types.ChatCompletionRequest) (string, bool) {
	if req.Messages == nil {
		return "messages: field required", false
	}
	for i, m := range req.Messages {
		if m.Role == "" {
			return fmt.Sprintf("messages[%d].role: field required", i), false
		}
	}
	return "", true
}

// relayStream copies engine chunks to the client in emission order, flushing
// after each so the platform sees tokens as they are produced.
func relayStream(w http.ResponseWriter, s *engine.Stream) (int, error) {
	defer s.Close()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	chunks := 0
	for {
		chunk, err := s.Recv()
		if err != nil {
			if err == io.EOF {
				return chunks, nil
			}
			// Headers are long gone; the truncated stream is the signal.
			return chunks, err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return chunks, err
		}
		if flusher != nil {
			flusher.Flush()
		}
		chunks++
	}
}
