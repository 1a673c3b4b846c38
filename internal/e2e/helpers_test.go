package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"servingd/internal/engine"
	"servingd/internal/httpapi"
)

// newFakeRuntime starts an OpenAI-compatible engine runtime that is just
// real enough for end-to-end tests: a model listing for readiness probes,
// buffered and streamed completions, and an engine-shaped rejection for
// unknown models.
func newFakeRuntime(t *testing.T, served ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		data := make([]map[string]any, 0, len(served))
		for _, s := range served {
			data = append(data, map[string]any{"id": s, "object": "model"})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "" {
			known := false
			for _, s := range served {
				if s == req.Model {
					known = true
				}
			}
			if !known {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprintf(w, `{"object":"error","message":"The model `+"`%s`"+` does not exist.","type":"NotFoundError","param":null,"code":404}`, req.Model)
				return
			}
		}
		if req.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			fl := w.(http.Flusher)
			for _, tok := range []string{"hello", " from", " fake"} {
				fmt.Fprintf(w, "data: {\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"%s\"}}]}\n\n", tok)
				fl.Flush()
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			fl.Flush()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello from fake"}}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newStack brings up the full serving path: an engine handle attached to a
// fake runtime, wrapped by the HTTP API, served from a test listener.
func newStack(t *testing.T, modelID string, served ...string) *httptest.Server {
	t.Helper()
	rt := newFakeRuntime(t, append([]string{}, servedOrModel(modelID, served)...)...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h, err := engine.New(ctx, engine.Config{
		ModelID:          modelID,
		ServedModelNames: served,
		EngineURL:        rt.URL,
		StartTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	srv := httptest.NewServer(httpapi.NewMux(h))
	t.Cleanup(srv.Close)
	return srv
}

func servedOrModel(modelID string, served []string) []string {
	if len(served) > 0 {
		return served
	}
	return []string{modelID}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}
