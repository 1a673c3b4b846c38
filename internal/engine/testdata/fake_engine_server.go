package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// Fake OpenAI-compatible engine runtime for subprocess tests. It accepts the
// argv shape the supervisor produces (positional model id, then flags) and
// serves just enough of the API surface for readiness and invocation tests.
func main() {
	model := ""
	host := "127.0.0.1"
	port := "0"
	served := []string{}
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--host":
			i++
			host = args[i]
		case "--port":
			i++
			port = args[i]
		case "--served-model-name":
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				i++
				served = append(served, args[i])
			}
		case "--tensor-parallel-size", "--max-model-len", "--limit-mm-per-prompt", "--tokenizer", "--chat-template":
			i++
		case "--trust-remote-code":
		default:
			if model == "" && !strings.HasPrefix(args[i], "--") {
				model = args[i]
			}
		}
	}
	if len(served) == 0 {
		served = []string{model}
	}

	switch os.Getenv("FAKE_ENGINE_BEHAVIOR") {
	case "exit":
		fmt.Fprintln(os.Stderr, "boom: model load failed")
		os.Exit(3)
	case "slow":
		time.Sleep(5 * time.Second)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		data := make([]map[string]any, 0, len(served))
		for _, s := range served {
			data = append(data, map[string]any{"id": s, "object": "model"})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
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
				fmt.Fprintf(w, "data: {\"object\":\"chat.completion.chunk\",\"choices\":[{\"delta\":{\"content\":\"%s\"}}]}\n\n", tok)
				fl.Flush()
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			fl.Flush()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"chat.completion","choices":[{"message":{"role":"assistant","content":"hello from fake"}}]}`)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for SIGTERM then shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
