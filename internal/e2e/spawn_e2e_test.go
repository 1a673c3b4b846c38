package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"servingd/internal/engine"
	"servingd/internal/httpapi"
)

// buildFakeEngine compiles the fake runtime shipped with the engine package
// and returns the binary path.
func buildFakeEngine(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "fake_engine_server")
	cmd := exec.Command("go", "build", "-o", bin, "./fake_engine_server.go")
	cmd.Dir = filepath.Join("..", "engine", "testdata")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build fake engine: %v: %s", err, string(out))
	}
	return bin
}

// TestE2E_SpawnMode drives the whole path with a supervised runtime child:
// bootstrap spawns the binary, waits for readiness, and the API serves
// invocations against it until shutdown.
func TestE2E_SpawnMode(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	bin := buildFakeEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	h, err := engine.New(ctx, engine.Config{
		ModelID:      "org/model-7b",
		EngineBin:    bin,
		StartTimeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer h.Close()

	srv := httptest.NewServer(httpapi.NewMux(h))
	defer srv.Close()

	resp, body := httpPostJSON(t, srv.URL+"/invocations", []byte(`{"messages":[{"role":"user","content":"hi"}]}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buffered: status=%d body=%s", resp.StatusCode, string(body))
	}

	resp, body = httpPostJSON(t, srv.URL+"/invocations",
		[]byte(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream: status=%d body=%s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "data: [DONE]") {
		t.Fatalf("stream terminator missing: %s", string(body))
	}

	_, body = httpGet(t, srv.URL+"/status")
	var st struct {
		Runtime struct {
			Mode string `json:"mode"`
			PID  int    `json:"pid"`
			Port int    `json:"port"`
		} `json:"runtime"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("status json: %v", err)
	}
	if st.Runtime.Mode != "spawn" || st.Runtime.PID <= 0 || st.Runtime.Port <= 0 {
		t.Fatalf("unexpected runtime status: %+v", st.Runtime)
	}
}

// TestE2E_SpawnBootstrapFailure verifies that a runtime dying during load
// fails construction instead of leaving a half-up server.
func TestE2E_SpawnBootstrapFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	bin := buildFakeEngine(t)
	t.Setenv("FAKE_ENGINE_BEHAVIOR", "exit")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := engine.New(ctx, engine.Config{
		ModelID:      "org/model-7b",
		EngineBin:    bin,
		StartTimeout: 15 * time.Second,
	})
	if err == nil {
		t.Fatal("expected bootstrap to fail when the runtime exits")
	}
	if !strings.Contains(err.Error(), "model load failed") {
		t.Fatalf("expected runtime stderr in error, got: %v", err)
	}
}
