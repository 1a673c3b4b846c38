package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	// query wins over header
	r = httptest.NewRequest("GET", "/x?log=off", nil)
	r.Header.Set("X-Log-Level", "debug")
	if got := requestLogLevel(r); got != LevelOff {
		t.Fatalf("precedence failed: %v", got)
	}
}

func TestLogInvariantViolation_EmitsStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	r := httptest.NewRequest("POST", "/invocations", nil)
	logInvariantViolation(r, false, streamResult("[DONE]"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v: %s", err, buf.String())
	}
	if line["event"] != "invariant_violation" {
		t.Fatalf("missing event field: %s", buf.String())
	}
	if line["level"] != "error" {
		t.Fatalf("expected error level: %s", buf.String())
	}
	if line["requested_stream"] != false || line["engine_streamed"] != true {
		t.Fatalf("mismatch fields wrong: %s", buf.String())
	}
}
