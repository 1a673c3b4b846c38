package httpapi

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"servingd/internal/engine"
)

func streamResult(frames ...string) *engine.Result {
	var sb strings.Builder
	for _, f := range frames {
		sb.WriteString("data: ")
		sb.WriteString(f)
		sb.WriteString("\n\n")
	}
	return &engine.Result{Stream: engine.NewStream(io.NopCloser(strings.NewReader(sb.String())))}
}

func TestInvocationStreamRelaysChunksInOrder(t *testing.T) {
	svc := &mockService{result: streamResult(`{"n":1}`, `{"n":2}`, `{"n":3}`, "[DONE]")}
	r := NewMux(svc)
	w := postInvocation(t, r, `{"model":"m","messages":[],"stream":true}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") { t.Fatalf("content-type=%s", ct) }
	want := "data: {\"n\":1}\n\ndata: {\"n\":2}\n\ndata: {\"n\":3}\n\ndata: [DONE]\n\n"
	if w.Body.String() != want {
		t.Fatalf("frames mismatch:\n got %q\nwant %q", w.Body.String(), want)
	}
	if !w.Flushed { t.Fatalf("expected response to be flushed per chunk") }
}

func TestInvocationStreamEmitsDoneSentinel(t *testing.T) {
	svc := &mockService{result: streamResult(`{"delta":"x"}`, "[DONE]")}
	r := NewMux(svc)
	w := postInvocation(t, r, `{"model":"m","messages":[],"stream":true}`)
	if !strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n") {
		t.Fatalf("missing done sentinel: %q", w.Body.String())
	}
}

func TestInvocationInvariantViolationEngineStreamed(t *testing.T) {
	// Caller asked for a buffered answer; engine streamed anyway.
	svc := &mockService{result: streamResult(`{"n":1}`, "[DONE]")}
	r := NewMux(svc)
	w := postInvocation(t, r, `{"model":"m","messages":[],"stream":false}`)
	if w.Code != http.StatusInternalServerError { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	if !strings.Contains(w.Body.String(), "internal server error") { t.Fatalf("body=%s", w.Body.String()) }
}

func TestInvocationInvariantViolationEngineBuffered(t *testing.T) {
	// Caller asked for a stream; engine answered with a buffered body.
	svc := &mockService{result: bufferedResult(`{"id":"chatcmpl-1"}`)}
	r := NewMux(svc)
	w := postInvocation(t, r, `{"model":"m","messages":[],"stream":true}`)
	if w.Code != http.StatusInternalServerError { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
}

func TestInvocationStreamFlagDefaultsToBuffered(t *testing.T) {
	svc := &mockService{result: bufferedResult(`{"id":"chatcmpl-1"}`)}
	r := NewMux(svc)
	w := postInvocation(t, r, `{"model":"m","messages":[]}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") { t.Fatalf("content-type=%s", ct) }
}
