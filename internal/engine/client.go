package engine

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an engine error body is retained for
// verbatim passthrough.
const maxErrorBody = 1 << 20

// httpBackend talks to a running OpenAI-compatible engine runtime over HTTP.
type httpBackend struct {
	baseURL    string
	httpClient *http.Client
}

// newHTTPBackend constructs a runtime-backed client for baseURL.
func newHTTPBackend(baseURL string, connectTimeout time.Duration) *httpBackend {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: generation calls are long-running and deadlines, when
	// any, come from the caller's context.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &httpBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: cli,
	}
}

func (b *httpBackend) ChatCompletion(ctx context.Context, payload []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Result{Err: &DomainError{Status: resp.StatusCode, Body: body}}, nil
	}
	// The runtime marks streamed responses by media type; buffered bodies
	// come back as plain JSON.
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "text/event-stream") {
		return &Result{Stream: NewStream(resp.Body)}, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return &Result{Response: body}, nil
}

// Healthy checks whether the runtime responds OK to /v1/models.
func (b *httpBackend) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (b *httpBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

// URL returns the runtime base URL.
func (b *httpBackend) URL() string { return b.baseURL }
