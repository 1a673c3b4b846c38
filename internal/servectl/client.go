package servectl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

func httpClient(cfg *Config) *http.Client {
	c := &http.Client{}
	if cfg.TimeoutSec > 0 {
		c.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	return c
}

// getBody fetches a path and returns the body of a 200 response.
func getBody(cfg *Config, path string) ([]byte, error) {
	resp, err := httpClient(cfg).Get(cfg.Addr + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("GET %s: %d: %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}

// getJSON fetches a path and decodes its 200 response into v.
func getJSON(cfg *Config, path string, v any) error {
	body, err := getBody(cfg, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// postInvocations submits one completion payload. The caller owns the
// response body; with TimeoutSec 0 a stream can run as long as the engine
// keeps producing.
func postInvocations(cfg *Config, payload []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, cfg.Addr+"/invocations", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return httpClient(cfg).Do(req)
}
