//go:build !llama

package engine

// This file provides a no-CGO stub for the in-process backend. It is
// compiled when the 'llama' build tag is NOT set, keeping default builds and
// CI CGO-free. The real backend lives in local_llama.go (tagged 'llama').

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

func newLocalBackend(cfg Config) (Backend, error) {
	// Fail fast: no runtime URL, no runtime binary, and no in-process
	// support in this build. There is nothing to serve from.
	return nil, ErrUnavailable("no engine runtime configured and local support not built (missing 'llama' build tag)")
}
