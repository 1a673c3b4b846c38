// Package engine owns the connection between the daemon and the inference
// engine. It is structured into small files by concern:
//
//   - engine.go: Handle type, runtime mode selection, readiness wait.
//   - config.go: Config and package defaults; withDefaults applies them.
//   - backend.go: the Backend interface every runtime mode implements.
//   - client.go: HTTP backend for attach and spawn modes.
//   - runtime.go: spawned runtime supervision (argv, stderr tail, stop).
//   - result.go: the Result shape of one invocation and the Stream reader.
//   - errors.go: error types and helpers (IsUnavailable).
//   - events.go: lifecycle event publishing.
//   - status.go: live Status reporting for the operational endpoint.
//   - sanity.go: side-effect-free preflight checks over a Config.
//
// Build tags and runtimes:
//
//   - In-process llama:
//     Uses go-llama.cpp bindings. Enabled with `-tags=llama`.
//     Files: local_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: local_stub.go.
//
// A Handle is constructed once at startup and is safe for concurrent use.
// External packages should rely on public methods only (New, ChatCompletion,
// ServedModels, Status, Close). Internal types are subject to change.
package engine
