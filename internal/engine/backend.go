package engine

import "context"

// Backend abstracts the engine runtime behind the handle. Implementations
// translate one chat-completion payload into a tagged Result.
type Backend interface {
	// ChatCompletion forwards a raw chat-completion payload to the runtime.
	// The payload is passed through unmodified so engine-side validation
	// sees exactly what the caller sent.
	ChatCompletion(ctx context.Context, payload []byte) (*Result, error)
	// Healthy reports whether the runtime answers its model-listing probe.
	Healthy(ctx context.Context) bool
	// Close releases the runtime connection.
	Close() error
}
