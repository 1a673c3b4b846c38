package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// DomainError carries an engine-declared rejection: the status code and body
// the engine reported, to be passed through to the caller verbatim.
type DomainError struct {
	Status int
	Body   []byte
}

// Result is the tagged outcome of one invocation. Exactly one of Response,
// Stream or Err is set.
type Result struct {
	// Response is the complete buffered completion body.
	Response json.RawMessage
	// Stream yields incremental chunks in engine emission order.
	Stream *Stream
	// Err is a domain error to pass through unmodified.
	Err *DomainError
}

// Stream is a lazy sequence of server-sent event payloads produced by the
// engine. Recv returns payloads in emission order, including the terminal
// "[DONE]" sentinel, and io.EOF once the engine closes the stream.
type Stream struct {
	body io.ReadCloser
	r    *bufio.Reader
}

// NewStream wraps a server-sent event body. Backend implementations and
// tests use it to build streamed results.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, r: bufio.NewReader(body)}
}

// Recv returns the next event payload. Non-data lines (comments, heartbeats)
// are skipped; the payload is the raw bytes following the "data:" prefix.
func (s *Stream) Recv() ([]byte, error) {
	for {
		line, err := s.r.ReadString('\n')
		if len(line) > 0 {
			l := strings.TrimSpace(line)
			if l != "" && strings.HasPrefix(strings.ToLower(l), "data:") {
				return []byte(strings.TrimSpace(l[len("data:"):])), nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

// Close releases the underlying connection. Safe to call after EOF.
func (s *Stream) Close() error { return s.body.Close() }
