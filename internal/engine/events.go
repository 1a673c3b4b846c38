package engine

import "github.com/rs/zerolog"

// Event represents an engine lifecycle event.
// Minimal and stable: name + model id and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events from the engine. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher forwards events to a structured logger.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Info().Str("event", e.Name).Str("model", e.Model)
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("engine event")
}
