package infrastructure

import (
	"raffler/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// Read-only commands use it where no event can be produced.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
