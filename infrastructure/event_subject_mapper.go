package infrastructure

import (
	"fmt"

	"raffler/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDrawSettled:
		return "raffle.draw.settled"
	case events.EventTypeSaleRecorded:
		return "raffle.sale.recorded"
	case events.EventTypeSaleDeleted:
		return "raffle.sale.deleted"
	default:
		return fmt.Sprintf("raffle.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"raffle.draw.settled",
		"raffle.sale.recorded",
		"raffle.sale.deleted",
		"raffle.unknown.>",
	}
}
