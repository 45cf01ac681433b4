package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDrawSettled  EventType = "draw_settled"
	EventTypeSaleRecorded EventType = "sale_recorded"
	EventTypeSaleDeleted  EventType = "sale_deleted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DrawSettledEvent is published after a draw's winners are committed
type DrawSettledEvent struct {
	DrawID      int64     `json:"draw_id"`
	FirstPrize  string    `json:"first_prize"`
	SecondPrize string    `json:"second_prize"`
	ThirdPrize  string    `json:"third_prize"`
	RuleSet     string    `json:"rule_set"`
	WinnerCount int       `json:"winner_count"`
	TotalPayout int64     `json:"total_payout_cents"`
	Recomputed  bool      `json:"recomputed"`
	SettledAt   time.Time `json:"settled_at"`
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// SaleRecordedEvent is published after an invoice is stored
type SaleRecordedEvent struct {
	InvoiceID int64 `json:"invoice_id"`
	DrawID    int64 `json:"draw_id"`
	ClientID  int64 `json:"client_id"`
	SellerID  int64 `json:"seller_id"`
	Total     int64 `json:"total_cents"`
	Items     int   `json:"items"`
}

func (e SaleRecordedEvent) Type() EventType {
	return EventTypeSaleRecorded
}

// SaleDeletedEvent is published after an invoice is removed before its draw
type SaleDeletedEvent struct {
	InvoiceID int64 `json:"invoice_id"`
	DrawID    int64 `json:"draw_id"`
	SellerID  int64 `json:"seller_id"`
}

func (e SaleDeletedEvent) Type() EventType {
	return EventTypeSaleDeleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus dispatches events to in-process subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish emits the event in the background; it never fails
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Emit calls every handler registered for the event type, each in its own goroutine
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
