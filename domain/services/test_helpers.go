package services

import (
	"time"

	"raffler/domain/entities"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

// createTestDraw builds an open draw scheduled one hour from now
func createTestDraw(id int64, opts ...func(*entities.Draw)) *entities.Draw {
	draw := &entities.Draw{
		ID:          id,
		ScheduledAt: time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(draw)
	}
	return draw
}

func finalized(first, second, third string) func(*entities.Draw) {
	return func(d *entities.Draw) {
		d.Finalized = true
		d.FirstPrize = strPtr(first)
		d.SecondPrize = strPtr(second)
		d.ThirdPrize = strPtr(third)
		d.RuleSet = strPtr("cascade-v1")
	}
}

func scheduledAt(at time.Time) func(*entities.Draw) {
	return func(d *entities.Draw) {
		d.ScheduledAt = at
	}
}

func createTestTicket(id, sellerID int64, number string, qty int64) *entities.TicketLineItem {
	kind, _ := entities.KindForNumber(number)
	return &entities.TicketLineItem{
		ID:        id,
		InvoiceID: 100 + id,
		DrawID:    1,
		ClientID:  200 + sellerID,
		SellerID:  sellerID,
		Number:    number,
		Kind:      kind,
		Quantity:  qty,
		UnitPrice: kind.UnitPrice(),
		Subtotal:  kind.UnitPrice() * entities.Cents(qty),
	}
}
