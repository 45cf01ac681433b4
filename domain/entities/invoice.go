package entities

import (
	"fmt"
	"time"
)

// Invoice groups the ticket line items of one sale
type Invoice struct {
	ID        int64             `db:"id"`
	DrawID    int64             `db:"draw_id"`
	ClientID  int64             `db:"client_id"`
	SellerID  int64             `db:"seller_id"`
	Total     Cents             `db:"total_cents"`
	CreatedAt time.Time         `db:"created_at"`
	Items     []*TicketLineItem `db:"-"`
}

// SaleLine is a requested number and quantity on a new sale
type SaleLine struct {
	Number   string `json:"number"`
	Quantity int64  `json:"quantity"`
}

// NewInvoice validates sale lines and prices them into an invoice
func NewInvoice(drawID, clientID, sellerID int64, lines []SaleLine) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, newTicketError("items", "at least one item is required")
	}

	invoice := &Invoice{
		DrawID:   drawID,
		ClientID: clientID,
		SellerID: sellerID,
		Items:    make([]*TicketLineItem, 0, len(lines)),
	}
	for i, line := range lines {
		kind, err := KindForNumber(line.Number)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := validateQuantity(line.Quantity); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		unit := kind.UnitPrice()
		subtotal, err := unit.Times(line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		total, err := invoice.Total.Plus(subtotal)
		if err != nil {
			return nil, fmt.Errorf("invoice total: %w", err)
		}
		item := &TicketLineItem{
			DrawID:    drawID,
			ClientID:  clientID,
			SellerID:  sellerID,
			Number:    line.Number,
			Kind:      kind,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		}
		invoice.Items = append(invoice.Items, item)
		invoice.Total = total
	}

	return invoice, nil
}
