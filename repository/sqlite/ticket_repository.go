package sqlite

import (
	"context"
	"fmt"

	"raffler/domain/entities"
)

// TicketRepository reads ticket line items with their invoice ownership
type TicketRepository struct {
	q Queryer
}

// NewTicketRepository creates a ticket repository on a handle or transaction
func NewTicketRepository(q Queryer) *TicketRepository {
	return &TicketRepository{q: q}
}

// GetByDraw returns every ticket line item sold for a draw, ordered by ID
func (r *TicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.TicketLineItem, error) {
	query := `
		SELECT t.id, t.invoice_id, i.draw_id, i.client_id, i.seller_id,
		       t.number, t.kind, t.quantity, t.unit_price_cents, t.subtotal_cents
		FROM ticket_line_items t
		JOIN invoices i ON i.id = t.invoice_id
		WHERE i.draw_id = ?
		ORDER BY t.id ASC
	`

	var tickets []*entities.TicketLineItem
	if err := r.q.SelectContext(ctx, &tickets, query, drawID); err != nil {
		return nil, fmt.Errorf("failed to get tickets for draw %d: %w", drawID, err)
	}
	return tickets, nil
}
