package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"
)

// TicketRepository reads ticket line items together with their invoice ownership
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository outside a transaction
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

func newTicketRepository(tx Queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// GetByDraw returns every ticket line item sold for a draw, ordered by ID
func (r *TicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.TicketLineItem, error) {
	query := `
		SELECT t.id, t.invoice_id, i.draw_id, i.client_id, i.seller_id,
		       t.number, t.kind, t.quantity, t.unit_price_cents, t.subtotal_cents
		FROM ticket_line_items t
		JOIN invoices i ON i.id = t.invoice_id
		WHERE i.draw_id = $1
		ORDER BY t.id ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var tickets []*entities.TicketLineItem
	for rows.Next() {
		var ticket entities.TicketLineItem
		err := rows.Scan(
			&ticket.ID,
			&ticket.InvoiceID,
			&ticket.DrawID,
			&ticket.ClientID,
			&ticket.SellerID,
			&ticket.Number,
			&ticket.Kind,
			&ticket.Quantity,
			&ticket.UnitPrice,
			&ticket.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket line item: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket line items: %w", err)
	}
	return tickets, nil
}
