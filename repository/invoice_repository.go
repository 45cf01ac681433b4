package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/jackc/pgx/v5"
)

// InvoiceRepository implements invoice and line item data access
type InvoiceRepository struct {
	q Queryable
}

// NewInvoiceRepository creates a new invoice repository outside a transaction
func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{q: db.Pool}
}

func newInvoiceRepository(tx Queryable) *InvoiceRepository {
	return &InvoiceRepository{q: tx}
}

// Create inserts an invoice with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entities.Invoice) error {
	query := `
		INSERT INTO invoices (draw_id, client_id, seller_id, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		invoice.DrawID,
		invoice.ClientID,
		invoice.SellerID,
		invoice.Total,
	).Scan(&invoice.ID, &invoice.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO ticket_line_items (invoice_id, number, kind, quantity, unit_price_cents, subtotal_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for _, item := range invoice.Items {
		item.InvoiceID = invoice.ID
		err := r.q.QueryRow(ctx, itemQuery,
			item.InvoiceID,
			item.Number,
			item.Kind,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create line item %s on invoice %d: %w", item.Number, invoice.ID, err)
		}
	}

	return nil
}

// GetByID retrieves an invoice with its line items
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entities.Invoice, error) {
	query := `
		SELECT id, draw_id, client_id, seller_id, total_cents, created_at
		FROM invoices
		WHERE id = $1
	`

	var invoice entities.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.DrawID,
		&invoice.ClientID,
		&invoice.SellerID,
		&invoice.Total,
		&invoice.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice by ID %d: %w", id, err)
	}

	itemQuery := `
		SELECT id, invoice_id, number, kind, quantity, unit_price_cents, subtotal_cents
		FROM ticket_line_items
		WHERE invoice_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items for invoice %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		item := entities.TicketLineItem{
			DrawID:   invoice.DrawID,
			ClientID: invoice.ClientID,
			SellerID: invoice.SellerID,
		}
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Number,
			&item.Kind,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		invoice.Items = append(invoice.Items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return &invoice, nil
}

// Delete removes an invoice; line items go with it
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("invoice with ID %d not found", id)
	}
	return nil
}
