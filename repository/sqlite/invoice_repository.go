package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"raffler/domain/entities"
)

// InvoiceRepository implements invoice and line item data access
type InvoiceRepository struct {
	q Queryer
}

// NewInvoiceRepository creates an invoice repository on a handle or transaction
func NewInvoiceRepository(q Queryer) *InvoiceRepository {
	return &InvoiceRepository{q: q}
}

// Create inserts an invoice with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entities.Invoice) error {
	createdAt := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO invoices (draw_id, client_id, seller_id, total_cents, created_at) VALUES (?, ?, ?, ?, ?)`,
		invoice.DrawID, invoice.ClientID, invoice.SellerID, invoice.Total, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	if invoice.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read invoice ID: %w", err)
	}
	invoice.CreatedAt = createdAt

	itemQuery := `
		INSERT INTO ticket_line_items (invoice_id, number, kind, quantity, unit_price_cents, subtotal_cents)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, item := range invoice.Items {
		item.InvoiceID = invoice.ID
		result, err := r.q.ExecContext(ctx, itemQuery,
			item.InvoiceID, item.Number, item.Kind, item.Quantity, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to create line item %s on invoice %d: %w", item.Number, invoice.ID, err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read line item ID: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an invoice with its line items
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entities.Invoice, error) {
	var invoice entities.Invoice
	err := r.q.GetContext(ctx, &invoice,
		`SELECT id, draw_id, client_id, seller_id, total_cents, created_at FROM invoices WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice by ID %d: %w", id, err)
	}

	query := `
		SELECT t.id, t.invoice_id, i.draw_id, i.client_id, i.seller_id,
		       t.number, t.kind, t.quantity, t.unit_price_cents, t.subtotal_cents
		FROM ticket_line_items t
		JOIN invoices i ON i.id = t.invoice_id
		WHERE t.invoice_id = ?
		ORDER BY t.id ASC
	`
	if err := r.q.SelectContext(ctx, &invoice.Items, query, id); err != nil {
		return nil, fmt.Errorf("failed to get line items for invoice %d: %w", id, err)
	}
	return &invoice, nil
}

// Delete removes an invoice; line items go with it
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice with ID %d not found", id)
	}
	return nil
}
