package testutil

import (
	"context"
	"testing"
	"time"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// CreateTestSeller inserts a seller; a nil bps leaves the commission unset
func CreateTestSeller(t *testing.T, db *database.DB, name string, bps *int64) *entities.SellerAccount {
	t.Helper()
	seller := &entities.SellerAccount{Name: name, CommissionBasisPoints: bps}
	err := db.QueryRow(context.Background(),
		`INSERT INTO sellers (name, commission_bps) VALUES ($1, $2) RETURNING id`,
		name, bps,
	).Scan(&seller.ID)
	require.NoError(t, err)
	return seller
}

// CreateTestClient inserts a client owned by the seller
func CreateTestClient(t *testing.T, db *database.DB, sellerID int64, name string) *entities.Client {
	t.Helper()
	client := &entities.Client{SellerID: sellerID, Name: name}
	err := db.QueryRow(context.Background(),
		`INSERT INTO clients (seller_id, name) VALUES ($1, $2) RETURNING id`,
		sellerID, name,
	).Scan(&client.ID)
	require.NoError(t, err)
	return client
}

// CreateTestDraw inserts an open draw
func CreateTestDraw(t *testing.T, db *database.DB, scheduledAt time.Time) *entities.Draw {
	t.Helper()
	draw := &entities.Draw{ScheduledAt: scheduledAt.UTC()}
	err := db.QueryRow(context.Background(),
		`INSERT INTO draws (scheduled_at) VALUES ($1) RETURNING id, created_at`,
		draw.ScheduledAt,
	).Scan(&draw.ID, &draw.CreatedAt)
	require.NoError(t, err)
	return draw
}

// CreateTestInvoice inserts an invoice priced from the given lines
func CreateTestInvoice(t *testing.T, db *database.DB, drawID int64, client *entities.Client, lines ...entities.SaleLine) *entities.Invoice {
	t.Helper()
	invoice, err := entities.NewInvoice(drawID, client.ID, client.SellerID, lines)
	require.NoError(t, err)

	err = db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		if err := tx.QueryRow(context.Background(),
			`INSERT INTO invoices (draw_id, client_id, seller_id, total_cents) VALUES ($1, $2, $3, $4) RETURNING id`,
			invoice.DrawID, invoice.ClientID, invoice.SellerID, invoice.Total,
		).Scan(&invoice.ID); err != nil {
			return err
		}
		for _, item := range invoice.Items {
			item.InvoiceID = invoice.ID
			if err := tx.QueryRow(context.Background(),
				`INSERT INTO ticket_line_items (invoice_id, number, kind, quantity, unit_price_cents, subtotal_cents)
				 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				item.InvoiceID, item.Number, item.Kind, item.Quantity, item.UnitPrice, item.Subtotal,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return invoice
}

// Line is shorthand for a sale line
func Line(number string, quantity int64) entities.SaleLine {
	return entities.SaleLine{Number: number, Quantity: quantity}
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
