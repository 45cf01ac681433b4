package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"raffler/database"
	"raffler/domain/entities"

	"github.com/stretchr/testify/require"
)

// setupTestDatabase opens a migrated database file that lives for the test
func setupTestDatabase(t *testing.T) *database.SQLiteDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raffler.db")
	require.NoError(t, database.MigrateUp(database.MigrationTarget{Driver: "sqlite", URL: path}))

	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createSeller(t *testing.T, db *database.SQLiteDB, name string, bps *int64) *entities.SellerAccount {
	t.Helper()
	result, err := db.Exec(`INSERT INTO sellers (name, commission_bps) VALUES (?, ?)`, name, bps)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return &entities.SellerAccount{ID: id, Name: name, CommissionBasisPoints: bps}
}

func createClient(t *testing.T, db *database.SQLiteDB, sellerID int64, name string) *entities.Client {
	t.Helper()
	result, err := db.Exec(`INSERT INTO clients (seller_id, name) VALUES (?, ?)`, sellerID, name)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return &entities.Client{ID: id, SellerID: sellerID, Name: name}
}

func createDraw(t *testing.T, db *database.SQLiteDB, scheduledAt time.Time) *entities.Draw {
	t.Helper()
	draw := &entities.Draw{ScheduledAt: scheduledAt}
	require.NoError(t, NewDrawRepository(db).Create(context.Background(), draw))
	return draw
}

func createInvoice(t *testing.T, db *database.SQLiteDB, drawID int64, client *entities.Client, lines ...entities.SaleLine) *entities.Invoice {
	t.Helper()
	invoice, err := entities.NewInvoice(drawID, client.ID, client.SellerID, lines)
	require.NoError(t, err)
	require.NoError(t, NewInvoiceRepository(db).Create(context.Background(), invoice))
	return invoice
}

func line(number string, quantity int64) entities.SaleLine {
	return entities.SaleLine{Number: number, Quantity: quantity}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func newWinner(t *testing.T, drawID int64, ticket *entities.TicketLineItem, tier string, unit entities.Cents) *entities.WinnerRecord {
	t.Helper()
	winner, err := entities.NewWinnerRecord(drawID, ticket, tier, 1, unit, "cascade-v1")
	require.NoError(t, err)
	return winner
}
