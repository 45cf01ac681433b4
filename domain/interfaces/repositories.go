package interfaces

import (
	"context"
	"time"

	"raffler/domain/entities"
	"raffler/events"
)

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// GetByID retrieves a draw by its ID; returns nil when not found
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw and locks its row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)

	// Create inserts a new draw and sets its ID and CreatedAt
	Create(ctx context.Context, draw *entities.Draw) error

	// Finalize stores the winning numbers, rule set and finalized flag in one statement
	Finalize(ctx context.Context, draw *entities.Draw) error

	// ListFinalized returns finalized draws, most recent first
	ListFinalized(ctx context.Context) ([]*entities.Draw, error)

	// ListPendingResults returns unfinalized draws scheduled at or before the given time
	ListPendingResults(ctx context.Context, before time.Time) ([]*entities.Draw, error)
}

// TicketRepository defines the interface for ticket line item reads
type TicketRepository interface {
	// GetByDraw returns every ticket line item sold for a draw, ordered by ID
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.TicketLineItem, error)
}

// WinnerRepository defines the interface for winner record data access
type WinnerRepository interface {
	// DeleteByDraw removes all winner records of a draw and returns the number removed
	DeleteByDraw(ctx context.Context, drawID int64) (int64, error)

	// CreateBatch inserts winner records
	CreateBatch(ctx context.Context, winners []*entities.WinnerRecord) error

	// GetByDraw returns the winners of a draw ordered by seller, client and ID.
	// A non-nil sellerID restricts the result to that seller.
	GetByDraw(ctx context.Context, drawID int64, sellerID *int64) ([]*entities.WinnerRecord, error)
}

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	// Create inserts an invoice with its line items and sets their IDs
	Create(ctx context.Context, invoice *entities.Invoice) error

	// GetByID retrieves an invoice with its line items; returns nil when not found
	GetByID(ctx context.Context, id int64) (*entities.Invoice, error)

	// Delete removes an invoice and its line items
	Delete(ctx context.Context, id int64) error
}

// SellerRepository defines the interface for seller account reads
type SellerRepository interface {
	// GetByID retrieves a seller; returns nil when not found
	GetByID(ctx context.Context, id int64) (*entities.SellerAccount, error)

	// List returns all sellers ordered by name
	List(ctx context.Context) ([]*entities.SellerAccount, error)
}

// ClientRepository defines the interface for client reads
type ClientRepository interface {
	// GetByID retrieves a client; returns nil when not found
	GetByID(ctx context.Context, id int64) (*entities.Client, error)
}

// ReportRepository aggregates sales and payouts per (seller, draw)
type ReportRepository interface {
	// SalesTotals sums invoice totals for the given draws, optionally restricted to one seller
	SalesTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error)

	// WinningTotals sums winner payouts for the given draws, optionally restricted to one seller
	WinningTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction finishes
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops pending events; called after rollback
	Discard()
}
