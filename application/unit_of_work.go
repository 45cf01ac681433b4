package application

import (
	"context"

	"raffler/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a read-write transaction
	Begin(ctx context.Context) error

	// BeginSnapshot starts a read-only transaction whose reads all see one snapshot
	BeginSnapshot(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	DrawRepository() interfaces.DrawRepository
	TicketRepository() interfaces.TicketRepository
	WinnerRepository() interfaces.WinnerRepository
	InvoiceRepository() interfaces.InvoiceRepository
	SellerRepository() interfaces.SellerRepository
	ClientRepository() interfaces.ClientRepository
	ReportRepository() interfaces.ReportRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
