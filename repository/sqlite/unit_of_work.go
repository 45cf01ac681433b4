package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"raffler/application"
	"raffler/database"
	"raffler/domain/interfaces"

	"github.com/jmoiron/sqlx"
)

// unitOfWork implements the UnitOfWork interface on SQLite
type unitOfWork struct {
	db                     *database.SQLiteDB
	tx                     *sqlx.Tx
	transactionalPublisher interfaces.TransactionalEventPublisher
	ctx                    context.Context
	drawRepo               interfaces.DrawRepository
	ticketRepo             interfaces.TicketRepository
	winnerRepo             interfaces.WinnerRepository
	invoiceRepo            interfaces.InvoiceRepository
	sellerRepo             interfaces.SellerRepository
	clientRepo             interfaces.ClientRepository
	reportRepo             interfaces.ReportRepository
}

// UnitOfWorkFactory creates SQLite units of work
type UnitOfWorkFactory struct {
	db *database.SQLiteDB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.SQLiteDB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a write transaction. The connection opens transactions with
// BEGIN IMMEDIATE, so the write lock is taken up front.
func (u *unitOfWork) Begin(ctx context.Context) error {
	return u.begin(ctx, nil)
}

// BeginSnapshot starts a deferred read transaction; all reads see one snapshot
func (u *unitOfWork) BeginSnapshot(ctx context.Context) error {
	return u.begin(ctx, &sql.TxOptions{ReadOnly: true})
}

func (u *unitOfWork) begin(ctx context.Context, opts *sql.TxOptions) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.drawRepo = NewDrawRepository(tx)
	u.ticketRepo = NewTicketRepository(tx)
	u.winnerRepo = NewWinnerRepository(tx)
	u.invoiceRepo = NewInvoiceRepository(tx)
	u.sellerRepo = NewSellerRepository(tx)
	u.clientRepo = NewClientRepository(tx)
	u.reportRepo = NewReportRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	if u.drawRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRepo
}

func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

func (u *unitOfWork) WinnerRepository() interfaces.WinnerRepository {
	if u.winnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.winnerRepo
}

func (u *unitOfWork) InvoiceRepository() interfaces.InvoiceRepository {
	if u.invoiceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.invoiceRepo
}

func (u *unitOfWork) SellerRepository() interfaces.SellerRepository {
	if u.sellerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sellerRepo
}

func (u *unitOfWork) ClientRepository() interfaces.ClientRepository {
	if u.clientRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.clientRepo
}

func (u *unitOfWork) ReportRepository() interfaces.ReportRepository {
	if u.reportRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.reportRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
