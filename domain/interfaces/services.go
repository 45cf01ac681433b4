package interfaces

import (
	"context"
	"time"

	"raffler/domain/entities"
)

// SettleOptions controls a settlement run
type SettleOptions struct {
	// Recompute allows re-settling a draw that is already finalized
	Recompute bool
}

// SettlementResult describes a committed settlement
type SettlementResult struct {
	DrawID      int64
	RuleSet     string
	Winners     []*entities.WinnerRecord
	TotalPayout entities.Cents
	Recomputed  bool
	// Replaced is the number of winner records removed before writing the new set
	Replaced int64
}

// WinnersWritten returns the number of winner records written
func (r *SettlementResult) WinnersWritten() int {
	return len(r.Winners)
}

// SettlementService settles draws: classify tickets, replace winners, finalize
type SettlementService interface {
	// Settle validates the winning numbers, classifies the draw's tickets and
	// replaces its winner records. The caller owns the transaction.
	Settle(ctx context.Context, drawID int64, numbers entities.WinningNumbers, opts SettleOptions) (*SettlementResult, error)
}

// CommissionService builds seller balance reports
type CommissionService interface {
	// Report returns one row per (seller, draw) in scope, zero rows included,
	// ordered by draw time descending then seller name
	Report(ctx context.Context, scope entities.ReportScope, filter entities.ReportFilter) ([]*entities.CommissionReportRow, error)
}

// SaleRequest is a new invoice submitted by a seller
type SaleRequest struct {
	DrawID   int64
	ClientID int64
	SellerID int64
	Lines    []entities.SaleLine
}

// SalesService records and removes sales while a draw is open
type SalesService interface {
	RecordSale(ctx context.Context, req SaleRequest) (*entities.Invoice, error)
	DeleteSale(ctx context.Context, invoiceID, sellerID int64) error
}

// DrawLocker serializes work on a single draw across goroutines or instances
type DrawLocker interface {
	// Lock blocks until the draw lock is held or ctx is done. The returned
	// function releases it. entities.ErrSettlementInProgress is returned when
	// the lock cannot be acquired before the wait deadline.
	Lock(ctx context.Context, drawID int64) (unlock func(), err error)
}

// Clock returns the current time
type Clock func() time.Time
