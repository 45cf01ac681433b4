package sqlite

import (
	"context"
	"fmt"

	"raffler/domain/entities"

	"github.com/jmoiron/sqlx"
)

// ReportRepository aggregates sales and payouts per (seller, draw)
type ReportRepository struct {
	q Queryer
}

// NewReportRepository creates a report repository on a handle or transaction
func NewReportRepository(q Queryer) *ReportRepository {
	return &ReportRepository{q: q}
}

// SalesTotals sums invoice totals for the given draws
func (r *ReportRepository) SalesTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	query := `
		SELECT seller_id, draw_id, COALESCE(SUM(total_cents), 0) AS total_cents
		FROM invoices
		WHERE draw_id IN (?)
		  AND (? IS NULL OR seller_id = ?)
		GROUP BY seller_id, draw_id
	`
	return r.totals(ctx, "sales", query, drawIDs, sellerID)
}

// WinningTotals sums winner payouts for the given draws
func (r *ReportRepository) WinningTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	query := `
		SELECT seller_id, draw_id, COALESCE(SUM(total_payout_cents), 0) AS total_cents
		FROM winners
		WHERE draw_id IN (?)
		  AND (? IS NULL OR seller_id = ?)
		GROUP BY seller_id, draw_id
	`
	return r.totals(ctx, "winning", query, drawIDs, sellerID)
}

func (r *ReportRepository) totals(ctx context.Context, what, query string, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	if len(drawIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(query, drawIDs, sellerID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s query: %w", what, err)
	}

	var totals []*entities.SellerDrawTotal
	if err := r.q.SelectContext(ctx, &totals, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to sum %s totals: %w", what, err)
	}
	return totals, nil
}
