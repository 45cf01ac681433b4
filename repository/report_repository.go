package repository

import (
	"context"
	"fmt"

	"raffler/domain/entities"
)

// ReportRepository aggregates sales and payouts per (seller, draw)
type ReportRepository struct {
	q Queryable
}

func newReportRepository(tx Queryable) *ReportRepository {
	return &ReportRepository{q: tx}
}

// SalesTotals sums invoice totals for the given draws
func (r *ReportRepository) SalesTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	query := `
		SELECT seller_id, draw_id, COALESCE(SUM(total_cents), 0)::BIGINT
		FROM invoices
		WHERE draw_id = ANY($1)
		  AND ($2::BIGINT IS NULL OR seller_id = $2)
		GROUP BY seller_id, draw_id
	`
	return r.totals(ctx, "sales", query, drawIDs, sellerID)
}

// WinningTotals sums winner payouts for the given draws
func (r *ReportRepository) WinningTotals(ctx context.Context, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	query := `
		SELECT seller_id, draw_id, COALESCE(SUM(total_payout_cents), 0)::BIGINT
		FROM winners
		WHERE draw_id = ANY($1)
		  AND ($2::BIGINT IS NULL OR seller_id = $2)
		GROUP BY seller_id, draw_id
	`
	return r.totals(ctx, "winning", query, drawIDs, sellerID)
}

func (r *ReportRepository) totals(ctx context.Context, what, query string, drawIDs []int64, sellerID *int64) ([]*entities.SellerDrawTotal, error) {
	if len(drawIDs) == 0 {
		return nil, nil
	}

	rows, err := r.q.Query(ctx, query, drawIDs, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s totals: %w", what, err)
	}
	defer rows.Close()

	var totals []*entities.SellerDrawTotal
	for rows.Next() {
		var total entities.SellerDrawTotal
		if err := rows.Scan(&total.SellerID, &total.DrawID, &total.Total); err != nil {
			return nil, fmt.Errorf("failed to scan %s total: %w", what, err)
		}
		totals = append(totals, &total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s totals: %w", what, err)
	}
	return totals, nil
}
