package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionReportRow is the derived balance of one seller on one draw
type CommissionReportRow struct {
	SellerID          int64           `json:"seller_id"`
	SellerName        string          `json:"seller_name"`
	DrawID            int64           `json:"draw_id"`
	DrawScheduledAt   time.Time       `json:"draw_scheduled_at"`
	DrawFinalized     bool            `json:"draw_finalized"`
	GrossSales        Cents           `json:"gross_sales"`
	TotalWinnings     Cents           `json:"total_winnings"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  Cents           `json:"commission_amount"`
	Balance           Cents           `json:"balance"`
	// CommissionMissing is set when the seller has no percentage on file and 0% was applied
	CommissionMissing bool `json:"commission_missing"`
}

// ReportScope selects the sellers included in a commission report
type ReportScope struct {
	SellerID *int64 // nil for all sellers
	// FinalizedOnly hides draws without results, even when named by the filter
	FinalizedOnly bool
}

// AllSellers returns the admin-wide scope
func AllSellers() ReportScope {
	return ReportScope{}
}

// SingleSeller returns a scope restricted to one seller
func SingleSeller(sellerID int64) ReportScope {
	return ReportScope{SellerID: &sellerID}
}

// OwnSeller returns the scope of a seller reading their own report
func OwnSeller(sellerID int64) ReportScope {
	return ReportScope{SellerID: &sellerID, FinalizedOnly: true}
}

// ReportFilter narrows the draws included in a commission report
type ReportFilter struct {
	DrawID *int64 // nil for every finalized draw
}

// SellerDrawTotal is an aggregated amount for a (seller, draw) pair
type SellerDrawTotal struct {
	SellerID int64 `db:"seller_id"`
	DrawID   int64 `db:"draw_id"`
	Total    Cents `db:"total_cents"`
}

// SellerDrawKey identifies a (seller, draw) pair
type SellerDrawKey struct {
	SellerID int64
	DrawID   int64
}

// NewCommissionReportRow derives the commission and balance of a seller on a draw.
// A seller without a percentage on file is charged 0% and flagged.
func NewCommissionReportRow(seller *SellerAccount, draw *Draw, gross, winnings Cents) *CommissionReportRow {
	pct, ok := seller.CommissionPercent()
	commission := CentsFromDecimal(gross.Decimal().Mul(pct).Div(decimal.NewFromInt(100)))

	return &CommissionReportRow{
		SellerID:          seller.ID,
		SellerName:        seller.Name,
		DrawID:            draw.ID,
		DrawScheduledAt:   draw.ScheduledAt,
		DrawFinalized:     draw.IsFinalized(),
		GrossSales:        gross,
		TotalWinnings:     winnings,
		CommissionPercent: pct,
		CommissionAmount:  commission,
		Balance:           gross - commission - winnings,
		CommissionMissing: !ok,
	}
}
