package entities

import "github.com/shopspring/decimal"

// SellerAccount holds the commission terms of a seller
type SellerAccount struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	// CommissionBasisPoints is the commission percentage × 100 (1000 = 10%); NULL when not on file
	CommissionBasisPoints *int64 `db:"commission_bps"`
}

// CommissionPercent returns the commission percentage; ok is false when none is on file
func (s *SellerAccount) CommissionPercent() (decimal.Decimal, bool) {
	if s.CommissionBasisPoints == nil {
		return decimal.Zero, false
	}
	return decimal.New(*s.CommissionBasisPoints, -2), true
}
