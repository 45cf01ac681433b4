package services

import (
	"context"
	"fmt"
	"sort"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
)

// commissionService derives seller balances from invoices and winner records
type commissionService struct {
	drawRepo   interfaces.DrawRepository
	sellerRepo interfaces.SellerRepository
	reportRepo interfaces.ReportRepository
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	drawRepo interfaces.DrawRepository,
	sellerRepo interfaces.SellerRepository,
	reportRepo interfaces.ReportRepository,
) interfaces.CommissionService {
	return &commissionService{
		drawRepo:   drawRepo,
		sellerRepo: sellerRepo,
		reportRepo: reportRepo,
	}
}

// Report builds a row for every seller × draw in scope. Without a draw filter
// every finalized draw is included; a FinalizedOnly scope never sees an open draw.
func (s *commissionService) Report(ctx context.Context, scope entities.ReportScope, filter entities.ReportFilter) ([]*entities.CommissionReportRow, error) {
	draws, err := s.drawsInScope(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	sellers, err := s.sellersInScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(draws) == 0 || len(sellers) == 0 {
		return []*entities.CommissionReportRow{}, nil
	}

	drawIDs := make([]int64, 0, len(draws))
	for _, d := range draws {
		drawIDs = append(drawIDs, d.ID)
	}

	sales, err := s.reportRepo.SalesTotals(ctx, drawIDs, scope.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}
	winnings, err := s.reportRepo.WinningTotals(ctx, drawIDs, scope.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum winnings: %w", err)
	}
	salesByKey := indexTotals(sales)
	winningsByKey := indexTotals(winnings)

	sort.SliceStable(draws, func(i, j int) bool {
		if !draws[i].ScheduledAt.Equal(draws[j].ScheduledAt) {
			return draws[i].ScheduledAt.After(draws[j].ScheduledAt)
		}
		return draws[i].ID > draws[j].ID
	})
	sort.SliceStable(sellers, func(i, j int) bool {
		if sellers[i].Name != sellers[j].Name {
			return sellers[i].Name < sellers[j].Name
		}
		return sellers[i].ID < sellers[j].ID
	})

	rows := make([]*entities.CommissionReportRow, 0, len(draws)*len(sellers))
	for _, draw := range draws {
		for _, seller := range sellers {
			key := entities.SellerDrawKey{SellerID: seller.ID, DrawID: draw.ID}
			rows = append(rows, entities.NewCommissionReportRow(seller, draw, salesByKey[key], winningsByKey[key]))
		}
	}
	return rows, nil
}

func (s *commissionService) drawsInScope(ctx context.Context, scope entities.ReportScope, filter entities.ReportFilter) ([]*entities.Draw, error) {
	if filter.DrawID != nil {
		draw, err := s.drawRepo.GetByID(ctx, *filter.DrawID)
		if err != nil {
			return nil, fmt.Errorf("failed to get draw: %w", err)
		}
		if draw == nil || (scope.FinalizedOnly && !draw.IsFinalized()) {
			return nil, entities.ErrDrawNotFound
		}
		return []*entities.Draw{draw}, nil
	}

	draws, err := s.drawRepo.ListFinalized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized draws: %w", err)
	}
	return draws, nil
}

func (s *commissionService) sellersInScope(ctx context.Context, scope entities.ReportScope) ([]*entities.SellerAccount, error) {
	if scope.SellerID != nil {
		seller, err := s.sellerRepo.GetByID(ctx, *scope.SellerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get seller: %w", err)
		}
		if seller == nil {
			return nil, entities.ErrSellerNotFound
		}
		return []*entities.SellerAccount{seller}, nil
	}

	sellers, err := s.sellerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

func indexTotals(totals []*entities.SellerDrawTotal) map[entities.SellerDrawKey]entities.Cents {
	out := make(map[entities.SellerDrawKey]entities.Cents, len(totals))
	for _, t := range totals {
		out[entities.SellerDrawKey{SellerID: t.SellerID, DrawID: t.DrawID}] += t.Total
	}
	return out
}
