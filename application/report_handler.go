package application

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/services"

	log "github.com/sirupsen/logrus"
)

// ReportHandler serves commission reports and winner listings scoped to the caller
type ReportHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewReportHandler creates a new report handler
func NewReportHandler(uowFactory UnitOfWorkFactory) *ReportHandler {
	return &ReportHandler{uowFactory: uowFactory}
}

// CommissionReport builds the balance report visible to the caller.
// Admins see every seller unless sellerID narrows it; sellers only ever see themselves.
func (h *ReportHandler) CommissionReport(ctx context.Context, caller entities.Caller, sellerID, drawID *int64) ([]*entities.CommissionReportRow, error) {
	scope, err := caller.ReportScope(sellerID)
	if err != nil {
		return nil, err
	}

	fields := log.Fields{"caller": caller.Subject}
	if scope.SellerID != nil {
		fields["seller_id"] = *scope.SellerID
	}
	if drawID != nil {
		fields["draw_id"] = *drawID
	}
	log.WithFields(fields).Debug("Building commission report")

	uow := h.uowFactory.Create()
	if err := uow.BeginSnapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	commissionService := services.NewCommissionService(
		uow.DrawRepository(),
		uow.SellerRepository(),
		uow.ReportRepository(),
	)

	return commissionService.Report(ctx, scope, entities.ReportFilter{DrawID: drawID})
}

// Winners lists the winner records of a draw visible to the caller
func (h *ReportHandler) Winners(ctx context.Context, caller entities.Caller, drawID int64) ([]*entities.WinnerRecord, error) {
	var sellerID *int64
	switch {
	case caller.Can(entities.CapViewAllWinners):
	case caller.Can(entities.CapViewOwnWinners):
		own := caller.SellerID
		sellerID = &own
	default:
		return nil, entities.ErrForbidden
	}

	uow := h.uowFactory.Create()
	if err := uow.BeginSnapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, entities.ErrDrawNotFound
	}

	winners, err := uow.WinnerRepository().GetByDraw(ctx, drawID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners: %w", err)
	}
	return winners, nil
}
