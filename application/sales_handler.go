package application

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/services"

	log "github.com/sirupsen/logrus"
)

// SalesHandler records and removes a seller's invoices
type SalesHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(uowFactory UnitOfWorkFactory) *SalesHandler {
	return &SalesHandler{uowFactory: uowFactory}
}

// RecordSale stores a new invoice on behalf of the calling seller
func (h *SalesHandler) RecordSale(ctx context.Context, caller entities.Caller, drawID, clientID int64, lines []entities.SaleLine) (*entities.Invoice, error) {
	if !caller.Can(entities.CapRecordSales) {
		return nil, entities.ErrForbidden
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	invoice, err := h.salesService(uow).RecordSale(ctx, interfaces.SaleRequest{
		DrawID:   drawID,
		ClientID: clientID,
		SellerID: caller.SellerID,
		Lines:    lines,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"invoice_id": invoice.ID,
		"draw_id":    invoice.DrawID,
		"seller_id":  invoice.SellerID,
		"items":      len(invoice.Items),
		"total":      invoice.Total.String(),
	}).Info("Sale recorded")

	return invoice, nil
}

// DeleteSale removes one of the calling seller's invoices
func (h *SalesHandler) DeleteSale(ctx context.Context, caller entities.Caller, invoiceID int64) error {
	if !caller.Can(entities.CapRecordSales) {
		return entities.ErrForbidden
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := h.salesService(uow).DeleteSale(ctx, invoiceID, caller.SellerID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"invoice_id": invoiceID,
		"seller_id":  caller.SellerID,
	}).Info("Sale deleted")
	return nil
}

func (h *SalesHandler) salesService(uow UnitOfWork) interfaces.SalesService {
	return services.NewSalesService(
		uow.DrawRepository(),
		uow.ClientRepository(),
		uow.InvoiceRepository(),
		uow.EventBus(),
	)
}
