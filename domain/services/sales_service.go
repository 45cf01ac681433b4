package services

import (
	"context"
	"fmt"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/events"

	log "github.com/sirupsen/logrus"
)

// salesService records invoices while their draw is open
type salesService struct {
	drawRepo       interfaces.DrawRepository
	clientRepo     interfaces.ClientRepository
	invoiceRepo    interfaces.InvoiceRepository
	eventPublisher interfaces.EventPublisher
	now            interfaces.Clock
}

// NewSalesService creates a new sales service
func NewSalesService(
	drawRepo interfaces.DrawRepository,
	clientRepo interfaces.ClientRepository,
	invoiceRepo interfaces.InvoiceRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.SalesService {
	return &salesService{
		drawRepo:       drawRepo,
		clientRepo:     clientRepo,
		invoiceRepo:    invoiceRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// RecordSale prices and stores an invoice for one of the seller's clients
func (s *salesService) RecordSale(ctx context.Context, req interfaces.SaleRequest) (*entities.Invoice, error) {
	invoice, err := entities.NewInvoice(req.DrawID, req.ClientID, req.SellerID, req.Lines)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, entities.ErrClientNotFound
	}
	if client.SellerID != req.SellerID {
		return nil, entities.ErrForbidden
	}

	if _, err := s.openDraw(ctx, req.DrawID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SaleRecordedEvent{
		InvoiceID: invoice.ID,
		DrawID:    invoice.DrawID,
		ClientID:  invoice.ClientID,
		SellerID:  invoice.SellerID,
		Total:     int64(invoice.Total),
		Items:     len(invoice.Items),
	}); err != nil {
		log.WithError(err).WithField("invoice_id", invoice.ID).Warn("failed to queue sale recorded event")
	}

	return invoice, nil
}

// DeleteSale removes one of the seller's invoices while its draw is open
func (s *salesService) DeleteSale(ctx context.Context, invoiceID, sellerID int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice == nil {
		return entities.ErrInvoiceNotFound
	}
	if invoice.SellerID != sellerID {
		return entities.ErrForbidden
	}

	if _, err := s.openDraw(ctx, invoice.DrawID); err != nil {
		return err
	}

	if err := s.invoiceRepo.Delete(ctx, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SaleDeletedEvent{
		InvoiceID: invoiceID,
		DrawID:    invoice.DrawID,
		SellerID:  sellerID,
	}); err != nil {
		log.WithError(err).WithField("invoice_id", invoiceID).Warn("failed to queue sale deleted event")
	}
	return nil
}

// openDraw locks the draw row so a concurrent settlement cannot read the
// draw's tickets between the check and the write
func (s *salesService) openDraw(ctx context.Context, drawID int64) (*entities.Draw, error) {
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, entities.ErrDrawNotFound
	}
	if !draw.AcceptsSales(s.now()) {
		return nil, entities.ErrSalesClosed
	}
	return draw, nil
}
