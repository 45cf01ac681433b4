package services

import (
	"context"
	"testing"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupSalesMocks() (*testhelpers.MockDrawRepository, *testhelpers.MockClientRepository, *testhelpers.MockInvoiceRepository, *testhelpers.MockEventPublisher) {
	return new(testhelpers.MockDrawRepository), new(testhelpers.MockClientRepository), new(testhelpers.MockInvoiceRepository), new(testhelpers.MockEventPublisher)
}

func TestSalesService_RecordSale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()

	clientRepo.On("GetByID", mock.Anything, int64(7)).Return(&entities.Client{ID: 7, SellerID: 3}, nil)
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createTestDraw(1), nil)
	invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *entities.Invoice) bool {
		return inv.Total == entities.Cents(250) && len(inv.Items) == 2
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Invoice).ID = 55
	}).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.SaleRecordedEvent")).Return(nil)

	service := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher)
	invoice, err := service.RecordSale(ctx, interfaces.SaleRequest{
		DrawID:   1,
		ClientID: 7,
		SellerID: 3,
		Lines: []entities.SaleLine{
			{Number: "1234", Quantity: 2},
			{Number: "56", Quantity: 2},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(55), invoice.ID)
	invoiceRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSalesService_RecordSale_Rejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	validLines := []entities.SaleLine{{Number: "1234", Quantity: 1}}

	tests := []struct {
		name    string
		lines   []entities.SaleLine
		client  *entities.Client
		draw    *entities.Draw
		wantErr error
	}{
		{name: "invalid number", lines: []entities.SaleLine{{Number: "123", Quantity: 1}}, wantErr: entities.ErrInvalidTicket},
		{name: "unknown client", lines: validLines, wantErr: entities.ErrClientNotFound},
		{name: "client of another seller", lines: validLines, client: &entities.Client{ID: 7, SellerID: 99}, wantErr: entities.ErrForbidden},
		{name: "unknown draw", lines: validLines, client: &entities.Client{ID: 7, SellerID: 3}, wantErr: entities.ErrDrawNotFound},
		{
			name: "draw already held", lines: validLines, client: &entities.Client{ID: 7, SellerID: 3},
			draw: createTestDraw(1, scheduledAt(time.Now().Add(-time.Minute))), wantErr: entities.ErrSalesClosed,
		},
		{
			name: "draw finalized", lines: validLines, client: &entities.Client{ID: 7, SellerID: 3},
			draw: createTestDraw(1, finalized("1234", "56", "78")), wantErr: entities.ErrSalesClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()
			if tt.client != nil {
				clientRepo.On("GetByID", mock.Anything, int64(7)).Return(tt.client, nil)
			} else {
				clientRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)
			}
			if tt.draw != nil {
				drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(tt.draw, nil)
			} else {
				drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(nil, nil)
			}

			service := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher)
			_, err := service.RecordSale(ctx, interfaces.SaleRequest{DrawID: 1, ClientID: 7, SellerID: 3, Lines: tt.lines})

			assert.ErrorIs(t, err, tt.wantErr)
			invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestSalesService_DeleteSale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("owner before the draw", func(t *testing.T) {
		t.Parallel()
		drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()
		invoiceRepo.On("GetByID", mock.Anything, int64(9)).Return(&entities.Invoice{ID: 9, DrawID: 1, SellerID: 3}, nil)
		drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createTestDraw(1), nil)
		invoiceRepo.On("Delete", mock.Anything, int64(9)).Return(nil)
		publisher.On("Publish", mock.AnythingOfType("events.SaleDeletedEvent")).Return(nil)

		err := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher).DeleteSale(ctx, 9, 3)
		require.NoError(t, err)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("another seller", func(t *testing.T) {
		t.Parallel()
		drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()
		invoiceRepo.On("GetByID", mock.Anything, int64(9)).Return(&entities.Invoice{ID: 9, DrawID: 1, SellerID: 3}, nil)

		err := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher).DeleteSale(ctx, 9, 4)
		assert.ErrorIs(t, err, entities.ErrForbidden)
		invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("after results", func(t *testing.T) {
		t.Parallel()
		drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()
		invoiceRepo.On("GetByID", mock.Anything, int64(9)).Return(&entities.Invoice{ID: 9, DrawID: 1, SellerID: 3}, nil)
		drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createTestDraw(1, finalized("1234", "56", "78")), nil)

		err := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher).DeleteSale(ctx, 9, 3)
		assert.ErrorIs(t, err, entities.ErrSalesClosed)
		invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing invoice", func(t *testing.T) {
		t.Parallel()
		drawRepo, clientRepo, invoiceRepo, publisher := setupSalesMocks()
		invoiceRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

		err := NewSalesService(drawRepo, clientRepo, invoiceRepo, publisher).DeleteSale(ctx, 9, 3)
		assert.ErrorIs(t, err, entities.ErrInvoiceNotFound)
	})
}
