package services

import (
	"context"
	"errors"
	"testing"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/prizes"
	"raffler/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupSettlementMocks() (*testhelpers.MockDrawRepository, *testhelpers.MockTicketRepository, *testhelpers.MockWinnerRepository, *testhelpers.MockEventPublisher) {
	return new(testhelpers.MockDrawRepository), new(testhelpers.MockTicketRepository), new(testhelpers.MockWinnerRepository), new(testhelpers.MockEventPublisher)
}

func newTestSettlementService(t *testing.T, drawRepo *testhelpers.MockDrawRepository, ticketRepo *testhelpers.MockTicketRepository, winnerRepo *testhelpers.MockWinnerRepository, publisher *testhelpers.MockEventPublisher) interfaces.SettlementService {
	t.Helper()
	engine, err := prizes.NewEngine(prizes.Cascade())
	require.NoError(t, err)
	return NewSettlementService(drawRepo, ticketRepo, winnerRepo, publisher, engine)
}

var scenarioNumbers = entities.WinningNumbers{First: "1234", Second: "56", Third: "78"}

func TestSettlementService_Settle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()

	draw := createTestDraw(1)
	tickets := []*entities.TicketLineItem{
		createTestTicket(1, 10, "1234", 1),
		createTestTicket(2, 10, "1239", 2),
		createTestTicket(3, 11, "34", 5),
		createTestTicket(4, 11, "9999", 4),
	}

	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(draw, nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(1)).Return(tickets, nil)
	winnerRepo.On("DeleteByDraw", mock.Anything, int64(1)).Return(int64(0), nil)
	winnerRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(w []*entities.WinnerRecord) bool {
		return len(w) == 3
	})).Return(nil)
	drawRepo.On("Finalize", mock.Anything, mock.MatchedBy(func(d *entities.Draw) bool {
		numbers, ok := d.WinningNumbers()
		return ok && numbers == scenarioNumbers && *d.RuleSet == "cascade-v1"
	})).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.DrawSettledEvent")).Return(nil)

	service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)
	result, err := service.Settle(ctx, 1, scenarioNumbers, interfaces.SettleOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, result.WinnersWritten())
	assert.Equal(t, "cascade-v1", result.RuleSet)
	assert.False(t, result.Recomputed)

	assert.Equal(t, "exact-rank1", result.Winners[0].Tier)
	assert.Equal(t, entities.Units(2000), result.Winners[0].TotalPayout)
	assert.Equal(t, "3digits-rank1", result.Winners[1].Tier)
	assert.Equal(t, entities.Units(100), result.Winners[1].TotalPayout)
	assert.Equal(t, "pair-rank1", result.Winners[2].Tier)
	assert.Equal(t, entities.Units(70), result.Winners[2].TotalPayout)
	assert.Equal(t, entities.Units(2170), result.TotalPayout)

	for _, w := range result.Winners {
		assert.Equal(t, w.UnitAmount*entities.Cents(w.Quantity), w.TotalPayout)
		assert.Equal(t, "cascade-v1", w.RuleSet)
	}
	assert.True(t, draw.IsFinalized())

	drawRepo.AssertExpectations(t)
	ticketRepo.AssertExpectations(t)
	winnerRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSettlementService_Settle_EmptyDraw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()

	draw := createTestDraw(2)
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(draw, nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(2)).Return([]*entities.TicketLineItem{}, nil)
	winnerRepo.On("DeleteByDraw", mock.Anything, int64(2)).Return(int64(0), nil)
	drawRepo.On("Finalize", mock.Anything, draw).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.DrawSettledEvent")).Return(nil)

	service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)
	result, err := service.Settle(ctx, 2, scenarioNumbers, interfaces.SettleOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.WinnersWritten())
	assert.True(t, draw.IsFinalized())
	winnerRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	drawRepo.AssertExpectations(t)
}

func TestSettlementService_Settle_AlreadyFinalized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()

	draw := createTestDraw(3, finalized("1111", "22", "33"))
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(3)).Return(draw, nil)

	service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)
	result, err := service.Settle(ctx, 3, scenarioNumbers, interfaces.SettleOptions{})

	assert.ErrorIs(t, err, entities.ErrDrawAlreadyFinalized)
	assert.Nil(t, result)
	assert.Equal(t, "1111", *draw.FirstPrize)
	winnerRepo.AssertNotCalled(t, "DeleteByDraw", mock.Anything, mock.Anything)
	winnerRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	drawRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSettlementService_Settle_Recompute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()

	draw := createTestDraw(4, finalized("1111", "22", "33"))
	tickets := []*entities.TicketLineItem{createTestTicket(1, 10, "1234", 1)}

	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(4)).Return(draw, nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(4)).Return(tickets, nil)
	winnerRepo.On("DeleteByDraw", mock.Anything, int64(4)).Return(int64(2), nil)
	winnerRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	drawRepo.On("Finalize", mock.Anything, draw).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.DrawSettledEvent")).Return(nil)

	service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)
	result, err := service.Settle(ctx, 4, scenarioNumbers, interfaces.SettleOptions{Recompute: true})

	require.NoError(t, err)
	assert.True(t, result.Recomputed)
	assert.Equal(t, int64(2), result.Replaced)
	assert.Equal(t, 1, result.WinnersWritten())
	assert.Equal(t, "1234", *draw.FirstPrize)
}

func TestSettlementService_Settle_SameInputsSameWinners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tickets := []*entities.TicketLineItem{
		createTestTicket(1, 10, "1234", 1),
		createTestTicket(2, 10, "0034", 3),
		createTestTicket(3, 11, "78", 2),
	}

	run := func(draw *entities.Draw, opts interfaces.SettleOptions) []*entities.WinnerRecord {
		drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()
		drawRepo.On("GetByIDForUpdate", mock.Anything, draw.ID).Return(draw, nil)
		ticketRepo.On("GetByDraw", mock.Anything, draw.ID).Return(tickets, nil)
		winnerRepo.On("DeleteByDraw", mock.Anything, draw.ID).Return(int64(0), nil)
		winnerRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
		drawRepo.On("Finalize", mock.Anything, draw).Return(nil)
		publisher.On("Publish", mock.Anything).Return(nil)

		result, err := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher).
			Settle(ctx, draw.ID, scenarioNumbers, opts)
		require.NoError(t, err)
		return result.Winners
	}

	draw := createTestDraw(5)
	first := run(draw, interfaces.SettleOptions{})
	second := run(draw, interfaces.SettleOptions{Recompute: true})
	assert.Equal(t, first, second)
}

func TestSettlementService_Settle_PayoutOverflow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()

	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createTestDraw(1), nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(1)).Return([]*entities.TicketLineItem{
		createTestTicket(1, 10, "1234", 100_000_000_000_000),
		createTestTicket(2, 10, "5555", 1),
	}, nil)
	winnerRepo.On("DeleteByDraw", mock.Anything, int64(1)).Return(int64(0), nil)

	service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)
	result, err := service.Settle(ctx, 1, scenarioNumbers, interfaces.SettleOptions{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, entities.ErrAmountOverflow)
	winnerRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	drawRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSettlementService_Settle_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbErr := errors.New("connection reset")

	t.Run("malformed numbers are rejected before any read", func(t *testing.T) {
		t.Parallel()
		drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()
		service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)

		_, err := service.Settle(ctx, 1, entities.WinningNumbers{First: "123", Second: "45", Third: "67"}, interfaces.SettleOptions{})
		assert.ErrorIs(t, err, entities.ErrInvalidWinningNumbers)
		drawRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("missing draw", func(t *testing.T) {
		t.Parallel()
		drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()
		drawRepo.On("GetByIDForUpdate", mock.Anything, int64(99)).Return(nil, nil)
		service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)

		_, err := service.Settle(ctx, 99, scenarioNumbers, interfaces.SettleOptions{})
		assert.ErrorIs(t, err, entities.ErrDrawNotFound)
	})

	t.Run("winner insert failure stops before finalize", func(t *testing.T) {
		t.Parallel()
		drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()
		draw := createTestDraw(6)
		drawRepo.On("GetByIDForUpdate", mock.Anything, int64(6)).Return(draw, nil)
		ticketRepo.On("GetByDraw", mock.Anything, int64(6)).Return([]*entities.TicketLineItem{createTestTicket(1, 10, "1234", 1)}, nil)
		winnerRepo.On("DeleteByDraw", mock.Anything, int64(6)).Return(int64(0), nil)
		winnerRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(dbErr)
		service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)

		_, err := service.Settle(ctx, 6, scenarioNumbers, interfaces.SettleOptions{})
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, draw.IsFinalized())
		drawRepo.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("publish failure does not fail settlement", func(t *testing.T) {
		t.Parallel()
		drawRepo, ticketRepo, winnerRepo, publisher := setupSettlementMocks()
		draw := createTestDraw(7)
		drawRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(draw, nil)
		ticketRepo.On("GetByDraw", mock.Anything, int64(7)).Return([]*entities.TicketLineItem{}, nil)
		winnerRepo.On("DeleteByDraw", mock.Anything, int64(7)).Return(int64(0), nil)
		drawRepo.On("Finalize", mock.Anything, draw).Return(nil)
		publisher.On("Publish", mock.Anything).Return(dbErr)
		service := newTestSettlementService(t, drawRepo, ticketRepo, winnerRepo, publisher)

		_, err := service.Settle(ctx, 7, scenarioNumbers, interfaces.SettleOptions{})
		assert.NoError(t, err)
	})
}
