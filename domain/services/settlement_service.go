package services

import (
	"context"
	"fmt"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/prizes"
	"raffler/events"

	log "github.com/sirupsen/logrus"
)

// settlementService implements draw settlement on top of a transaction-scoped set of repositories
type settlementService struct {
	drawRepo       interfaces.DrawRepository
	ticketRepo     interfaces.TicketRepository
	winnerRepo     interfaces.WinnerRepository
	eventPublisher interfaces.EventPublisher
	engine         *prizes.Engine
	now            interfaces.Clock
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	winnerRepo interfaces.WinnerRepository,
	eventPublisher interfaces.EventPublisher,
	engine *prizes.Engine,
) interfaces.SettlementService {
	return &settlementService{
		drawRepo:       drawRepo,
		ticketRepo:     ticketRepo,
		winnerRepo:     winnerRepo,
		eventPublisher: eventPublisher,
		engine:         engine,
		now:            time.Now,
	}
}

// Settle validates the numbers, then clears, rewrites and finalizes the draw.
// Every write goes through the repositories it was built with, so the caller's
// transaction makes the sequence all-or-nothing.
func (s *settlementService) Settle(ctx context.Context, drawID int64, numbers entities.WinningNumbers, opts interfaces.SettleOptions) (*interfaces.SettlementResult, error) {
	rules := s.engine.RuleSet()
	if err := rules.ValidateNumbers(numbers); err != nil {
		return nil, err
	}

	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if draw == nil {
		return nil, entities.ErrDrawNotFound
	}
	if draw.IsFinalized() && !opts.Recompute {
		return nil, entities.ErrDrawAlreadyFinalized
	}

	tickets, err := s.ticketRepo.GetByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	classifications, err := s.engine.Evaluate(numbers, tickets)
	if err != nil {
		return nil, fmt.Errorf("failed to classify tickets: %w", err)
	}

	replaced, err := s.winnerRepo.DeleteByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear winners: %w", err)
	}

	result := &interfaces.SettlementResult{
		DrawID:     drawID,
		RuleSet:    rules.ID(),
		Winners:    make([]*entities.WinnerRecord, 0, len(classifications)),
		Recomputed: draw.IsFinalized(),
		Replaced:   replaced,
	}
	for _, c := range classifications {
		winner, err := entities.NewWinnerRecord(drawID, c.Ticket, c.Tier, c.Rank, c.UnitAmount, result.RuleSet)
		if err != nil {
			return nil, fmt.Errorf("failed to price winner: %w", err)
		}
		result.Winners = append(result.Winners, winner)
		if result.TotalPayout, err = result.TotalPayout.Plus(winner.TotalPayout); err != nil {
			return nil, fmt.Errorf("failed to total payouts: %w", err)
		}
	}

	if len(result.Winners) > 0 {
		if err := s.winnerRepo.CreateBatch(ctx, result.Winners); err != nil {
			return nil, fmt.Errorf("failed to write winners: %w", err)
		}
	}

	settledAt := s.now().UTC()
	draw.Finalize(numbers, result.RuleSet, settledAt)
	if err := s.drawRepo.Finalize(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to finalize draw: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DrawSettledEvent{
		DrawID:      drawID,
		FirstPrize:  numbers.First,
		SecondPrize: numbers.Second,
		ThirdPrize:  numbers.Third,
		RuleSet:     result.RuleSet,
		WinnerCount: len(result.Winners),
		TotalPayout: int64(result.TotalPayout),
		Recomputed:  result.Recomputed,
		SettledAt:   settledAt,
	}); err != nil {
		log.WithError(err).WithField("draw_id", drawID).Warn("failed to queue draw settled event")
	}

	return result, nil
}
