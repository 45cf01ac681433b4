package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/prizes"
	"raffler/domain/services"

	log "github.com/sirupsen/logrus"
)

// SettlementHandler runs a settlement for one draw: it takes the draw lock,
// opens a transaction, settles with the configured rule set and commits.
type SettlementHandler struct {
	uowFactory UnitOfWorkFactory
	locker     interfaces.DrawLocker
	rules      *prizes.Registry
	ruleSetID  string
	metrics    SettlementMetrics
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(
	uowFactory UnitOfWorkFactory,
	locker interfaces.DrawLocker,
	rules *prizes.Registry,
	ruleSetID string,
	metrics SettlementMetrics,
) *SettlementHandler {
	return &SettlementHandler{
		uowFactory: uowFactory,
		locker:     locker,
		rules:      rules,
		ruleSetID:  ruleSetID,
		metrics:    metrics,
	}
}

// RuleSetID returns the id of the rule set new settlements use
func (h *SettlementHandler) RuleSetID() string {
	return h.ruleSetID
}

// SettleDraw settles a draw with the given winning numbers
func (h *SettlementHandler) SettleDraw(ctx context.Context, drawID int64, numbers entities.WinningNumbers, opts interfaces.SettleOptions) (*interfaces.SettlementResult, error) {
	start := time.Now()
	result, err := h.settle(ctx, drawID, numbers, opts)
	if h.metrics != nil {
		h.metrics.RecordSettlementDuration(ctx, time.Since(start))
	}

	if err != nil {
		kind := FailureKind(err)
		if h.metrics != nil {
			h.metrics.RecordSettlementFailure(ctx, kind)
		}
		entry := log.WithFields(log.Fields{
			"draw_id":   drawID,
			"rule_set":  h.ruleSetID,
			"recompute": opts.Recompute,
			"reason":    kind,
		}).WithError(err)
		if kind == FailureInternal {
			entry.Error("Settlement failed")
		} else {
			entry.Warn("Settlement rejected")
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"draw_id":      result.DrawID,
		"rule_set":     result.RuleSet,
		"winners":      result.WinnersWritten(),
		"total_payout": result.TotalPayout.String(),
		"recompute":    result.Recomputed,
		"replaced":     result.Replaced,
	}).Info("Draw settled")

	return result, nil
}

func (h *SettlementHandler) settle(ctx context.Context, drawID int64, numbers entities.WinningNumbers, opts interfaces.SettleOptions) (*interfaces.SettlementResult, error) {
	engine, err := h.rules.Engine(h.ruleSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}

	// Malformed numbers are rejected before taking the lock or touching storage
	if err := engine.RuleSet().ValidateNumbers(numbers); err != nil {
		return nil, err
	}

	unlock, err := h.locker.Lock(ctx, drawID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlementService := services.NewSettlementService(
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.WinnerRepository(),
		uow.EventBus(),
		engine,
	)

	result, err := settlementService.Settle(ctx, drawID, numbers, opts)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// Failure kinds reported in logs and metrics
const (
	FailureValidation = "validation"
	FailureNotFound   = "not_found"
	FailureConflict   = "conflict"
	FailureLocked     = "locked"
	FailureInternal   = "internal"
)

// FailureKind classifies a settlement error
func FailureKind(err error) string {
	switch {
	case errors.Is(err, entities.ErrInvalidWinningNumbers):
		return FailureValidation
	case errors.Is(err, entities.ErrDrawNotFound):
		return FailureNotFound
	case errors.Is(err, entities.ErrDrawAlreadyFinalized):
		return FailureConflict
	case errors.Is(err, entities.ErrSettlementInProgress):
		return FailureLocked
	default:
		return FailureInternal
	}
}
