package application

import (
	"context"
	"fmt"
	"time"

	"raffler/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DrawHandler schedules new draws
type DrawHandler struct {
	uowFactory UnitOfWorkFactory
}

// NewDrawHandler creates a new draw handler
func NewDrawHandler(uowFactory UnitOfWorkFactory) *DrawHandler {
	return &DrawHandler{uowFactory: uowFactory}
}

// CreateDraw schedules a draw; sales stay open until scheduledAt
func (h *DrawHandler) CreateDraw(ctx context.Context, scheduledAt time.Time) (*entities.Draw, error) {
	if scheduledAt.IsZero() {
		return nil, fmt.Errorf("draw scheduled time is required")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw := &entities.Draw{ScheduledAt: scheduledAt.UTC()}
	if err := uow.DrawRepository().Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"draw_id":      draw.ID,
		"scheduled_at": draw.ScheduledAt,
	}).Info("Draw scheduled")
	return draw, nil
}
