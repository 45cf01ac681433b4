package application

import (
	"context"
	"fmt"
	"time"

	"raffler/domain/entities"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// PendingResultsWorker periodically reports draws whose scheduled time has
// passed without winning numbers
type PendingResultsWorker struct {
	uowFactory UnitOfWorkFactory
	schedule   string
	metrics    PendingResultsMetrics
	now        func() time.Time
}

// NewPendingResultsWorker creates a worker running on the given cron schedule
func NewPendingResultsWorker(uowFactory UnitOfWorkFactory, schedule string, metrics PendingResultsMetrics) *PendingResultsWorker {
	return &PendingResultsWorker{
		uowFactory: uowFactory,
		schedule:   schedule,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Start schedules the check and returns a function that stops the worker and
// waits for a running check to finish
func (w *PendingResultsWorker) Start(ctx context.Context) (func(), error) {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(w.schedule, func() {
		if _, err := w.CheckPending(ctx); err != nil {
			log.WithError(err).Error("Failed to check pending draw results")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid pending results schedule %q: %w", w.schedule, err)
	}

	scheduler.Start()
	log.WithField("schedule", w.schedule).Info("Pending results worker started")

	return func() {
		<-scheduler.Stop().Done()
		log.Info("Pending results worker stopped")
	}, nil
}

// CheckPending lists the draws awaiting results, logging each one
func (w *PendingResultsWorker) CheckPending(ctx context.Context) ([]*entities.Draw, error) {
	uow := w.uowFactory.Create()
	if err := uow.BeginSnapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	now := w.now().UTC()
	draws, err := uow.DrawRepository().ListPendingResults(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending draws: %w", err)
	}

	if w.metrics != nil {
		w.metrics.RecordPendingResults(ctx, len(draws))
	}

	if len(draws) == 0 {
		log.Debug("No draws awaiting results")
		return draws, nil
	}

	for _, draw := range draws {
		log.WithFields(log.Fields{
			"draw_id":      draw.ID,
			"scheduled_at": draw.ScheduledAt,
			"overdue":      now.Sub(draw.ScheduledAt).Round(time.Minute).String(),
		}).Warn("Draw is awaiting winning numbers")
	}
	return draws, nil
}
