package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"raffler/api"
	"raffler/application"
	"raffler/config"

	log "github.com/sirupsen/logrus"
)

// Run starts the HTTP API and the pending-results worker and blocks until ctx is done
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting raffler...")

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	deps, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	worker := application.NewPendingResultsWorker(deps.UoWFactory, cfg.PendingResultsSchedule, deps.Metrics)
	stopWorker, err := worker.Start(ctx)
	if err != nil {
		return err
	}
	defer stopWorker()

	server := api.NewServer(api.Handlers{
		Settlement: deps.SettlementHandler(),
		Reports:    application.NewReportHandler(deps.UoWFactory),
		Sales:      application.NewSalesHandler(deps.UoWFactory),
	}, cfg.JWTSecret)

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":        cfg.HTTPAddr,
			"environment": cfg.Environment,
			"rule_set":    cfg.RuleSet,
		}).Info("HTTP API listening")
		if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down raffler...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	log.Info("Shutdown completed")
	return nil
}
