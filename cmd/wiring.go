package cmd

import (
	"context"
	"fmt"

	"raffler/application"
	"raffler/config"
	"raffler/database"
	"raffler/domain/interfaces"
	"raffler/domain/prizes"
	"raffler/events"
	"raffler/infrastructure"
	"raffler/infrastructure/observability"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Deps holds the long-lived collaborators shared by the server and the CLI commands
type Deps struct {
	Config     *config.Config
	UoWFactory application.UnitOfWorkFactory
	Rules      *prizes.Registry
	Bus        *events.Bus
	Metrics    *observability.MetricsProvider
	Locker     interfaces.DrawLocker

	closers []func()
}

// Close releases every resource opened by Build, most recent first
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// Build connects storage, messaging, locking and metrics according to cfg
func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	deps := &Deps{Config: cfg, Bus: events.NewBus()}

	rules, err := LoadRules(cfg)
	if err != nil {
		return nil, err
	}
	deps.Rules = rules

	deps.Metrics = observability.NewMetricsProvider(cfg)
	if err := deps.Metrics.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	deps.Metrics.Subscribe(deps.Bus)
	deps.closers = append(deps.closers, func() {
		if err := deps.Metrics.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics provider")
		}
	})

	publisher, err := buildPublisher(ctx, cfg, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	if err := buildStorage(ctx, cfg, deps, publisher); err != nil {
		deps.Close()
		return nil, err
	}

	deps.Locker = buildLocker(cfg, deps)
	return deps, nil
}

// LoadRules returns the rule registry with the optional rule set file
// registered, and checks that the configured rule set exists
func LoadRules(cfg *config.Config) (*prizes.Registry, error) {
	registry := prizes.NewRegistry()
	if cfg.RuleSetFile != "" {
		rules, err := prizes.LoadRuleSetFile(cfg.RuleSetFile)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(rules); err != nil {
			return nil, fmt.Errorf("failed to register rule set %s: %w", rules.ID(), err)
		}
		log.WithFields(log.Fields{
			"rule_set": rules.ID(),
			"file":     cfg.RuleSetFile,
		}).Info("Loaded rule set file")
	}

	if _, err := registry.Get(cfg.RuleSet); err != nil {
		return nil, fmt.Errorf("RULE_SET: %w", err)
	}
	return registry, nil
}

func buildPublisher(ctx context.Context, cfg *config.Config, deps *Deps) (interfaces.EventPublisher, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, events stay in process")
		return deps.Bus, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	deps.closers = append(deps.closers, func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close NATS connection")
		}
	})

	mapper := infrastructure.NewEventSubjectMapper()
	if err := client.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}
	return infrastructure.NewNATSEventPublisher(client, mapper, deps.Bus), nil
}

func buildStorage(ctx context.Context, cfg *config.Config, deps *Deps, publisher interfaces.EventPublisher) error {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		deps.closers = append(deps.closers, func() { db.Close() })
		deps.UoWFactory = infrastructure.NewSQLiteUnitOfWorkFactory(db, publisher)
		log.WithField("path", cfg.SQLitePath).Info("Using SQLite storage")
	default:
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.closers = append(deps.closers, db.Close)
		deps.UoWFactory = infrastructure.NewUnitOfWorkFactory(db, publisher)
		log.Info("Using Postgres storage")
	}
	return nil
}

func buildLocker(cfg *config.Config, deps *Deps) interfaces.DrawLocker {
	if cfg.RedisAddr == "" {
		return infrastructure.NewLocalDrawLocker(cfg.SettlementLockTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	deps.closers = append(deps.closers, func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	})
	log.WithField("addr", cfg.RedisAddr).Info("Using Redis draw locks")
	return infrastructure.NewRedisDrawLocker(client, cfg.SettlementLockTTL, cfg.SettlementLockTTL)
}

// MigrationTarget returns the migration target for the configured driver
func MigrationTarget(cfg *config.Config) database.MigrationTarget {
	if cfg.DatabaseDriver == config.DriverSQLite {
		return database.MigrationTarget{Driver: config.DriverSQLite, URL: cfg.SQLitePath}
	}
	return database.MigrationTarget{Driver: config.DriverPostgres, URL: cfg.GetDatabaseURL()}
}

// SettlementHandler builds the settlement use case over deps
func (d *Deps) SettlementHandler() *application.SettlementHandler {
	return application.NewSettlementHandler(d.UoWFactory, d.Locker, d.Rules, d.Config.RuleSet, d.Metrics)
}
