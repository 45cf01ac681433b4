package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"raffler/config"
	"raffler/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the raffle service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	settlementsCounter        metric.Int64Counter
	settlementFailuresCounter metric.Int64Counter
	settlementDurationHist    metric.Float64Histogram
	winnersCounter            metric.Int64Counter
	payoutCounter             metric.Int64Counter
	salesCounter              metric.Int64Counter
	salesAmountCounter        metric.Int64Counter
	pendingResultsGauge       metric.Int64Gauge
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider with the configured exporter
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMS)*time.Millisecond),
	)
	if err := mp.setup(reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithReader sets up metrics on an explicit reader, bypassing the exporter config
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}
	return mp.setup(reader)
}

func (mp *MetricsProvider) setup(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("raffler")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.settlementsCounter, err = mp.meter.Int64Counter(
		SettlementsTotal,
		metric.WithDescription("Total number of committed draw settlements"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlements counter: %w", err)
	}

	mp.settlementFailuresCounter, err = mp.meter.Int64Counter(
		SettlementFailures,
		metric.WithDescription("Total number of rejected or failed settlements"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement failures counter: %w", err)
	}

	mp.settlementDurationHist, err = mp.meter.Float64Histogram(
		SettlementDuration,
		metric.WithDescription("Duration of draw settlements in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement duration histogram: %w", err)
	}

	mp.winnersCounter, err = mp.meter.Int64Counter(
		WinnersTotal,
		metric.WithDescription("Total number of winner records written"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create winners counter: %w", err)
	}

	mp.payoutCounter, err = mp.meter.Int64Counter(
		PayoutCentsTotal,
		metric.WithDescription("Total prize payout written by settlements, in cents"),
		metric.WithUnit("{cent}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payout counter: %w", err)
	}

	mp.salesCounter, err = mp.meter.Int64Counter(
		SalesTotal,
		metric.WithDescription("Total number of invoices recorded or deleted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sales counter: %w", err)
	}

	mp.salesAmountCounter, err = mp.meter.Int64Counter(
		SalesCentsTotal,
		metric.WithDescription("Total invoiced amount, in cents"),
		metric.WithUnit("{cent}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sales amount counter: %w", err)
	}

	mp.pendingResultsGauge, err = mp.meter.Int64Gauge(
		DrawsPendingResults,
		metric.WithDescription("Draws whose scheduled time has passed without winning numbers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pending results gauge: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Subscribe records settlement and sales metrics from events on the bus
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDrawSettled, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.DrawSettledEvent); ok {
			mp.RecordSettlement(ctx, e)
		}
	})
	bus.Subscribe(events.EventTypeSaleRecorded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.SaleRecordedEvent); ok {
			mp.RecordSale(ctx, event.Type(), e.Total)
		}
	})
	bus.Subscribe(events.EventTypeSaleDeleted, func(ctx context.Context, event events.Event) {
		mp.RecordSale(ctx, event.Type(), 0)
	})
}

// RecordSettlement records a committed settlement
func (mp *MetricsProvider) RecordSettlement(ctx context.Context, e events.DrawSettledEvent) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRuleSet, e.RuleSet),
		attribute.Bool(LabelRecomputed, e.Recomputed),
	)
	mp.settlementsCounter.Add(ctx, 1, attrs)
	mp.winnersCounter.Add(ctx, int64(e.WinnerCount), attrs)
	mp.payoutCounter.Add(ctx, e.TotalPayout, attrs)
}

// RecordSettlementFailure records a settlement that did not commit
func (mp *MetricsProvider) RecordSettlementFailure(ctx context.Context, errorType string) {
	if !mp.isEnabled() {
		return
	}

	mp.settlementFailuresCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelErrorType, errorType)),
	)
}

// RecordSettlementDuration records how long a settlement took, committed or not
func (mp *MetricsProvider) RecordSettlementDuration(ctx context.Context, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	mp.settlementDurationHist.Record(ctx, duration.Seconds())
}

// RecordSale records an invoice change
func (mp *MetricsProvider) RecordSale(ctx context.Context, eventType events.EventType, totalCents int64) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelEventType, string(eventType)))
	mp.salesCounter.Add(ctx, 1, attrs)
	if totalCents > 0 {
		mp.salesAmountCounter.Add(ctx, totalCents, attrs)
	}
}

// RecordPendingResults records the number of draws awaiting winning numbers
func (mp *MetricsProvider) RecordPendingResults(ctx context.Context, count int) {
	if !mp.isEnabled() {
		return
	}

	mp.pendingResultsGauge.Record(ctx, int64(count))
}

// isEnabled checks if metrics are initialized with a meter
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}
