package observability

// Metric name prefixes
const (
	MetricPrefix = "raffler"
)

// Metric names
const (
	// Settlement metrics
	SettlementsTotal   = MetricPrefix + ".settlements_total"
	SettlementFailures = MetricPrefix + ".settlements.failures_total"
	SettlementDuration = MetricPrefix + ".settlement.duration"
	WinnersTotal       = MetricPrefix + ".winners_total"
	PayoutCentsTotal   = MetricPrefix + ".payout_cents_total"

	// Sales metrics
	SalesTotal      = MetricPrefix + ".sales_total"
	SalesCentsTotal = MetricPrefix + ".sales_cents_total"

	// Draw metrics
	DrawsPendingResults = MetricPrefix + ".draws.pending_results"
)

// Label keys
const (
	LabelRuleSet    = "rule_set"
	LabelRecomputed = "recomputed"
	LabelEventType  = "event_type"
	LabelErrorType  = "error_type"
)
