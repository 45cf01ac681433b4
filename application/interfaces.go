package application

import (
	"context"
	"time"
)

// SettlementMetrics records the outcome of settlement runs
type SettlementMetrics interface {
	RecordSettlementDuration(ctx context.Context, duration time.Duration)
	RecordSettlementFailure(ctx context.Context, errorType string)
}

// PendingResultsMetrics records how many draws are waiting for their numbers
type PendingResultsMetrics interface {
	RecordPendingResults(ctx context.Context, count int)
}
