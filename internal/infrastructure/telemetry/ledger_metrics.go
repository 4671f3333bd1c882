package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records the ledger's own instruments:
//
//	ledger.mutations              counter, by kind and operation
//	ledger.propagation.failures   counter, by kind and the level that failed
//	ledger.stats.duration         histogram of PortfolioStats latency
type LedgerMetrics struct {
	mutations           *Counter
	propagationFailures *Counter
	statsDuration       *Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewLedgerMetrics: meter cannot be nil")
	}

	mutations, err := NewCounter(meter, "ledger.mutations",
		"Charge, payment and document mutations that reached the store", "{mutation}")
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter, "ledger.propagation.failures",
		"Leaf writes whose ancestor review flags could not be raised", "{failure}")
	if err != nil {
		return nil, err
	}
	stats, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger.stats.duration",
		Description: "Time to compute portfolio statistics",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &LedgerMetrics{mutations: mutations, propagationFailures: failures, statsDuration: stats}, nil
}

// RecordMutation counts a successful leaf write
func (m *LedgerMetrics) RecordMutation(ctx context.Context, kind, operation string) {
	m.mutations.Inc(ctx, AttrEntityKind.String(kind), AttrOperation.String(operation))
}

// RecordPropagationFailure counts a failed ancestor flag write
func (m *LedgerMetrics) RecordPropagationFailure(ctx context.Context, kind, level string) {
	m.propagationFailures.Inc(ctx, AttrEntityKind.String(kind), AttrLevel.String(level))
}

// RecordStatsDuration records how long a PortfolioStats call took
func (m *LedgerMetrics) RecordStatsDuration(ctx context.Context, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.statsDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
