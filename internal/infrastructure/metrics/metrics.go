package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	priceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_price_lookups_total",
			Help: "Total number of price lookups by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	priceLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_price_lookup_duration_seconds",
			Help:    "Price lookup latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	fxFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_fx_fallback_total",
			Help: "Number of conversions that used the fallback USD/EUR rate",
		},
	)

	snapshotRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_snapshot_runs_total",
			Help: "Total number of scheduled snapshot runs",
		},
	)

	snapshotsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_snapshots_recorded_total",
			Help: "Total number of history snapshots recorded",
		},
	)

	snapshotErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_snapshot_errors_total",
			Help: "Total number of owners whose snapshot failed",
		},
	)

	snapshotRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_snapshot_run_duration_seconds",
			Help:    "Time taken to snapshot every owner",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	lastSnapshotRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_snapshot_last_run_timestamp_seconds",
			Help: "Unix time of the last completed snapshot run",
		},
	)
)

// ObservePriceLookup records one price lookup against source
func ObservePriceLookup(source string, available bool, took time.Duration) {
	outcome := "available"
	if !available {
		outcome = "unavailable"
	}
	priceLookupsTotal.WithLabelValues(source, outcome).Inc()
	priceLookupDuration.WithLabelValues(source).Observe(took.Seconds())
}

// IncFXFallback counts a conversion done with the fallback rate
func IncFXFallback() {
	fxFallbackTotal.Inc()
}

// ObserveSnapshotRun records a finished scheduler pass
func ObserveSnapshotRun(recorded, failed int, took time.Duration, finishedAt time.Time) {
	snapshotRunsTotal.Inc()
	snapshotsRecordedTotal.Add(float64(recorded))
	snapshotErrorsTotal.Add(float64(failed))
	snapshotRunDuration.Observe(took.Seconds())
	lastSnapshotRun.Set(float64(finishedAt.Unix()))
}
