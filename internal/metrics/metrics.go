// Package metrics provides the centralized Prometheus metrics registry for
// the slip tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SlipsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "slips_ingested_total",
		Help:      "Total number of slips accepted by the ingest pipeline",
	})
	SlipsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "slips_failed_total",
		Help:      "Total number of slips where every leg failed extraction",
	})
	SlipsRoutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "slips_routed_total",
		Help:      "Total slips routed, labelled by detected sportsbook format",
	}, []string{"format"})
	LegsParsedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "legs_parsed_total",
		Help:      "Total legs successfully extracted, labelled by bet type",
	}, []string{"bet_type"})
	LegsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "legs_dropped_total",
		Help:      "Total legs dropped for missing mandatory fields",
	})
	MatchAttemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "match_attempts_total",
		Help:      "Total event match attempts across refresh cycles",
	})
	MatchHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "match_hits_total",
		Help:      "Total legs successfully bound to a live event",
	})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "bets_settled_total",
		Help:      "Total tracked bets reaching a terminal state, labelled by outcome",
	}, []string{"outcome"})
	FeedTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "slip_tracker",
		Name:      "feed_timeouts_total",
		Help:      "Total event feed queries that timed out",
	})
)

// Gauge metrics
var (
	TrackedBetsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "slip_tracker",
		Name:      "tracked_bets_active",
		Help:      "Number of tracked bets not yet in a terminal state",
	})
	UnmatchedBindings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "slip_tracker",
		Name:      "unmatched_bindings",
		Help:      "Number of leg bindings still awaiting an event match",
	})
)

// Histogram metrics
var (
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "slip_tracker",
		Name:      "ingest_duration_seconds",
		Help:      "End-to-end duration of the ingest pipeline in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RefreshPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "slip_tracker",
		Name:      "refresh_pass_duration_seconds",
		Help:      "Duration of one matcher refresh pass in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	})
	FeedRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "slip_tracker",
		Name:      "feed_request_latency_seconds",
		Help:      "Latency of event feed scoreboard requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SlipsIngestedTotal)
		registry.MustRegister(SlipsFailedTotal)
		registry.MustRegister(SlipsRoutedTotal)
		registry.MustRegister(LegsParsedTotal)
		registry.MustRegister(LegsDroppedTotal)
		registry.MustRegister(MatchAttemptsTotal)
		registry.MustRegister(MatchHitsTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(FeedTimeoutsTotal)

		// Register gauge metrics
		registry.MustRegister(TrackedBetsActive)
		registry.MustRegister(UnmatchedBindings)

		// Register histogram metrics
		registry.MustRegister(IngestDuration)
		registry.MustRegister(RefreshPassDuration)
		registry.MustRegister(FeedRequestLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSlipIngested records a successful slip ingestion.
func RecordSlipIngested(durationSeconds float64) {
	SlipsIngestedTotal.Inc()
	IngestDuration.Observe(durationSeconds)
}

// RecordSettlement records a tracked bet reaching a terminal outcome.
func RecordSettlement(outcome string) {
	BetsSettledTotal.WithLabelValues(outcome).Inc()
}

// RecordFeedTimeout records an event feed timeout.
func RecordFeedTimeout() {
	FeedTimeoutsTotal.Inc()
}
