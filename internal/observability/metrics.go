// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cycle metrics
	CyclesTotal        *prometheus.CounterVec
	CycleDuration      *prometheus.HistogramVec
	CycleTicksSkipped  *prometheus.CounterVec
	CandidatesAnalyzed prometheus.Counter
	AnalysisErrors     prometheus.Counter
	PositionsOpened    prometheus.Counter

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	RateGateWait     prometheus.Histogram

	// Portfolio metrics
	OpenPositions prometheus.Gauge
	TotalValue    prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_autotrader"
	}

	return &Metrics{
		// Cycle metrics
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "cycles_total",
			Help:      "Total number of poll cycles by cycle type and status",
		}, []string{"cycle", "status"}),
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "cycle_duration_seconds",
			Help:      "Poll cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cycle"}),
		CycleTicksSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "cycle_ticks_skipped_total",
			Help:      "Ticks skipped because the previous cycle was still running",
		}, []string{"cycle"}),
		CandidatesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "candidates_analyzed_total",
			Help:      "Total number of candidates passed to the decision engine",
		}),
		AnalysisErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "analysis_errors_total",
			Help:      "Total number of per-candidate analysis failures",
		}),
		PositionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "positions_opened_total",
			Help:      "Total number of positions opened",
		}),

		// Provider metrics
		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "provider_requests_total",
			Help:      "Total number of discovery API requests by operation and status",
		}, []string{"op", "status"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "provider_request_seconds",
			Help:      "Discovery API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups by operation and result",
		}, []string{"op", "result"}),
		RateGateWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "rate_gate_wait_seconds",
			Help:      "Time spent waiting on the request spacing gate",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		// Portfolio metrics
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "open_positions",
			Help:      "Current number of active positions",
		}),
		TotalValue: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "total_value",
			Help:      "Total notional value of active positions",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCycle records a completed poll cycle.
func RecordCycle(cycle, status string, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(cycle, status).Inc()
	DefaultMetrics.CycleDuration.WithLabelValues(cycle).Observe(durationSeconds)
}

// RecordTickSkipped records a tick skipped due to an in-flight cycle.
func RecordTickSkipped(cycle string) {
	DefaultMetrics.CycleTicksSkipped.WithLabelValues(cycle).Inc()
}

// RecordCandidateAnalyzed increments the analyzed candidates counter.
func RecordCandidateAnalyzed() {
	DefaultMetrics.CandidatesAnalyzed.Inc()
}

// RecordAnalysisError increments the analysis failures counter.
func RecordAnalysisError() {
	DefaultMetrics.AnalysisErrors.Inc()
}

// RecordPositionOpened increments the opened positions counter.
func RecordPositionOpened() {
	DefaultMetrics.PositionsOpened.Inc()
}

// RecordProviderRequest records a discovery API request.
func RecordProviderRequest(op, status string, seconds float64) {
	DefaultMetrics.ProviderRequests.WithLabelValues(op, status).Inc()
	DefaultMetrics.ProviderLatency.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(op string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CacheLookups.WithLabelValues(op, result).Inc()
}

// RecordRateGateWait records time spent queued on the spacing gate.
func RecordRateGateWait(seconds float64) {
	DefaultMetrics.RateGateWait.Observe(seconds)
}

// UpdatePortfolio updates the portfolio gauges.
func UpdatePortfolio(openPositions int, totalValue float64) {
	DefaultMetrics.OpenPositions.Set(float64(openPositions))
	DefaultMetrics.TotalValue.Set(totalValue)
}
