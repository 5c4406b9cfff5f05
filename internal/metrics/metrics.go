package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/RishiKendai/fpsim/internal/models"
)

var (
	// HTTP
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Scoring
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_comparisons_total",
			Help: "Total number of fingerprint comparisons by recommendation",
		},
		[]string{"recommendation"},
	)

	ComparisonDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fpsim_comparison_duration_seconds",
			Help:    "Duration of a single fingerprint comparison in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	OverallSimilarity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fpsim_overall_similarity",
			Help:    "Distribution of overall similarity scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	Confidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fpsim_confidence",
			Help:    "Distribution of confidence values",
			Buckets: prometheus.LinearBuckets(0.1, 0.05, 18),
		},
	)

	RiskIndicators = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_risk_indicators_total",
			Help: "Total number of risk indicators raised by name",
		},
		[]string{"indicator"},
	)

	CalculatorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_calculator_failures_total",
			Help: "Total number of component calculator failures by dimension",
		},
		[]string{"dimension"},
	)

	// Identify jobs
	IdentifyJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_identify_jobs_total",
			Help: "Total number of identify jobs by final status",
		},
		[]string{"status"},
	)

	IdentifyCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fpsim_identify_candidates",
			Help:    "Number of candidates compared per identify job",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Snapshot ingestion
	StreamMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_stream_messages_total",
			Help: "Total number of snapshot stream messages by outcome",
		},
		[]string{"outcome"}, // "processed", "retried", "dead_lettered", "invalid"
	)

	SnapshotCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_snapshot_cache_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Decision webhook
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fpsim_webhook_deliveries_total",
			Help: "Total number of decision webhook deliveries by outcome",
		},
		[]string{"outcome"}, // "delivered", "failed", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fpsim_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordComparison records the outcome of one similarity calculation
func RecordComparison(score *models.SimilarityScore, duration time.Duration) {
	if score == nil {
		return
	}
	ComparisonsTotal.WithLabelValues(string(score.Recommendation)).Inc()
	ComparisonDuration.Observe(duration.Seconds())
	OverallSimilarity.Observe(score.Overall)
	Confidence.Observe(score.Confidence)
	for _, r := range score.RiskIndicators {
		RiskIndicators.WithLabelValues(r).Inc()
	}
}

func RecordCalculatorFailure(dimension string) {
	CalculatorFailures.WithLabelValues(dimension).Inc()
}

func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordIdentifyJob(status string, candidates int) {
	IdentifyJobs.WithLabelValues(status).Inc()
	IdentifyCandidates.Observe(float64(candidates))
}

func RecordStreamMessage(outcome string) {
	StreamMessages.WithLabelValues(outcome).Inc()
}

func RecordCacheLookup(result string) {
	SnapshotCache.WithLabelValues(result).Inc()
}

func RecordWebhookDelivery(outcome string) {
	WebhookDeliveries.WithLabelValues(outcome).Inc()
}

// SetCircuitBreakerState publishes a breaker state using the gobreaker
// numbering (0=closed, 1=half-open, 2=open)
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
