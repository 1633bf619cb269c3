package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested      *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	candidatePool prometheus.Gauge
	likeDayTotal  *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridpull_observations_ingested_total",
				Help: "Total LMP observations routed to a backend",
			},
			[]string{"backend", "market"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		candidatePool: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gridpull_like_day_candidate_pool",
				Help: "Candidate population size of the last like-day query",
			},
		),
		likeDayTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridpull_like_day_queries_total",
				Help: "Total like-day queries served",
			},
			[]string{"metric"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordIngest records one observation routed to a backend.
func (r *Recorder) RecordIngest(backend, market string) {
	r.ingested.WithLabelValues(backend, market).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCandidatePool records the candidate population of a like-day query.
func (r *Recorder) RecordCandidatePool(size int) {
	r.candidatePool.Set(float64(size))
}

// RecordLikeDayQuery counts one served like-day query per metric.
func (r *Recorder) RecordLikeDayQuery(metric string) {
	r.likeDayTotal.WithLabelValues(metric).Inc()
}
