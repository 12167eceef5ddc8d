package importer

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricWorkerAcquired    = "worker_acquired_total"
	MetricWorkerReleased    = "worker_released_total"
	MetricInitiateOutcome   = "initiate_outcome_total"
	MetricPollOutcome       = "poll_outcome_total"
	MetricShardsCommitted   = "shards_committed_total"
	MetricPartitionsFailed  = "partitions_failed_total"
)

// Metrics holds the counters the orchestrator updates as jobs move through
// the pipeline. The zero value is not usable; use NewMetrics. A nil
// *Metrics is valid everywhere it's read and is a no-op.
type Metrics struct {
	WorkerAcquired   prometheus.Counter
	WorkerReleased   prometheus.Counter
	InitiateOutcome  *prometheus.CounterVec // label "outcome": accepted|rejected|transport_error
	PollOutcome      *prometheus.CounterVec // label "outcome": in_progress|done|transport_error|unexpected_status
	ShardsCommitted  prometheus.Counter
	PartitionsFailed prometheus.Counter
}

// NewMetrics builds a Metrics and registers its collectors with reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// *prometheus.Registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorkerAcquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricWorkerAcquired,
			Help:      "Number of times a worker was checked out of the node-worker queue.",
		}),
		WorkerReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricWorkerReleased,
			Help:      "Number of times a worker was returned to the node-worker queue.",
		}),
		InitiateOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricInitiateOutcome,
			Help:      "Outcome of PUT /v1/shard/{id} calls, by outcome.",
		}, []string{"outcome"}),
		PollOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricPollOutcome,
			Help:      "Outcome of GET /v1/shard/{id} calls, by outcome.",
		}, []string{"outcome"}),
		ShardsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricShardsCommitted,
			Help:      "Number of shards committed to the catalog.",
		}),
		PartitionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hiveimport",
			Name:      MetricPartitionsFailed,
			Help:      "Number of partitions abandoned due to source or catalog errors.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.WorkerAcquired, m.WorkerReleased, m.InitiateOutcome, m.PollOutcome, m.ShardsCommitted, m.PartitionsFailed)
	}

	return m
}

func (m *Metrics) acquired() {
	if m == nil {
		return
	}
	m.WorkerAcquired.Inc()
}

func (m *Metrics) released() {
	if m == nil {
		return
	}
	m.WorkerReleased.Inc()
}

func (m *Metrics) initiateOutcome(outcome string) {
	if m == nil {
		return
	}
	m.InitiateOutcome.WithLabelValues(outcome).Inc()
}

func (m *Metrics) pollOutcome(outcome string) {
	if m == nil {
		return
	}
	m.PollOutcome.WithLabelValues(outcome).Inc()
}

func (m *Metrics) shardCommitted() {
	if m == nil {
		return
	}
	m.ShardsCommitted.Inc()
}

func (m *Metrics) partitionFailed() {
	if m == nil {
		return
	}
	m.PartitionsFailed.Inc()
}
