package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del motor de sincronización.
// Todos los métodos toleran receiver nil, así el dominio se puede testear
// sin armar un registry.
type Metrics struct {
	registry *prometheus.Registry

	syncPasses        prometheus.Counter
	syncDegraded      prometheus.Counter
	queueApplied      prometheus.Counter
	queueDrainFailed  prometheus.Counter
	conflictsResolved prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		syncPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_passes_total",
			Help: "Synchronize passes started.",
		}),
		syncDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_degraded_total",
			Help: "Synchronize passes that fell back to local-only data.",
		}),
		queueApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_queue_entries_applied_total",
			Help: "Mutation queue entries applied to the remote store.",
		}),
		queueDrainFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_queue_drain_failures_total",
			Help: "Queue drain attempts that failed and left the queue intact.",
		}),
		conflictsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_conflicts_resolved_total",
			Help: "Record conflicts resolved by last-write-wins.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		m.syncPasses,
		m.syncDegraded,
		m.queueApplied,
		m.queueDrainFailed,
		m.conflictsResolved,
	)

	return m
}

// Handler expone el registry para GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SyncPass() {
	if m != nil {
		m.syncPasses.Inc()
	}
}

func (m *Metrics) SyncDegraded() {
	if m != nil {
		m.syncDegraded.Inc()
	}
}

func (m *Metrics) QueueApplied(n int) {
	if m != nil {
		m.queueApplied.Add(float64(n))
	}
}

func (m *Metrics) QueueDrainFailed() {
	if m != nil {
		m.queueDrainFailed.Inc()
	}
}

func (m *Metrics) ConflictResolved() {
	if m != nil {
		m.conflictsResolved.Inc()
	}
}
