package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the collaboration core.
type Metrics struct {
	OperationsAccepted *prometheus.CounterVec
	OperationsRejected *prometheus.CounterVec
	TransformDepth     prometheus.Histogram
	ActiveSessions     prometheus.Gauge
	ActiveDocuments    prometheus.Gauge
	GraphEdges         prometheus.Gauge
	LinkExtractions    prometheus.Counter
	BroadcastLatency   prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "operations_accepted_total",
			Help:      "Operations accepted into authoritative history.",
		}, []string{"document_id"}),
		OperationsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "operations_rejected_total",
			Help:      "Operations rejected before application.",
		}, []string{"reason"}),
		TransformDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "transform_depth",
			Help:      "Number of history entries an incoming operation was transformed against.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "active_sessions",
			Help:      "Currently connected editing sessions.",
		}),
		ActiveDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "active_documents",
			Help:      "Documents with at least one connected session.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "notegraph",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Current number of edges in the link graph.",
		}),
		LinkExtractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notegraph",
			Subsystem: "graph",
			Name:      "extractions_total",
			Help:      "Link extraction passes run after settled edits.",
		}),
		BroadcastLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notegraph",
			Subsystem: "collab",
			Name:      "broadcast_latency_seconds",
			Help:      "Time from acceptance to broadcast enqueue.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.OperationsAccepted,
		m.OperationsRejected,
		m.TransformDepth,
		m.ActiveSessions,
		m.ActiveDocuments,
		m.GraphEdges,
		m.LinkExtractions,
		m.BroadcastLatency,
	)
	return m
}
