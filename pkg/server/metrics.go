package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// Metrics records graph builds. It is registered with the graph store as an observer.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	nodes    prometheus.Gauge
	edges    prometheus.Gauge
	issues   *prometheus.GaugeVec
}

// NewMetrics creates the graph metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Labels: result (success, error)
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compmap",
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total graph builds by result",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "compmap",
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Graph build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "compmap",
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Nodes in the published graph",
		}),
		edges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "compmap",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edges in the published graph",
		}),
		// Labels: kind (cycle, mutual_dependency)
		issues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "compmap",
			Subsystem: "graph",
			Name:      "issues",
			Help:      "Detected issues in the published graph by kind",
		}, []string{"kind"}),
	}
}

// ObserveBuild implements graph.Observer. Gauges only move on successful builds,
// matching the graph that readers see.
func (m *Metrics) ObserveBuild(g *models.Graph, duration time.Duration, err error) {
	m.duration.Observe(duration.Seconds())
	if err != nil || g == nil {
		m.builds.WithLabelValues("error").Inc()
		return
	}
	m.builds.WithLabelValues("success").Inc()

	m.nodes.Set(float64(len(g.Nodes)))
	m.edges.Set(float64(g.EdgeCount()))
	for _, kind := range []models.IssueKind{models.IssueCycle, models.IssueMutualDependency} {
		m.issues.WithLabelValues(string(kind)).Set(float64(len(g.IssuesOfKind(kind))))
	}
}
