package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ironsheep/pathway-extract/internal/graph"
)

// Metrics are the Prometheus collectors updated by an Extractor.
type Metrics struct {
	Runs        *prometheus.CounterVec
	Nodes       prometheus.Counter
	Edges       *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathway_extract_runs_total",
				Help: "Extraction runs by outcome",
			},
			[]string{"outcome"},
		),
		Nodes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pathway_extract_nodes_total",
				Help: "Nodes built across all runs",
			},
		),
		Edges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathway_extract_edges_total",
				Help: "Edges detected across all runs, by kind",
			},
			[]string{"kind"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathway_extract_run_duration_seconds",
				Help:    "Time spent on one extraction run",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Nodes, m.Edges, m.RunDuration)
	}
	return m
}

func (m *Metrics) observeGraph(g *graph.Graph) {
	m.Nodes.Add(float64(len(g.Nodes)))
	for kind, n := range g.CountByKind() {
		m.Edges.WithLabelValues(string(kind)).Add(float64(n))
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
