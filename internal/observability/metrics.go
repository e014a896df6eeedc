// Package observability exposes prometheus instrumentation for the
// assignment engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names.
const (
	metricIngested     = "gitbridge_assign_commits_ingested"
	metricAssigned     = "gitbridge_assign_commits_assigned_total"
	metricRollbacks    = "gitbridge_assign_tunnel_rollbacks_total"
	metricUndone       = "gitbridge_assign_tunnel_undone_total"
	metricAnonBranches = "gitbridge_assign_anonymous_branches_total"

	labelKind  = "kind"
	labelPhase = "phase"

	kindListed      = "listed"
	kindPlaceholder = "placeholder"
)

// AssignMetrics implements the engine's Metrics interface on a prometheus
// registry.
type AssignMetrics struct {
	ingested     *prometheus.GaugeVec
	assigned     *prometheus.CounterVec
	rollbacks    prometheus.Counter
	undone       prometheus.Counter
	anonBranches prometheus.Counter
}

// NewAssignMetrics registers the engine instruments with the given
// registerer.
func NewAssignMetrics(reg prometheus.Registerer) *AssignMetrics {
	factory := promauto.With(reg)

	return &AssignMetrics{
		ingested: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: metricIngested,
			Help: "Node store composition after DAG ingestion.",
		}, []string{labelKind}),
		assigned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricAssigned,
			Help: "Branch assignments added, by engine phase.",
		}, []string{labelPhase}),
		rollbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: metricRollbacks,
			Help: "Tunnel runs vetoed and rolled back.",
		}),
		undone: factory.NewCounter(prometheus.CounterOpts{
			Name: metricUndone,
			Help: "Assignments undone by tunnel rollbacks.",
		}),
		anonBranches: factory.NewCounter(prometheus.CounterOpts{
			Name: metricAnonBranches,
			Help: "Anonymous branch records allocated by the fallback stage.",
		}),
	}
}

// CommitsIngested records store composition after ingestion.
func (m *AssignMetrics) CommitsIngested(listed, placeholders int) {
	m.ingested.WithLabelValues(kindListed).Set(float64(listed))
	m.ingested.WithLabelValues(kindPlaceholder).Set(float64(placeholders))
}

// CommitsAssigned counts assignments added by a phase.
func (m *AssignMetrics) CommitsAssigned(phase string, count int) {
	m.assigned.WithLabelValues(phase).Add(float64(count))
}

// TunnelRollback counts one vetoed tunnel run.
func (m *AssignMetrics) TunnelRollback(undone int) {
	m.rollbacks.Inc()
	m.undone.Add(float64(undone))
}

// AnonymousAllocated counts one new anonymous branch.
func (m *AssignMetrics) AnonymousAllocated() {
	m.anonBranches.Inc()
}
