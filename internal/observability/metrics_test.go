package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitbridge/internal/observability"
	"github.com/Sumatoshi-tech/gitbridge/pkg/assign"
)

// The metrics type must satisfy the engine's interface.
var _ assign.Metrics = (*observability.AssignMetrics)(nil)

func TestAssignMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := observability.NewAssignMetrics(reg)

	metrics.CommitsIngested(120, 7)
	metrics.CommitsAssigned(assign.PhaseNamed, 100)
	metrics.CommitsAssigned(assign.PhaseNamed, 15)
	metrics.CommitsAssigned(assign.PhaseAnonymous, 5)
	metrics.TunnelRollback(3)
	metrics.AnonymousAllocated()

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName()
			for _, label := range metric.GetLabel() {
				key += "{" + label.GetValue() + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				values[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[key] = metric.GetGauge().GetValue()
			}
		}
	}

	assert.InDelta(t, 120, values["gitbridge_assign_commits_ingested{listed}"], 0)
	assert.InDelta(t, 7, values["gitbridge_assign_commits_ingested{placeholder}"], 0)
	assert.InDelta(t, 115, values["gitbridge_assign_commits_assigned_total{named}"], 0)
	assert.InDelta(t, 5, values["gitbridge_assign_commits_assigned_total{anonymous}"], 0)
	assert.InDelta(t, 1, values["gitbridge_assign_tunnel_rollbacks_total"], 0)
	assert.InDelta(t, 3, values["gitbridge_assign_tunnel_undone_total"], 0)
	assert.InDelta(t, 1, values["gitbridge_assign_anonymous_branches_total"], 0)
}
