package assign

import (
	"context"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
)

// assignAnonymous is the fallback stage: after every named branch has
// walked, scan the push's topological list newest to oldest and give each
// still-unassigned commit an anonymous branch, then walk that branch from
// the commit with no reachability restriction. One anonymous record may
// cover several disjoint islands of history; fewer branches overall is the
// intended trade.
func (a *Assigner) assignAnonymous(ctx context.Context) {
	assigned := 0
	islands := 0

	for _, id := range a.store.order {
		node := a.store.nodes[id]
		if node.assigned() {
			continue
		}

		anon := a.pickAnonymous(ctx)
		assigned += a.walk(anon.ID, id, false)
		islands++
	}

	a.metrics.CommitsAssigned(PhaseAnonymous, assigned)

	if assigned > 0 {
		a.logger.DebugContext(ctx, "assign: anonymous fallback",
			"islands", islands,
			"assigned", assigned,
		)
	}
}

// pickAnonymous reuses the smallest-id unnamed record for determinism, or
// allocates the table's first one.
func (a *Assigner) pickAnonymous(ctx context.Context) *branch.Record {
	if anon := a.table.Anonymous(); len(anon) > 0 {
		return anon[0]
	}

	rec := a.table.Allocate("")
	a.metrics.AnonymousAllocated()
	a.logger.DebugContext(ctx, "assign: allocated anonymous branch", "branch", rec.ID)

	return rec
}
