package assign

import (
	"context"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// DAGProvider supplies the push's commit graph: for a set of ranges, a
// topologically ordered listing (newest before oldest) of commit ids with
// their parent ids, first-parent first. gitlib.Repository implements it.
type DAGProvider interface {
	ListRanges(ctx context.Context, specs []gitlib.RangeSpec) ([]gitlib.CommitRow, error)
}

// RefResolver resolves symbolic reference names that are not part of the
// push (pushed refs carry their new head directly). A nil resolver makes
// every non-pushed reference unresolvable, which is logged and skipped.
type RefResolver interface {
	ResolveRef(ctx context.Context, name string) (gitlib.Hash, error)
}

// PreviousIndex looks up branch assignments persisted by earlier pushes.
// An empty result means the commit has never been assigned. A nil index
// degrades AssignPrevious to a no-op.
type PreviousIndex interface {
	BranchesFor(ctx context.Context, id gitlib.Hash) ([]branch.ID, error)
}

// Assignment phases reported to Metrics.
const (
	PhasePrevious  = "previous"
	PhaseNamed     = "named"
	PhaseAnonymous = "anonymous"
	PhaseForced    = "forced"
)

// Metrics receives engine counters. All methods must be cheap; they are
// called from the hot walking loop. A nil Metrics disables reporting.
type Metrics interface {
	// CommitsIngested reports store composition after DAG ingestion.
	CommitsIngested(listed, placeholders int)
	// CommitsAssigned reports how many assignments a phase added.
	CommitsAssigned(phase string, count int)
	// TunnelRollback reports one vetoed tunnel run and how many
	// assignments it undid.
	TunnelRollback(undone int)
	// AnonymousAllocated reports one newly allocated anonymous branch.
	AnonymousAllocated()
}

// nopMetrics backs a nil Metrics so call sites stay unconditional.
type nopMetrics struct{}

func (nopMetrics) CommitsIngested(int, int)    {}
func (nopMetrics) CommitsAssigned(string, int) {}
func (nopMetrics) TunnelRollback(int)          {}
func (nopMetrics) AnonymousAllocated()         {}
