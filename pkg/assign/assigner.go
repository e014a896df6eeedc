// Package assign implements the branch-assignment engine: it maps every
// commit of a pushed batch onto one or more destination branch ids before
// any content is replayed into the target system. The computation is a
// single synchronous pass over in-memory state; one Assigner serves
// exactly one push.
package assign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// Sentinel errors for the engine.
var (
	// ErrAlreadyRun is returned when Assign is invoked twice on the same
	// engine instance.
	ErrAlreadyRun = errors.New("assigner is single-use per push")

	// ErrNoDAGProvider is returned when the engine is constructed
	// without a commit graph source.
	ErrNoDAGProvider = errors.New("no DAG provider")

	// ErrNoBranchTable is returned when the engine is constructed
	// without a branch table.
	ErrNoBranchTable = errors.New("no branch table")

	// ErrRefNotResolved marks the invariant violation of a pushed
	// reference missing from the resolved table at forced-head time.
	ErrRefNotResolved = errors.New("pushed reference missing from resolved table")
)

// PushRef is one reference update of the push. A zero Old means a
// brand-new reference; a zero New means the reference was deleted and
// contributes no assignments.
type PushRef struct {
	Name string
	Old  gitlib.Hash
	New  gitlib.Hash
}

// Params configures a new Assigner.
type Params struct {
	// DAG supplies the push's commit graph. Required.
	DAG DAGProvider

	// Branches is the table of known destination branches. Required;
	// the engine allocates anonymous records into it.
	Branches *branch.Table

	// Refs resolves non-pushed reference names. Optional.
	Refs RefResolver

	// Previous is the persisted commit→branch index. Optional.
	Previous PreviousIndex

	// Logger receives structured progress and skip diagnostics.
	// Optional; nil discards.
	Logger *slog.Logger

	// Metrics receives engine counters. Optional.
	Metrics Metrics

	Options Options
}

// Assigner computes the commit→branch map for one push. Not safe for
// concurrent use and single-use: construct one per push.
type Assigner struct {
	opts    Options
	dag     DAGProvider
	refs    RefResolver
	table   *branch.Table
	prev    PreviousIndex
	logger  *slog.Logger
	metrics Metrics

	store    *nodeStore
	resolved map[string]gitlib.Hash // reference name → head commit
	run      bool
}

// New creates an engine for one push.
func New(p Params) (*Assigner, error) {
	if p.DAG == nil {
		return nil, ErrNoDAGProvider
	}

	if p.Branches == nil {
		return nil, ErrNoBranchTable
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	metrics := p.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Assigner{
		opts:    p.Options,
		dag:     p.DAG,
		refs:    p.Refs,
		table:   p.Branches,
		prev:    p.Previous,
		logger:  logger,
		metrics: metrics,
		store:   newNodeStore(),
	}, nil
}

// Assign runs the full computation for the given reference updates and
// returns the frozen commit→branch map. Phases run strictly in order:
// ingest, resolve references, reachability-then-walk per branch in fixed
// order, anonymous fallback, forced heads, compaction. Any error leaves
// the result unusable.
func (a *Assigner) Assign(ctx context.Context, push []PushRef) (*Result, error) {
	if a.run {
		return nil, ErrAlreadyRun
	}

	a.run = true

	if err := a.ingest(ctx, push); err != nil {
		return nil, err
	}

	a.store.linkChildren()

	if err := a.resolveRefs(ctx, push); err != nil {
		return nil, err
	}

	if err := a.seedPrevious(ctx); err != nil {
		return nil, err
	}

	a.walkNamed(ctx, push)
	a.assignAnonymous(ctx)

	if err := a.forceHeads(ctx, push); err != nil {
		return nil, err
	}

	return a.finish(), nil
}

// ingest builds the node store from the provider's topological listings:
// one combined multi-range query, then a supplemental per-reference query
// for any reference whose old head the combined walk never reached (its
// connecting path may have been hidden by another reference's range).
func (a *Assigner) ingest(ctx context.Context, push []PushRef) error {
	specs := make([]gitlib.RangeSpec, 0, len(push))

	for _, ref := range push {
		if ref.New.IsZero() {
			continue // deleted reference: contributes nothing
		}

		specs = append(specs, gitlib.RangeSpec{Old: ref.Old, New: ref.New})
	}

	rows, err := a.dag.ListRanges(ctx, specs)
	if err != nil {
		return fmt.Errorf("list push ranges: %w", err)
	}

	for _, row := range rows {
		a.store.addListed(row.ID, row.Parents)
	}

	if len(specs) > 1 {
		for _, spec := range specs {
			if spec.Old.IsZero() {
				continue
			}

			if _, ok := a.store.get(spec.Old); ok {
				continue
			}

			extra, err := a.dag.ListRanges(ctx, []gitlib.RangeSpec{spec})
			if err != nil {
				return fmt.Errorf("list supplemental range %s..%s: %w", spec.Old.Prefix(12), spec.New.Prefix(12), err)
			}

			for _, row := range extra {
				a.store.addListed(row.ID, row.Parents)
			}
		}
	}

	a.metrics.CommitsIngested(a.store.listedCount(), a.store.placeholderCount())
	a.logger.DebugContext(ctx, "assign: ingested push",
		"ranges", len(specs),
		"commits", a.store.listedCount(),
		"placeholders", a.store.placeholderCount(),
	)

	return nil
}

// resolveRefs builds the resolved reference table: every known non-deleted
// named branch plus every pushed reference. Pushed references resolve to
// their stated new head; others go through the external resolver.
// Unresolvable references are logged and skipped. References with no named
// branch record get a newly allocated record, a push to a name held by a
// deleted record revives that record, and a node is ensured for every
// resolved head so forced assignment can reach it.
func (a *Assigner) resolveRefs(ctx context.Context, push []PushRef) error {
	pushedByName := make(map[string]PushRef, len(push))
	for _, ref := range push {
		pushedByName[ref.Name] = ref
	}

	// Known branches first (sorted by name), then pushed refs in push
	// order. Duplicates resolve once.
	var names []string

	for _, rec := range a.table.Named() {
		names = append(names, rec.Name)
	}

	for _, ref := range push {
		// A deleted record does not keep its pushed name out of the set
		// of interest: every reference present in the push participates.
		if rec, ok := a.table.ByName(ref.Name); !ok || rec.Deleted {
			names = append(names, ref.Name)
		}
	}

	a.resolved = make(map[string]gitlib.Hash, len(names))

	for _, name := range names {
		if _, done := a.resolved[name]; done {
			continue
		}

		head, err := a.resolveOne(ctx, name, pushedByName)
		if err != nil {
			a.logger.WarnContext(ctx, "assign: skipping unresolvable reference", "ref", name, "err", err)

			continue
		}

		if head.IsZero() {
			continue // deleted reference
		}

		a.resolved[name] = head

		rec, ok := a.table.ByName(name)

		switch {
		case !ok:
			rec = a.table.Allocate(name)
			a.logger.DebugContext(ctx, "assign: allocated branch for new reference", "ref", name, "branch", rec.ID)
		case rec.Deleted:
			// Only pushed names reach here (Named skips deleted records):
			// the push revives the branch under its existing id.
			rec.Deleted = false
			a.logger.DebugContext(ctx, "assign: revived deleted branch", "ref", name, "branch", rec.ID)
		}

		if pushed, isPushed := pushedByName[name]; isPushed && !pushed.Old.IsZero() {
			rec.SetOldHead(pushed.Old)
		}

		a.store.ensure(head)
	}

	return nil
}

// errNotPushed is an internal marker: the name needs external resolution.
var errNotPushed = errors.New("reference not part of push")

func (a *Assigner) resolveOne(ctx context.Context, name string, pushed map[string]PushRef) (gitlib.Hash, error) {
	if ref, ok := pushed[name]; ok {
		return ref.New, nil
	}

	if a.refs == nil {
		return gitlib.Hash{}, errNotPushed
	}

	head, err := a.refs.ResolveRef(ctx, name)
	if err != nil {
		return gitlib.Hash{}, err
	}

	return head, nil
}

// seedPrevious pre-loads branch ids persisted by earlier pushes so the
// computation is idempotent across runs. Without an index this is a no-op.
func (a *Assigner) seedPrevious(ctx context.Context) error {
	if !a.opts.AssignPrevious || a.prev == nil {
		return nil
	}

	seeded := 0

	for _, id := range a.store.order {
		ids, err := a.prev.BranchesFor(ctx, id)
		if err != nil {
			return fmt.Errorf("previous assignments for %s: %w", id.Prefix(12), err)
		}

		node := a.store.nodes[id]
		for _, branchID := range ids {
			if node.addBranch(branchID) {
				seeded++
			}
		}
	}

	a.metrics.CommitsAssigned(PhasePrevious, seeded)

	if seeded > 0 {
		a.logger.DebugContext(ctx, "assign: seeded previous assignments", "count", seeded)
	}

	return nil
}

// walkNamed runs reachability marking and the path walk for every pushed
// named branch, in the fixed processing order.
func (a *Assigner) walkNamed(ctx context.Context, push []PushRef) {
	pushedSet := make(map[string]bool, len(push))
	for _, ref := range push {
		pushedSet[ref.Name] = true
	}

	order := a.table.ProcessingOrder(func(name string) bool { return pushedSet[name] })

	for _, rec := range order {
		head, ok := a.resolved[rec.Name]
		if !ok {
			continue // deleted or unresolvable: the walk is a no-op
		}

		oldHead, hasOld := rec.OldHead()
		restricted := a.opts.ConnectToPreviousHead && hasOld

		if restricted {
			a.markReachable(rec.ID, oldHead)
		}

		assigned := a.walk(rec.ID, head, restricted)
		a.metrics.CommitsAssigned(PhaseNamed, assigned)
		a.logger.DebugContext(ctx, "assign: walked branch",
			"ref", rec.Name,
			"branch", rec.ID,
			"restricted", restricted,
			"assigned", assigned,
		)
	}
}

// forceHeads stamps every pushed reference's branch id onto its new head,
// even when another branch's walk got there first. Every pushed reference
// then produces a destination-side change on its own branch.
func (a *Assigner) forceHeads(ctx context.Context, push []PushRef) error {
	forced := 0

	for _, ref := range push {
		if ref.New.IsZero() {
			continue
		}

		if _, ok := a.resolved[ref.Name]; !ok {
			return fmt.Errorf("force head %q: %w", ref.Name, ErrRefNotResolved)
		}

		rec, ok := a.table.ByName(ref.Name)
		if !ok {
			return fmt.Errorf("force head %q: %w", ref.Name, ErrRefNotResolved)
		}

		node, ok := a.store.get(ref.New)
		if !ok {
			return fmt.Errorf("force head %q at %s: %w", ref.Name, ref.New.Prefix(12), ErrRefNotResolved)
		}

		if node.addBranch(rec.ID) {
			forced++
		}
	}

	a.metrics.CommitsAssigned(PhaseForced, forced)

	if forced > 0 {
		a.logger.DebugContext(ctx, "assign: forced head assignments", "count", forced)
	}

	return nil
}
