package assign_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitbridge/pkg/assign"
	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// h builds a hash from a short hex label.
func h(label string) gitlib.Hash {
	return gitlib.NewHash(label)
}

// fakeGraph is an in-memory DAG provider with git-range semantics: a range
// lists commits reachable from New minus commits reachable from any Old of
// the query, in global topological order, newest first.
type fakeGraph struct {
	order   []gitlib.Hash // newest first
	parents map[gitlib.Hash][]gitlib.Hash
	queries int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{parents: make(map[gitlib.Hash][]gitlib.Hash)}
}

// commit declares a commit; call in root-to-head order.
func (g *fakeGraph) commit(id gitlib.Hash, parents ...gitlib.Hash) {
	g.order = append([]gitlib.Hash{id}, g.order...)
	g.parents[id] = parents
}

func (g *fakeGraph) reachable(from gitlib.Hash) map[gitlib.Hash]bool {
	seen := make(map[gitlib.Hash]bool)
	stack := []gitlib.Hash{from}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[id] {
			continue
		}

		if _, known := g.parents[id]; !known {
			continue
		}

		seen[id] = true
		stack = append(stack, g.parents[id]...)
	}

	return seen
}

func (g *fakeGraph) ListRanges(_ context.Context, specs []gitlib.RangeSpec) ([]gitlib.CommitRow, error) {
	g.queries++

	include := make(map[gitlib.Hash]bool)
	exclude := make(map[gitlib.Hash]bool)

	for _, spec := range specs {
		if spec.New.IsZero() {
			continue
		}

		for id := range g.reachable(spec.New) {
			include[id] = true
		}

		if !spec.Old.IsZero() {
			for id := range g.reachable(spec.Old) {
				exclude[id] = true
			}
		}
	}

	var rows []gitlib.CommitRow

	for _, id := range g.order {
		if include[id] && !exclude[id] {
			rows = append(rows, gitlib.CommitRow{ID: id, Parents: g.parents[id]})
		}
	}

	return rows, nil
}

// fakeRefs resolves reference names from a fixed map.
type fakeRefs map[string]gitlib.Hash

var errFakeRefMissing = errors.New("no such reference")

func (f fakeRefs) ResolveRef(_ context.Context, name string) (gitlib.Hash, error) {
	head, ok := f[name]
	if !ok {
		return gitlib.Hash{}, errFakeRefMissing
	}

	return head, nil
}

// fakeIndex is an in-memory persisted commit→branch index.
type fakeIndex map[gitlib.Hash][]branch.ID

func (f fakeIndex) BranchesFor(_ context.Context, id gitlib.Hash) ([]branch.ID, error) {
	return f[id], nil
}

// recorder counts metric callbacks.
type recorder struct {
	mu        sync.Mutex
	ingested  [2]int
	assigned  map[string]int
	rollbacks int
	undone    int
	anonymous int
}

func newRecorder() *recorder {
	return &recorder{assigned: make(map[string]int)}
}

func (r *recorder) CommitsIngested(listed, placeholders int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested = [2]int{listed, placeholders}
}

func (r *recorder) CommitsAssigned(phase string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assigned[phase] += count
}

func (r *recorder) TunnelRollback(undone int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollbacks++
	r.undone += undone
}

func (r *recorder) AnonymousAllocated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anonymous++
}

// newTable builds a branch table with a deterministic id source.
func newTable(t *testing.T, records ...*branch.Record) *branch.Table {
	t.Helper()

	table := branch.NewTable(&branch.SequentialIDs{Prefix: "anon-"})
	for _, rec := range records {
		require.NoError(t, table.Add(rec))
	}

	return table
}

// runAssign constructs an engine and runs it, failing the test on error.
func runAssign(t *testing.T, p assign.Params, push []assign.PushRef) *assign.Result {
	t.Helper()

	engine, err := assign.New(p)
	require.NoError(t, err)

	result, err := engine.Assign(context.Background(), push)
	require.NoError(t, err)

	return result
}

// branchesOf returns the branch list for a commit, nil when absent.
func branchesOf(result *assign.Result, id gitlib.Hash) []branch.ID {
	return result.Branches[id]
}

// hasID reports whether the commit's list contains the branch id.
func hasID(result *assign.Result, commit gitlib.Hash, id branch.ID) bool {
	for _, b := range branchesOf(result, commit) {
		if b == id {
			return true
		}
	}

	return false
}
