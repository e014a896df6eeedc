package assign

import (
	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// walk traces one branch's lineage backward from its new head, assigning
// the branch along the way. Exactly one parent is followed per step, so a
// walk is always a single chain, never a tree. Returns the number of
// assignments that survived (tunnel rollbacks subtract).
func (a *Assigner) walk(id branch.ID, head gitlib.Hash, restricted bool) int {
	node, ok := a.store.get(head)
	if !ok {
		return 0
	}

	guard := newTunnelGuard(a.opts.TunnelMaxLen)
	assigned := 0

	for {
		if !node.hasBranch(id) {
			foreign := node.assigned()

			switch {
			case !foreign:
				node.addBranch(id)

				assigned++
			case a.opts.TunnelAssign:
				// Tunnel-assign gives this branch its own change
				// over shared ancestry; the guard remembers the add
				// so a vetoed run can take it back.
				node.addBranch(id)
				guard.noteAdd(node)

				assigned++
			}
		}

		next := a.pickParent(node, id, restricted)
		if next == nil {
			return assigned
		}

		if !guard.permit(next) {
			undone := guard.rollback(id)
			assigned -= undone
			a.metrics.TunnelRollback(undone)

			return assigned
		}

		node = next
	}
}

// pickParent selects the single parent the walk continues to, following
// the fixed precedence:
//
//  1. any parent already carrying this branch id (a branch never forks),
//  2. the first-parent, if unassigned,
//  3. any other unassigned parent, in declared order,
//  4. the first-parent, if assigned to a different branch,
//  5. any other assigned parent, in declared order.
//
// When the reachability restriction is in effect, only parents tagged by
// this branch's marking pass qualify at every rank. Parents outside the
// store reference history beyond the push and never qualify. Returns nil
// when no parent qualifies: the walk is complete.
func (a *Assigner) pickParent(node *commitNode, id branch.ID, restricted bool) *commitNode {
	candidates := make([]*commitNode, 0, len(node.parents))

	var first *commitNode

	for i, pid := range node.parents {
		p, ok := a.store.get(pid)
		if !ok {
			continue
		}

		if restricted && p.reachedBy != id {
			continue
		}

		candidates = append(candidates, p)

		if i == 0 {
			first = p
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	for _, p := range candidates {
		if p.hasBranch(id) {
			return p
		}
	}

	if first != nil && !first.assigned() {
		return first
	}

	for _, p := range candidates {
		if !p.assigned() {
			return p
		}
	}

	if first != nil {
		return first
	}

	return candidates[0]
}

// tunnelGuard bounds how many consecutive foreign-owned commits one walk
// may cross. Disabled (max <= 0) it permits everything and tracks nothing.
type tunnelGuard struct {
	max     int
	runLen  int
	runAdds []*commitNode
}

func newTunnelGuard(maxLen int) *tunnelGuard {
	return &tunnelGuard{max: maxLen}
}

// permit decides whether the walk may advance to candidate. An unassigned
// candidate is fresh lineage: the current run commits and the counter
// resets. A foreign candidate extends the run while below the bound.
func (g *tunnelGuard) permit(candidate *commitNode) bool {
	if g.max <= 0 {
		return true
	}

	if !candidate.assigned() {
		g.runLen = 0
		g.runAdds = g.runAdds[:0]

		return true
	}

	if g.runLen < g.max {
		g.runLen++

		return true
	}

	return false
}

// noteAdd records an assignment made on foreign territory during the
// current run so rollback can undo exactly what this run added. A foreign
// head node was never crossed (runLen still zero) and stays out of the run.
func (g *tunnelGuard) noteAdd(node *commitNode) {
	if g.max > 0 && g.runLen > 0 {
		g.runAdds = append(g.runAdds, node)
	}
}

// rollback removes the branch id from every node the current run assigned
// and returns how many it undid. The walk must stop afterward.
func (g *tunnelGuard) rollback(id branch.ID) int {
	undone := len(g.runAdds)

	for _, node := range g.runAdds {
		node.removeBranch(id)
	}

	g.runAdds = nil
	g.runLen = 0

	return undone
}
