package assign

import (
	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// commitNode is the per-commit working state. Edges are stored as hash
// lists into the store's table, never as embedded node pointers, so the
// parent/child cross-links cannot alias.
type commitNode struct {
	id       gitlib.Hash
	parents  []gitlib.Hash // declared order; index 0 is the first-parent
	children []gitlib.Hash // filled by linkChildren after ingestion

	// branches is the insertion-ordered set of destination branches
	// assigned so far. It normally converges to one entry; multiple
	// pushed heads on the same commit produce more.
	branches []branch.ID

	// reachedBy tags the node as reachable from the old head of the
	// named branch currently being processed. Compared by value; it is
	// only meaningful during that branch's own step and is overwritten
	// by later branches.
	reachedBy branch.ID

	// listed marks commits present in the push's topological list.
	// Unlisted nodes are parent-only placeholders and may end with no
	// branches at all.
	listed bool
}

func (n *commitNode) assigned() bool {
	return len(n.branches) > 0
}

func (n *commitNode) hasBranch(id branch.ID) bool {
	for _, b := range n.branches {
		if b == id {
			return true
		}
	}

	return false
}

// addBranch adds id to the node's branch set. Returns false when the id
// was already present.
func (n *commitNode) addBranch(id branch.ID) bool {
	if n.hasBranch(id) {
		return false
	}

	n.branches = append(n.branches, id)

	return true
}

func (n *commitNode) removeBranch(id branch.ID) {
	for i, b := range n.branches {
		if b == id {
			n.branches = append(n.branches[:i], n.branches[i+1:]...)

			return
		}
	}
}

// nodeStore is the in-memory table of working nodes for one push. Owned
// exclusively by one Assigner; never shared.
type nodeStore struct {
	nodes map[gitlib.Hash]*commitNode

	// order lists the listed commits in topological order, newest first.
	// Every deterministic scan runs over this slice, never over the map.
	order []gitlib.Hash
}

func newNodeStore() *nodeStore {
	return &nodeStore{nodes: make(map[gitlib.Hash]*commitNode)}
}

func (s *nodeStore) get(id gitlib.Hash) (*commitNode, bool) {
	node, ok := s.nodes[id]

	return node, ok
}

// ensure returns the node for id, creating a parent-only placeholder when
// none exists yet.
func (s *nodeStore) ensure(id gitlib.Hash) *commitNode {
	if node, ok := s.nodes[id]; ok {
		return node
	}

	node := &commitNode{id: id}
	s.nodes[id] = node

	return node
}

// addListed records one row of the topological listing, upgrading an
// existing placeholder in place. Re-listing the same commit (overlapping
// supplemental ranges) is a no-op. Placeholders are created for every
// referenced parent.
func (s *nodeStore) addListed(id gitlib.Hash, parents []gitlib.Hash) {
	node := s.ensure(id)
	if node.listed {
		return
	}

	node.listed = true
	node.parents = parents
	s.order = append(s.order, id)

	for _, parent := range parents {
		s.ensure(parent)
	}
}

// linkChildren back-links every listed node's parents. Placeholders have
// no recorded parents so only listed nodes contribute edges; the scan over
// the order slice keeps child lists deterministic.
func (s *nodeStore) linkChildren() {
	for _, id := range s.order {
		node := s.nodes[id]
		for _, parent := range node.parents {
			if p, ok := s.nodes[parent]; ok {
				p.children = append(p.children, id)
			}
		}
	}
}

// listedCount and placeholderCount report store composition for logging.
func (s *nodeStore) listedCount() int {
	return len(s.order)
}

func (s *nodeStore) placeholderCount() int {
	return len(s.nodes) - len(s.order)
}
