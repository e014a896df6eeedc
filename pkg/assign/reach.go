package assign

import (
	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// markReachable tags every descendant of the branch's old head (the old
// head included) with the branch id, so the path walk can restrict itself
// to this branch's own lineage. Depth-first over child edges; a child
// already tagged with the same id short-circuits convergent merges.
// Re-tagging nodes visited under a different branch is normal: the tag is
// only valid during this branch's own step. A no-op when the old head is
// outside the store (fully external history).
func (a *Assigner) markReachable(id branch.ID, oldHead gitlib.Hash) {
	start, ok := a.store.get(oldHead)
	if !ok {
		return
	}

	stack := []*commitNode{start}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.reachedBy == id {
			continue
		}

		node.reachedBy = id

		for _, child := range node.children {
			if c, ok := a.store.get(child); ok && c.reachedBy != id {
				stack = append(stack, c)
			}
		}
	}
}
