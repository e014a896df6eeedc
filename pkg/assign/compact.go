package assign

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// Number of hash hex digits shown by the diagnostic dump.
const dumpPrefixLen = 12

// Result is the frozen output of one assignment run: for every commit that
// ended with at least one branch, its sorted branch id list. Commits from
// the push's topological list are always present; parent-only placeholders
// appear only when a walk reached them.
type Result struct {
	// Branches maps commit id to its sorted destination branch ids.
	Branches map[gitlib.Hash][]branch.ID

	// Order is the push's topological commit list, newest first. Dump
	// and downstream replay iterate it instead of the map.
	Order []gitlib.Hash
}

// finish freezes every node into the result map. With CompactOnFinish the
// working table is dropped afterward; the move never mutates a node shape
// in place, and skipping compaction changes nothing about the map.
func (a *Assigner) finish() *Result {
	res := &Result{
		Branches: make(map[gitlib.Hash][]branch.ID, len(a.store.order)),
		Order:    a.store.order,
	}

	for _, id := range a.store.order {
		res.Branches[id] = frozenIDs(a.store.nodes[id])
	}

	// Placeholders a walk assigned (connecting to an old head) are part
	// of the map too; untouched ones are not.
	for id, node := range a.store.nodes {
		if node.listed || !node.assigned() {
			continue
		}

		res.Branches[id] = frozenIDs(node)
	}

	if a.opts.CompactOnFinish {
		a.store = newNodeStore()
	}

	return res
}

func frozenIDs(node *commitNode) []branch.ID {
	ids := make([]branch.ID, len(node.branches))
	copy(ids, node.branches)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// SubjectFunc supplies the one-line commit subject for the dump. May be
// nil.
type SubjectFunc func(id gitlib.Hash) string

// Dump writes the diagnostic listing, one line per listed commit in
// topological order: `<id-prefix> <branch-id(s)> <subject>`. Operator
// inspection only; not a stable machine interface.
func (r *Result) Dump(w io.Writer, subject SubjectFunc) error {
	for _, id := range r.Order {
		ids := r.Branches[id]

		labels := make([]string, len(ids))
		for i, branchID := range ids {
			labels[i] = string(branchID)
		}

		line := id.Prefix(dumpPrefixLen) + " " + strings.Join(labels, ",")
		if subject != nil {
			if s := subject(id); s != "" {
				line += " " + s
			}
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
	}

	return nil
}
