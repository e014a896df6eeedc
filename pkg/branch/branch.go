// Package branch models destination branch records: the fixed, named
// branch containers of the target system plus the anonymous records
// allocated for history no named branch claims.
package branch

import (
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// ID identifies a destination branch. IDs are compared by value; the
// engine never relies on record object identity.
type ID string

// Record describes one destination branch. Records are owned by the
// surrounding system's branch configuration; the engine consumes them and
// allocates new anonymous ones through a Table.
type Record struct {
	// ID is the destination branch identifier.
	ID ID

	// Name is the symbolic reference name this branch tracks. Empty for
	// anonymous records.
	Name string

	// Primary marks the one branch treated as the default point of
	// history. At most one record in a table is primary.
	Primary bool

	// Lightweight classifies how the destination stores file content.
	// It only breaks processing-order ties here.
	Lightweight bool

	// Deleted branches take no part in assignment.
	Deleted bool

	oldHead    gitlib.Hash
	oldHeadSet bool
}

// IsAnonymous reports whether the record has no symbolic name.
func (r *Record) IsAnonymous() bool {
	return r.Name == ""
}

// SetOldHead records the branch's head commit from a prior push.
func (r *Record) SetOldHead(head gitlib.Hash) {
	r.oldHead = head
	r.oldHeadSet = true
}

// OldHead returns the branch's prior-push head and whether one is known.
// A zero head counts as unknown: a branch that never existed before has
// no lineage to restrict walks to.
func (r *Record) OldHead() (gitlib.Hash, bool) {
	if !r.oldHeadSet || r.oldHead.IsZero() {
		return gitlib.Hash{}, false
	}

	return r.oldHead, true
}
