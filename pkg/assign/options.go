package assign

// Options are the behavioral flags of the assignment engine. The zero
// value disables everything; DefaultOptions matches normal incremental
// push processing.
type Options struct {
	// AssignPrevious pre-seeds nodes from the persisted commit→branch
	// index before any walking, making repeated pushes idempotent.
	AssignPrevious bool

	// ConnectToPreviousHead restricts a named branch's walk to commits
	// reachable from its old head. When false the walk runs unrestricted
	// to the start of pushed history (full-history reconstruction).
	ConnectToPreviousHead bool

	// CompactOnFinish discards per-node working state after the output
	// map is built. Memory-only; no effect on the map itself.
	CompactOnFinish bool

	// TunnelMaxLen bounds how many consecutive already-foreign-owned
	// commits a walk may cross. Zero or negative means unbounded.
	TunnelMaxLen int

	// TunnelAssign adds the walking branch's id to foreign-owned nodes
	// while tunneling, giving every touching branch its own change over
	// shared ancestry.
	TunnelAssign bool
}

// DefaultOptions returns the flags used for ordinary incremental pushes.
func DefaultOptions() Options {
	return Options{
		AssignPrevious:        true,
		ConnectToPreviousHead: true,
		CompactOnFinish:       true,
	}
}
