package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/gitbridge/pkg/safeconv"
)

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Message returns the full commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// Summary returns the one-line commit subject.
func (c *Commit) Summary() string {
	return c.commit.Summary()
}

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int {
	return safeconv.MustUintToInt(c.commit.ParentCount())
}

// ParentHash returns the hash of the nth parent.
func (c *Commit) ParentHash(n int) Hash {
	return HashFromOid(c.commit.ParentId(safeconv.MustIntToUint(n)))
}

// ParentHashes returns all parent hashes in declared order; index 0 is the
// first-parent.
func (c *Commit) ParentHashes() []Hash {
	count := c.NumParents()
	parents := make([]Hash, count)

	for i := range count {
		parents[i] = c.ParentHash(i)
	}

	return parents
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}
