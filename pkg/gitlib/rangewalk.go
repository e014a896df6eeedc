package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// RangeSpec describes one commit range to list: everything reachable from
// New but not from Old. A zero Old means the whole history behind New
// (a brand-new reference).
type RangeSpec struct {
	Old Hash
	New Hash
}

// CommitRow is one entry of a range listing: a commit id plus its parent
// ids in declared order (first-parent first).
type CommitRow struct {
	ID      Hash
	Parents []Hash
}

// ListRanges returns the commits covered by the given ranges in a single
// combined walk, topologically ordered newest-before-oldest. Every row
// lists its parents first-parent-first, including parents that fall
// outside the ranges.
func (r *Repository) ListRanges(ctx context.Context, specs []RangeSpec) ([]CommitRow, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	pushed := 0

	for _, spec := range specs {
		if spec.New.IsZero() {
			continue
		}

		if err := walk.Push(spec.New.ToOid()); err != nil {
			return nil, fmt.Errorf("push %s to revwalk: %w", spec.New, err)
		}

		pushed++

		if !spec.Old.IsZero() {
			if err := walk.Hide(spec.Old.ToOid()); err != nil {
				return nil, fmt.Errorf("hide %s from revwalk: %w", spec.Old, err)
			}
		}
	}

	if pushed == 0 {
		return nil, nil
	}

	var rows []CommitRow

	var iterErr error

	err = walk.Iterate(func(commit *git2go.Commit) bool {
		if ctx.Err() != nil {
			iterErr = ctx.Err()

			return false
		}

		wrapped := &Commit{commit: commit, repo: r}
		rows = append(rows, CommitRow{ID: wrapped.Hash(), Parents: wrapped.ParentHashes()})
		wrapped.Free()

		return true
	})
	if err != nil {
		return nil, fmt.Errorf("revwalk iterate: %w", err)
	}

	if iterErr != nil {
		return nil, fmt.Errorf("range walk canceled: %w", iterErr)
	}

	return rows, nil
}
