package gitlib

import (
	"context"
	"errors"
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrRefNotFound is returned when a symbolic reference cannot be resolved
// to a commit.
var ErrRefNotFound = errors.New("reference not found")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// ResolveRef resolves a symbolic reference name (short or fully qualified)
// to the commit it points at. Returns ErrRefNotFound when the name does
// not exist in the repository.
func (r *Repository) ResolveRef(_ context.Context, name string) (Hash, error) {
	candidates := []string{name}
	if !strings.HasPrefix(name, "refs/") {
		candidates = append(candidates, "refs/heads/"+name, "refs/tags/"+name)
	}

	for _, candidate := range candidates {
		ref, err := r.repo.References.Lookup(candidate)
		if err != nil {
			continue
		}

		resolved, err := ref.Resolve()
		ref.Free()

		if err != nil {
			continue
		}

		target := HashFromOid(resolved.Target())
		resolved.Free()

		return target, nil
	}

	// Fall back to revparse so raw hashes and peelable names resolve too.
	obj, err := r.repo.RevparseSingle(name)
	if err != nil {
		return Hash{}, fmt.Errorf("resolve %q: %w", name, ErrRefNotFound)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, fmt.Errorf("resolve %q: %w", name, ErrRefNotFound)
	}
	defer peeled.Free()

	return HashFromOid(peeled.Id()), nil
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(_ context.Context, hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// Subject returns the one-line summary of the commit message, or an empty
// string when the commit cannot be loaded. Used by the diagnostic dump.
func (r *Repository) Subject(ctx context.Context, hash Hash) string {
	commit, err := r.LookupCommit(ctx, hash)
	if err != nil {
		return ""
	}
	defer commit.Free()

	return commit.Summary()
}
