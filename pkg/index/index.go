// Package index persists commit→branch assignments across pushes. The
// assignment engine reads it to stay idempotent with earlier runs; the
// surrounding pipeline writes each push's final map back after replay.
package index

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("index store is closed")

// Store is a persisted commit→branch index. BranchesFor returns nil for
// commits never assigned; it satisfies the engine's PreviousIndex.
type Store interface {
	// BranchesFor returns the branch ids persisted for the commit.
	BranchesFor(ctx context.Context, id gitlib.Hash) ([]branch.ID, error)

	// Put records the commit's branch ids, replacing any earlier entry.
	Put(ctx context.Context, id gitlib.Hash, ids []branch.ID) error

	// PutAll records a whole push's assignments.
	PutAll(ctx context.Context, assignments map[gitlib.Hash][]branch.ID) error

	// Close releases store resources.
	Close() error
}

// Branch ids are stored newline-joined and sorted; ids never contain
// newlines (uuids or reference names).
const idSeparator = "\n"

func encodeIDs(ids []branch.ID) []byte {
	sorted := make([]string, len(ids))
	for i, id := range ids {
		sorted[i] = string(id)
	}

	sort.Strings(sorted)

	return []byte(strings.Join(sorted, idSeparator))
}

func decodeIDs(raw []byte) []branch.ID {
	if len(raw) == 0 {
		return nil
	}

	parts := strings.Split(string(raw), idSeparator)
	ids := make([]branch.ID, len(parts))

	for i, part := range parts {
		ids[i] = branch.ID(part)
	}

	return ids
}

// MemoryStore is an in-process Store for tests and offline use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[gitlib.Hash][]branch.ID
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[gitlib.Hash][]branch.ID)}
}

// BranchesFor implements Store.
func (s *MemoryStore) BranchesFor(_ context.Context, id gitlib.Hash) ([]branch.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	ids := s.entries[id]
	if ids == nil {
		return nil, nil
	}

	out := make([]branch.ID, len(ids))
	copy(out, ids)

	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id gitlib.Hash, ids []branch.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.entries[id] = decodeIDs(encodeIDs(ids))

	return nil
}

// PutAll implements Store.
func (s *MemoryStore) PutAll(ctx context.Context, assignments map[gitlib.Hash][]branch.ID) error {
	for id, ids := range assignments {
		if err := s.Put(ctx, id, ids); err != nil {
			return err
		}
	}

	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}
