package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitbridge/pkg/index"
)

// storeUnderTest runs the same contract against every Store implementation.
func storeUnderTest(t *testing.T, store index.Store) {
	t.Helper()

	ctx := context.Background()
	commit := gitlib.NewHash("deadbeef")

	ids, err := store.BranchesFor(ctx, commit)
	require.NoError(t, err)
	assert.Nil(t, ids, "unknown commit has no assignments")

	require.NoError(t, store.Put(ctx, commit, []branch.ID{"zeta", "alpha"}))

	ids, err = store.BranchesFor(ctx, commit)
	require.NoError(t, err)
	assert.Equal(t, []branch.ID{"alpha", "zeta"}, ids, "ids come back sorted")

	// Replacement, not accumulation.
	require.NoError(t, store.Put(ctx, commit, []branch.ID{"only"}))

	ids, err = store.BranchesFor(ctx, commit)
	require.NoError(t, err)
	assert.Equal(t, []branch.ID{"only"}, ids)

	other := gitlib.NewHash("cafe")
	batch := map[gitlib.Hash][]branch.ID{
		commit: {"b1"},
		other:  {"b2", "b1"},
	}
	require.NoError(t, store.PutAll(ctx, batch))

	ids, err = store.BranchesFor(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []branch.ID{"b1", "b2"}, ids)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := index.NewMemoryStore()
	defer store.Close()

	storeUnderTest(t, store)
}

func TestMemoryStoreClosed(t *testing.T) {
	t.Parallel()

	store := index.NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.BranchesFor(context.Background(), gitlib.NewHash("aa"))
	assert.ErrorIs(t, err, index.ErrClosed)

	err = store.Put(context.Background(), gitlib.NewHash("aa"), nil)
	assert.ErrorIs(t, err, index.ErrClosed)
}

func TestBadgerStore(t *testing.T) {
	t.Parallel()

	store, err := index.OpenBadger(index.BadgerConfig{InMemory: true})
	require.NoError(t, err)

	defer store.Close()

	storeUnderTest(t, store)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	commit := gitlib.NewHash("0011223344")

	store, err := index.OpenBadger(index.BadgerConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, commit, []branch.ID{"b-main"}))
	require.NoError(t, store.Close())

	reopened, err := index.OpenBadger(index.BadgerConfig{Dir: dir})
	require.NoError(t, err)

	defer reopened.Close()

	ids, err := reopened.BranchesFor(ctx, commit)
	require.NoError(t, err)
	assert.Equal(t, []branch.ID{"b-main"}, ids)
}
