package branch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

func newTestTable(t *testing.T, records ...*branch.Record) *branch.Table {
	t.Helper()

	table := branch.NewTable(&branch.SequentialIDs{Prefix: "anon-"})
	for _, rec := range records {
		require.NoError(t, table.Add(rec))
	}

	return table
}

func TestTableAddDuplicateID(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, &branch.Record{ID: "b1", Name: "main"})

	err := table.Add(&branch.Record{ID: "b1", Name: "other"})
	assert.ErrorIs(t, err, branch.ErrDuplicateID)
}

func TestTableAddDuplicateName(t *testing.T) {
	t.Parallel()

	table := newTestTable(t, &branch.Record{ID: "b1", Name: "main"})

	err := table.Add(&branch.Record{ID: "b2", Name: "main"})
	assert.ErrorIs(t, err, branch.ErrDuplicateName)
}

func TestAllocateGeneratesSequentialIDs(t *testing.T) {
	t.Parallel()

	table := newTestTable(t)

	first := table.Allocate("")
	second := table.Allocate("feature/x")

	assert.Equal(t, branch.ID("anon-0001"), first.ID)
	assert.Equal(t, branch.ID("anon-0002"), second.ID)
	assert.True(t, first.IsAnonymous())
	assert.False(t, second.IsAnonymous())
	assert.True(t, second.Lightweight)
}

func TestAnonymousSortedByID(t *testing.T) {
	t.Parallel()

	table := newTestTable(t,
		&branch.Record{ID: "z-anon"},
		&branch.Record{ID: "a-anon"},
		&branch.Record{ID: "named", Name: "main"},
	)

	anon := table.Anonymous()
	require.Len(t, anon, 2)
	assert.Equal(t, branch.ID("a-anon"), anon[0].ID)
	assert.Equal(t, branch.ID("z-anon"), anon[1].ID)
}

func TestProcessingOrder(t *testing.T) {
	t.Parallel()

	table := newTestTable(t,
		&branch.Record{ID: "b-light-2", Name: "topic/b", Lightweight: true},
		&branch.Record{ID: "a-light-1", Name: "topic/a", Lightweight: true},
		&branch.Record{ID: "full-z", Name: "zeta"},
		&branch.Record{ID: "full-a", Name: "alpha"},
		&branch.Record{ID: "prim", Name: "main", Primary: true},
		&branch.Record{ID: "gone", Name: "old", Deleted: true},
		&branch.Record{ID: "untouched", Name: "quiet"},
	)

	pushed := map[string]bool{
		"main": true, "zeta": true, "alpha": true,
		"topic/a": true, "topic/b": true, "old": true,
	}

	order := table.ProcessingOrder(func(name string) bool { return pushed[name] })

	var names []string
	for _, rec := range order {
		names = append(names, rec.Name)
	}

	// Primary first, fully-populated by name, lightweight by id. The
	// deleted and untouched branches never appear.
	assert.Equal(t, []string{"main", "alpha", "zeta", "topic/a", "topic/b"}, names)
}

func TestRecordOldHead(t *testing.T) {
	t.Parallel()

	rec := &branch.Record{ID: "b1", Name: "main"}

	_, ok := rec.OldHead()
	assert.False(t, ok)

	rec.SetOldHead(gitlib.ZeroHash())
	_, ok = rec.OldHead()
	assert.False(t, ok, "zero head counts as unknown")

	head := gitlib.NewHash("aa")
	rec.SetOldHead(head)

	got, ok := rec.OldHead()
	require.True(t, ok)
	assert.Equal(t, head, got)
}
