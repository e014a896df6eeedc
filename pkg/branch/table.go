package branch

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for table operations.
var (
	ErrDuplicateID   = errors.New("duplicate branch id")
	ErrDuplicateName = errors.New("duplicate branch name")
)

// Table holds the branch records visible to one push: the configured named
// branches plus any anonymous records allocated while assigning. It is not
// safe for concurrent use; one push owns one table.
type Table struct {
	ids     IDSource
	records map[ID]*Record
	byName  map[string]*Record
}

// NewTable creates an empty table that allocates new ids from the given
// source.
func NewTable(ids IDSource) *Table {
	return &Table{
		ids:     ids,
		records: make(map[ID]*Record),
		byName:  make(map[string]*Record),
	}
}

// Add inserts an existing record into the table.
func (t *Table) Add(rec *Record) error {
	if _, ok := t.records[rec.ID]; ok {
		return fmt.Errorf("add branch %q: %w", rec.ID, ErrDuplicateID)
	}

	if rec.Name != "" {
		if _, ok := t.byName[rec.Name]; ok {
			return fmt.Errorf("add branch %q: %w", rec.Name, ErrDuplicateName)
		}
	}

	t.records[rec.ID] = rec

	if rec.Name != "" {
		t.byName[rec.Name] = rec
	}

	return nil
}

// Get returns the record with the given id.
func (t *Table) Get(id ID) (*Record, bool) {
	rec, ok := t.records[id]

	return rec, ok
}

// ByName returns the named record tracking the given reference.
func (t *Table) ByName(name string) (*Record, bool) {
	rec, ok := t.byName[name]

	return rec, ok
}

// Allocate creates a new record with a generated id and adds it to the
// table. The name may be empty for a fully anonymous record. New records
// are lightweight: the destination side has no configuration for them.
func (t *Table) Allocate(name string) *Record {
	rec := &Record{ID: t.ids.NewID(), Name: name, Lightweight: true}

	// Generated ids are unique by construction; Add cannot fail on id. A
	// name collision would mean the caller did not check ByName first.
	if err := t.Add(rec); err != nil {
		panic(fmt.Sprintf("branch: allocate %q: %v", name, err))
	}

	return rec
}

// Anonymous returns the unnamed records sorted by id.
func (t *Table) Anonymous() []*Record {
	var anon []*Record

	for _, rec := range t.records {
		if rec.IsAnonymous() && !rec.Deleted {
			anon = append(anon, rec)
		}
	}

	sort.Slice(anon, func(i, j int) bool { return anon[i].ID < anon[j].ID })

	return anon
}

// Named returns the named, non-deleted records sorted by name.
func (t *Table) Named() []*Record {
	var named []*Record

	for _, rec := range t.records {
		if !rec.IsAnonymous() && !rec.Deleted {
			named = append(named, rec)
		}
	}

	sort.Slice(named, func(i, j int) bool { return named[i].Name < named[j].Name })

	return named
}

// ProcessingOrder returns the branches that walk during assignment, in the
// fixed order the engine requires: the primary branch first, then
// fully-populated branches sorted by symbolic name, then lightweight
// branches sorted by id. Only branches whose name the pushed predicate
// accepts participate.
func (t *Table) ProcessingOrder(pushed func(name string) bool) []*Record {
	var primary *Record

	var full, light []*Record

	for _, rec := range t.records {
		if rec.IsAnonymous() || rec.Deleted || !pushed(rec.Name) {
			continue
		}

		switch {
		case rec.Primary:
			primary = rec
		case rec.Lightweight:
			light = append(light, rec)
		default:
			full = append(full, rec)
		}
	}

	sort.Slice(full, func(i, j int) bool { return full[i].Name < full[j].Name })
	sort.Slice(light, func(i, j int) bool { return light[i].ID < light[j].ID })

	order := make([]*Record, 0, len(full)+len(light)+1)
	if primary != nil {
		order = append(order, primary)
	}

	order = append(order, full...)
	order = append(order, light...)

	return order
}
