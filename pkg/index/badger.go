package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
)

// BadgerStore persists the index in an embedded badger database. Keys are
// the raw 20-byte commit hashes.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig configures OpenBadger.
type BadgerConfig struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the whole store in RAM; useful for tests.
	InMemory bool

	// Logger receives badger's internal diagnostics. Nil silences them.
	Logger *slog.Logger
}

// OpenBadger opens (or creates) a badger-backed index store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithInMemory(cfg.InMemory)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open index at %q: %w", cfg.Dir, err)
	}

	return &BadgerStore{db: db}, nil
}

// BranchesFor implements Store.
func (s *BadgerStore) BranchesFor(_ context.Context, id gitlib.Hash) ([]branch.ID, error) {
	var ids []branch.ID

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(id[:])
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			ids = decodeIDs(val)

			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("index lookup %s: %w", id.Prefix(12), err)
	}

	return ids, nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, id gitlib.Hash, ids []branch.ID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(id[:], encodeIDs(ids))
	})
	if err != nil {
		return fmt.Errorf("index put %s: %w", id.Prefix(12), err)
	}

	return nil
}

// PutAll implements Store using a write batch.
func (s *BadgerStore) PutAll(_ context.Context, assignments map[gitlib.Hash][]branch.ID) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for id, ids := range assignments {
		if err := wb.Set(id[:], encodeIDs(ids)); err != nil {
			return fmt.Errorf("index batch set %s: %w", id.Prefix(12), err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("index batch flush: %w", err)
	}

	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	return nil
}

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
