package library

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerBackend stores entries in BadgerDB.
type BadgerBackend struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerBackend.
type BadgerOptions struct {
	// Dir holds the database files. Required unless InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool

	// Logger receives badger's warnings and errors. If nil, uses
	// slog.Default().
	Logger *slog.Logger
}

// NewBadgerBackend opens a BadgerBackend.
func NewBadgerBackend(opts BadgerOptions) (*BadgerBackend, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("library: BadgerOptions.Dir is required for on-disk mode")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{logger})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("library: open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key.bytes())
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *BadgerBackend) Set(_ context.Context, key Key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key.bytes(), value)
	})
}

func (b *BadgerBackend) Delete(_ context.Context, key Key) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key.bytes())
	})
}

func (b *BadgerBackend) Scan(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := prefix.scanPrefix()
	return func(yield func(Entry, error) bool) {
		stopped := false
		err := b.db.View(func(txn *badger.Txn) error {
			itOpts := badger.DefaultIteratorOptions
			itOpts.Prefix = p
			it := txn.NewIterator(itOpts)
			defer it.Close()
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				if !yield(Entry{Key: parseKey(item.KeyCopy(nil)), Value: val}, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Entry{}, err)
		}
	}
}

// Write applies b in a single transaction.
func (b *BadgerBackend) Write(_ context.Context, batch Batch) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, k := range batch.Delete {
			if err := txn.Delete(k.bytes()); err != nil {
				return err
			}
		}
		for _, e := range batch.Set {
			if err := txn.Set(e.Key.bytes(), e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerBackend) Close() error { return b.db.Close() }

// badgerLogger forwards badger's log output to slog, demoting its info
// chatter to debug.
type badgerLogger struct{ l *slog.Logger }

func (g badgerLogger) Errorf(f string, v ...any) {
	g.l.Error(fmt.Sprintf("library: badger: "+f, v...))
}

func (g badgerLogger) Warningf(f string, v ...any) {
	g.l.Warn(fmt.Sprintf("library: badger: "+f, v...))
}

func (g badgerLogger) Infof(f string, v ...any) {
	g.l.Debug(fmt.Sprintf("library: badger: "+f, v...))
}

func (g badgerLogger) Debugf(f string, v ...any) {
	g.l.Debug(fmt.Sprintf("library: badger: "+f, v...))
}
