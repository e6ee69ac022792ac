package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/playbill/playbill/internal/notify"
)

// BadgerStore keeps documents in a Badger key-value store, one key per
// store identifier.
type BadgerStore struct {
	db       *badger.DB
	notifier notify.Notifier
}

// NewBadgerStore opens (creating when missing) the key-value store under
// the given directory.
func NewBadgerStore(opts Options) (*BadgerStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("badger store requires a directory")
	}
	badgerOpts := badger.DefaultOptions(filepath.Join(opts.Dir, "badger"))
	badgerOpts.Logger = nil

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, notifier: opts.Notifier}, nil
}

func documentKey(storeID string) []byte {
	return []byte("doc:" + storeID)
}

// ReadDocument implements catalog.Gateway.
func (s *BadgerStore) ReadDocument(_ context.Context, storeID string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(storeID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteDocument implements catalog.Gateway.
func (s *BadgerStore) WriteDocument(_ context.Context, storeID string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(storeID), data)
	})
}

// NotifyRefresh implements catalog.Gateway.
func (s *BadgerStore) NotifyRefresh(ctx context.Context, storeID string) error {
	return s.notifier.Notify(ctx, storeID)
}

// Close implements io.Closer.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
