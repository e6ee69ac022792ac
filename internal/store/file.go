package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/playbill/playbill/internal/notify"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// FileStore keeps one JSON file per store identifier under a directory. A
// sibling lock file guards writes against other processes.
type FileStore struct {
	dir      string
	notifier notify.Notifier
}

// NewFileStore creates the directory when missing and returns the store.
func NewFileStore(opts Options) (*FileStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	if err := os.MkdirAll(opts.Dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: opts.Dir, notifier: opts.Notifier}, nil
}

// Path returns the backing file path for a store identifier.
func (s *FileStore) Path(storeID string) string {
	return filepath.Join(s.dir, sanitize(storeID)+".json")
}

// ReadDocument implements catalog.Gateway.
func (s *FileStore) ReadDocument(_ context.Context, storeID string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(storeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// WriteDocument implements catalog.Gateway. The document is written to a
// temporary file and renamed into place under a cross-process lock, so a
// crashed writer never leaves a truncated document behind.
func (s *FileStore) WriteDocument(_ context.Context, storeID string, data []byte) error {
	path := s.Path(storeID)

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// NotifyRefresh implements catalog.Gateway.
func (s *FileStore) NotifyRefresh(ctx context.Context, storeID string) error {
	return s.notifier.Notify(ctx, storeID)
}

// Close implements io.Closer.
func (s *FileStore) Close() error { return nil }

// List returns the store identifiers with a document on disk.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".json" {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// sanitize keeps store identifiers usable as file names.
func sanitize(storeID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, storeID)
}
