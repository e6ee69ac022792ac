// Package store provides the persistence gateways the catalog core writes
// through. Backends are selected by name, so the host environment can keep
// its documents in flat JSON files, a SQLite database, or a Badger key-value
// store without the core knowing the difference.
package store

import (
	"io"

	"github.com/playbill/playbill/internal/notify"
	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Options configures a gateway backend.
type Options struct {
	// Dir is the directory holding the backend's data.
	Dir string
	// Notifier delivers host refresh notifications after writes. Nil means
	// no notifications.
	Notifier notify.Notifier
}

// Gateway is a persistence backend with a lifecycle.
type Gateway interface {
	catalog.Gateway
	io.Closer
}

// Open creates the gateway backend with the given name.
func Open(backend string, opts Options) (Gateway, error) {
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	switch backend {
	case BackendFile, "":
		return NewFileStore(opts)
	case BackendSQLite:
		return NewSQLiteStore(opts)
	case BackendBadger:
		return NewBadgerStore(opts)
	default:
		return nil, errors.NewConfigError("store", "unknown backend "+backend, nil)
	}
}
