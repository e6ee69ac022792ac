package catalog

import "context"

// Gateway is the persistence contract the catalog core consumes. The host
// environment implements it; the core never touches storage directly.
//
// ReadDocument returns the raw JSON bytes of a store's document, or
// (nil, nil) when no document exists yet. A missing document is a valid
// empty catalog, not an error.
//
// WriteDocument replaces the whole document. There is no row-level
// persistence.
//
// NotifyRefresh tells the host to re-render the store after a write. A
// notification failure does not roll back the byte-level write, but it does
// fail the caller's result.
type Gateway interface {
	ReadDocument(ctx context.Context, storeID string) ([]byte, error)
	WriteDocument(ctx context.Context, storeID string, data []byte) error
	NotifyRefresh(ctx context.Context, storeID string) error
}
