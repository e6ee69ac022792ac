// Package playbill provides the main entry point for the playbill media
// catalog system. It composes the catalog engine and tag manager behind a
// single client that resolves the active store, serializes mutations, and
// keeps the host environment in sync after every write.
//
// The client caches the store identifier on first use, guards each store
// with its own mutex so two mutating calls can never interleave around the
// load/save boundary, and emits a "catalog changed" event after every
// persisted mutation. Read operations never persist and never signal.
//
// Example usage:
//
//	gw, err := store.Open("file", store.Options{Dir: dir})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pb, err := playbill.New(
//	    playbill.WithGateway(gw),
//	    playbill.WithStoreID("favorites"),
//	    playbill.WithResolver(myResolver),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pb.OnChange(func(ev playbill.ChangeEvent) {
//	    log.Printf("catalog %s changed at %s", ev.StoreID, ev.At)
//	})
//
//	result, err := pb.AddMedia(ctx, url, playbill.AddOptions{Tag: "jazz"})
package playbill

import (
	"context"
	"sync"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client is the public surface of the playlist orchestrator.
type Client interface {
	// Init reconciles the active store's schema against the registry.
	Init(ctx context.Context) (catalog.InitResult, error)

	// AddMedia resolves a URL and inserts it into the catalog.
	AddMedia(ctx context.Context, url string, opts AddOptions) (*AddResult, error)

	// AddBatch imports many sources sequentially under one tag.
	AddBatch(ctx context.Context, batch Batch) (*BatchResult, error)

	// AddFolder imports local media files found under a directory.
	AddFolder(ctx context.Context, dir, tag string, patterns ...string) (*BatchResult, error)

	// UpdateMedia applies a partial-field update to the record with the
	// given title.
	UpdateMedia(ctx context.Context, title string, update catalog.Update) (catalog.UpdateResult, error)

	// RemoveFromTag strips one tag from a record, deleting the record when
	// its tag set becomes empty.
	RemoveFromTag(ctx context.Context, title, tag string) (catalog.UpdateResult, error)

	// DeleteMedia removes one record by title.
	DeleteMedia(ctx context.Context, title string) error

	// ClearTag removes every record carrying the tag, regardless of other
	// tags those records hold. The tag declaration survives.
	ClearTag(ctx context.Context, tag string) (int, error)

	// ToggleMedia flips a checkbox field on a record, returning the new
	// value.
	ToggleMedia(ctx context.Context, title, field string) (bool, error)

	// MoveMedia transfers a record from one tag to another.
	MoveMedia(ctx context.Context, title, fromTag, toTag string) error

	// ReorderMedia persists a new row order.
	ReorderMedia(ctx context.Context, order []catalog.RowID) error

	// EnsureTag declares a tag when absent.
	EnsureTag(ctx context.Context, name string) error

	// DeleteTag removes a tag declaration, stripping it from records and
	// cascading records whose sole tag it was.
	DeleteTag(ctx context.Context, name string) error

	// RenameTag renames a declared tag and rewrites all references.
	RenameTag(ctx context.Context, oldName, newName string) error

	// ReorderTags persists the tag options in the given order.
	ReorderTags(ctx context.Context, order []string) error

	// View projects the catalog filtered to one tag.
	View(ctx context.Context, tag string) (*View, error)

	// SetActiveTag persists the view's selected tag.
	SetActiveTag(ctx context.Context, tag string) error

	// Do executes a named operation with a loosely-typed parameter bag.
	// Errors never escape; they are normalized into the Result.
	Do(ctx context.Context, op string, params map[string]any) Result

	// OnChange registers a hook invoked after every persisted mutation.
	OnChange(hook ChangeHook)

	// Watch re-emits change events when the backing file is rewritten by
	// another process. Requires WithWatchPath.
	Watch(ctx context.Context) error

	// Reset clears the cached store identifier.
	Reset()

	// Close stops the watcher.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	config *config
	engine *catalog.Engine
	tags   *catalog.Tags
	hooks  *hooks

	mu       sync.Mutex
	storeID  string
	resolved bool
	locks    map[string]*sync.Mutex

	watcher *watcher
}

// New creates a playbill client with the given options. A gateway is
// required.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.gateway == nil {
		return nil, errors.NewConfigError("playbill", "a persistence gateway is required", nil)
	}

	engine := catalog.NewEngine(cfg.gateway, cfg.engineOpts...)
	return &client{
		config: cfg,
		engine: engine,
		tags:   engine.Tags(),
		hooks:  newHooks(),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// resolveStore returns the active store identifier, resolving and caching
// it on first use.
func (c *client) resolveStore(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return c.storeID, nil
	}

	storeID := c.config.storeID
	if storeID == "" && c.config.storeLookup != nil {
		resolved, err := c.config.storeLookup(ctx)
		if err != nil {
			return "", errors.NewConfigError("store", "store lookup failed", err)
		}
		storeID = resolved
	}
	if storeID == "" {
		return "", errors.NewConfigError("store", "no store identifier configured", nil)
	}

	c.storeID = storeID
	c.resolved = true
	return storeID, nil
}

// lockFor returns the mutex serializing mutations for one store.
func (c *client) lockFor(storeID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[storeID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[storeID] = lock
	}
	return lock
}

// mutate resolves the store, serializes the mutation against other writers
// of the same store, and emits the change event when fn reports that a
// write happened.
func (c *client) mutate(ctx context.Context, fn func(storeID string) (changed bool, err error)) error {
	storeID, err := c.resolveStore(ctx)
	if err != nil {
		return err
	}
	lock := c.lockFor(storeID)
	lock.Lock()
	defer lock.Unlock()

	changed, err := fn(storeID)
	if err != nil {
		return err
	}
	if changed {
		c.hooks.emitChanged(storeID)
	}
	return nil
}

// Init implements Client.
func (c *client) Init(ctx context.Context) (catalog.InitResult, error) {
	var result catalog.InitResult
	err := c.mutate(ctx, func(storeID string) (bool, error) {
		r, err := c.engine.Init(ctx, storeID)
		if err != nil {
			return false, err
		}
		result = r
		return r.Created+r.Updated+r.Dropped > 0, nil
	})
	return result, err
}

// Reset implements Client.
func (c *client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeID = ""
	c.resolved = false
}

// Close implements Client.
func (c *client) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.mu.Unlock()
	if w != nil {
		return w.stop()
	}
	return nil
}
