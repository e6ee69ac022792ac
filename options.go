package playbill

import (
	"context"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/resolve"
)

// Option is a function that configures a playbill client.
type Option func(*config) error

// config holds the assembled client configuration.
type config struct {
	gateway     catalog.Gateway
	resolver    resolve.Resolver
	storeID     string
	storeLookup func(ctx context.Context) (string, error)
	nowPlaying  func() string
	watchPath   string
	engineOpts  []catalog.EngineOption
}

func defaultConfig() *config {
	return &config{}
}

// WithGateway configures the persistence gateway. Required.
func WithGateway(gateway catalog.Gateway) Option {
	return func(c *config) error {
		if gateway == nil {
			return errors.NewConfigError("playbill", "gateway must not be nil", nil)
		}
		c.gateway = gateway
		return nil
	}
}

// WithResolver configures the media resolver used by AddMedia and AddBatch.
func WithResolver(resolver resolve.Resolver) Option {
	return func(c *config) error {
		c.resolver = resolver
		return nil
	}
}

// WithStoreID pins the active store identifier.
func WithStoreID(storeID string) Option {
	return func(c *config) error {
		c.storeID = storeID
		return nil
	}
}

// WithStoreLookup configures a lookup invoked once to resolve the active
// store identifier; the result is cached until Reset.
func WithStoreLookup(lookup func(ctx context.Context) (string, error)) Option {
	return func(c *config) error {
		c.storeLookup = lookup
		return nil
	}
}

// WithNowPlaying configures a probe for the currently playing media URL,
// enabling AddMedia's resumption shortcut.
func WithNowPlaying(probe func() string) Option {
	return func(c *config) error {
		c.nowPlaying = probe
		return nil
	}
}

// WithWatchPath configures the backing file watched by Watch.
func WithWatchPath(path string) Option {
	return func(c *config) error {
		c.watchPath = path
		return nil
	}
}

// WithEngineOptions forwards options to the catalog engine, such as a test
// clock.
func WithEngineOptions(opts ...catalog.EngineOption) Option {
	return func(c *config) error {
		c.engineOpts = append(c.engineOpts, opts...)
		return nil
	}
}
