// Package resolve defines the contract between the catalog core and the
// protocol clients that turn a remote URL into playable media metadata.
// Concrete clients live with the host application; the catalog only ever
// sees a Descriptor.
package resolve

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Descriptor is the resolved metadata of one media source.
type Descriptor struct {
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	Artist     string `json:"artist,omitempty"`
	ArtistIcon string `json:"artist_icon,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Path       string `json:"path,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Source     string `json:"source,omitempty"`
	Kind       string `json:"kind,omitempty"`
	MediaID    string `json:"media_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Resolver resolves a URL into a media descriptor. A nil descriptor with a
// nil error means the URL could not be resolved into playable media.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Descriptor, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, url string) (*Descriptor, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, url string) (*Descriptor, error) {
	return f(ctx, url)
}

// audioExtensions are the file extensions classified as audio when
// resolving local files.
var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".m4a": true, ".aac": true,
	".ogg": true, ".opus": true, ".wav": true, ".wma": true,
}

// Local returns a resolver for local file paths. It derives the title from
// the file name and classifies kind by extension, without touching the
// filesystem.
func Local() Resolver {
	return ResolverFunc(func(_ context.Context, path string) (*Descriptor, error) {
		base := filepath.Base(path)
		ext := strings.ToLower(filepath.Ext(base))
		kind := "video"
		if audioExtensions[ext] {
			kind = "audio"
		}
		return &Descriptor{
			Title:  strings.TrimSuffix(base, filepath.Ext(base)),
			URL:    path,
			Source: "local",
			Kind:   kind,
		}, nil
	})
}

// Generic returns a resolver that accepts any URL without probing it. The
// title falls back to the last path segment, or the host when the path is
// bare. Hosts that know their protocols plug in richer resolvers.
func Generic() Resolver {
	return ResolverFunc(func(_ context.Context, raw string) (*Descriptor, error) {
		title := raw
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			if segment := path.Base(u.Path); segment != "" && segment != "/" && segment != "." {
				title = segment
			} else {
				title = u.Host
			}
		}
		return &Descriptor{
			Title:  title,
			URL:    raw,
			Source: "generic",
			Kind:   "video",
		}, nil
	})
}
