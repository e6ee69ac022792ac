package playbill

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/resolve"
)

// AddOptions controls AddMedia.
type AddOptions struct {
	// Tag the new record joins; empty means the default tag.
	Tag string
	// AllowDuplicate skips canonical-URL deduplication.
	AllowDuplicate bool
	// AutoPlay enables the resumption shortcut: when the currently playing
	// media matches the URL, nothing is inserted and a seek instruction is
	// returned instead.
	AutoPlay bool
}

// AddResult reports what AddMedia did.
type AddResult struct {
	// IsDuplicate is set when an existing record matched the canonical URL.
	IsDuplicate bool `json:"is_duplicate"`
	// Existing carries the matched record on a duplicate hit.
	Existing *catalog.Entry `json:"existing,omitempty"`
	// Seek is the resumption instruction; when set, no catalog mutation
	// happened.
	Seek *catalog.TimeRange `json:"seek,omitempty"`
}

// AddMedia implements Client.
func (c *client) AddMedia(ctx context.Context, url string, opts AddOptions) (*AddResult, error) {
	if opts.AutoPlay && c.config.nowPlaying != nil {
		current := c.config.nowPlaying()
		if current != "" && catalog.MediaKey(current) == catalog.MediaKey(url) {
			seek, _ := catalog.ParseTimeRange(url)
			logging.Ctx(ctx).Debug().Str("url", url).Msg("already playing, seeking instead of inserting")
			return &AddResult{Seek: &seek}, nil
		}
	}

	media, err := c.resolveMedia(ctx, url)
	if err != nil {
		return nil, err
	}

	result := &AddResult{}
	err = c.mutate(ctx, func(storeID string) (bool, error) {
		created, err := c.engine.Create(ctx, storeID, *media, catalog.CreateOptions{
			AllowDuplicate: opts.AllowDuplicate,
			Tag:            opts.Tag,
		})
		if err != nil {
			return false, err
		}
		result.IsDuplicate = created.IsDuplicate
		result.Existing = created.Existing
		return !created.IsDuplicate, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveMedia turns a URL into a descriptor through the configured
// resolver.
func (c *client) resolveMedia(ctx context.Context, url string) (*resolve.Descriptor, error) {
	if c.config.resolver == nil {
		return nil, errors.NewConfigError("resolver", "no media resolver configured", nil)
	}
	media, err := c.config.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, errors.WrapResource("resolve", "media", url, err)
	}
	if media == nil {
		return nil, errors.NewNotFoundError("media", url)
	}
	return media, nil
}

// Batch describes a sequential import.
type Batch struct {
	// Sources are URLs resolved one by one through the configured resolver.
	Sources []string
	// Items are pre-resolved descriptors inserted as-is.
	Items []resolve.Descriptor
	// Tag every imported record joins. Ensured before the import starts.
	Tag string
	// SourcePath records import provenance on each record's path field.
	SourcePath string
	// CheckDuplicate enables canonical-URL deduplication per item.
	CheckDuplicate bool
}

// BatchResult aggregates a batch import.
type BatchResult struct {
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
	Summary    string `json:"summary"`
}

// AddBatch implements Client. Sources are processed sequentially, never
// concurrently, so duplicate counting and row order stay deterministic.
func (c *client) AddBatch(ctx context.Context, batch Batch) (*BatchResult, error) {
	result := &BatchResult{}
	err := c.mutate(ctx, func(storeID string) (bool, error) {
		tagAdded := false
		if batch.Tag != "" {
			added, err := c.tags.Ensure(ctx, storeID, batch.Tag)
			if err != nil {
				return false, err
			}
			tagAdded = added
		}

		items := make([]resolve.Descriptor, 0, len(batch.Items)+len(batch.Sources))
		items = append(items, batch.Items...)
		for _, source := range batch.Sources {
			media, err := c.resolveMedia(ctx, source)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("source", source).Msg("skipping unresolvable source")
				result.Failed++
				continue
			}
			items = append(items, *media)
		}

		for _, media := range items {
			if batch.SourcePath != "" {
				media.Path = batch.SourcePath
			}
			created, err := c.engine.Create(ctx, storeID, media, catalog.CreateOptions{
				AllowDuplicate: !batch.CheckDuplicate,
				Tag:            batch.Tag,
			})
			if err != nil {
				result.Failed++
				continue
			}
			if created.IsDuplicate {
				result.Duplicates++
			} else {
				result.Inserted++
			}
		}

		result.Summary = fmt.Sprintf("added %d items, skipped %d duplicates", result.Inserted, result.Duplicates)
		if result.Failed > 0 {
			result.Summary += fmt.Sprintf(", %d failed", result.Failed)
		}
		// Declaring a brand-new tag is a persisted write even when every
		// source turned out to be a duplicate.
		return tagAdded || result.Inserted > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// defaultMediaPatterns matches common audio and video files.
var defaultMediaPatterns = []string{
	"**/*.{mp3,flac,m4a,aac,ogg,opus,wav}",
	"**/*.{mp4,mkv,webm,avi,mov,flv}",
}

// AddFolder implements Client. Files under dir matching the patterns are
// imported as local media.
func (c *client) AddFolder(ctx context.Context, dir, tag string, patterns ...string) (*BatchResult, error) {
	if len(patterns) == 0 {
		patterns = defaultMediaPatterns
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.NewValidationError("dir", dir, "not a readable directory")
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, err.Error())
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			paths = append(paths, match)
		}
	}
	sort.Strings(paths)

	local := resolve.Local()
	items := make([]resolve.Descriptor, 0, len(paths))
	for _, path := range paths {
		media, err := local.Resolve(ctx, path)
		if err != nil || media == nil {
			continue
		}
		items = append(items, *media)
	}

	return c.AddBatch(ctx, Batch{
		Items:          items,
		Tag:            tag,
		SourcePath:     dir,
		CheckDuplicate: true,
	})
}

// UpdateMedia implements Client. An update that wrote nothing, such as one
// targeting only unknown fields, fires no change event.
func (c *client) UpdateMedia(ctx context.Context, title string, update catalog.Update) (catalog.UpdateResult, error) {
	var result catalog.UpdateResult
	err := c.mutate(ctx, func(storeID string) (bool, error) {
		r, err := c.engine.Update(ctx, storeID, title, update)
		if err != nil {
			return false, err
		}
		result = r
		return r.Changed, nil
	})
	return result, err
}

// RemoveFromTag implements Client.
func (c *client) RemoveFromTag(ctx context.Context, title, tag string) (catalog.UpdateResult, error) {
	return c.UpdateMedia(ctx, title, catalog.Update{RemoveTag: tag})
}

// DeleteMedia implements Client.
func (c *client) DeleteMedia(ctx context.Context, title string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		if err := c.engine.DeleteByTitle(ctx, storeID, title); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ClearTag implements Client.
func (c *client) ClearTag(ctx context.Context, tag string) (int, error) {
	removed := 0
	err := c.mutate(ctx, func(storeID string) (bool, error) {
		n, err := c.engine.DeleteByTag(ctx, storeID, tag)
		if err != nil {
			return false, err
		}
		removed = n
		return n > 0, nil
	})
	return removed, err
}

// ToggleMedia implements Client.
func (c *client) ToggleMedia(ctx context.Context, title, field string) (bool, error) {
	toggled := false
	err := c.mutate(ctx, func(storeID string) (bool, error) {
		value, err := c.engine.Toggle(ctx, storeID, title, field)
		if err != nil {
			return false, err
		}
		toggled = value
		return true, nil
	})
	return toggled, err
}

// MoveMedia implements Client.
func (c *client) MoveMedia(ctx context.Context, title, fromTag, toTag string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		if err := c.engine.Move(ctx, storeID, title, fromTag, toTag); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ReorderMedia implements Client.
func (c *client) ReorderMedia(ctx context.Context, order []catalog.RowID) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		if err := c.tags.ReorderRows(ctx, storeID, order); err != nil {
			return false, err
		}
		return true, nil
	})
}
