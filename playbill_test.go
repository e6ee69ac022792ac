package playbill_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/resolve"
	"github.com/playbill/playbill/pkg/schema"
)

// titleResolver resolves any URL to a descriptor titled after the URL's
// last path segment, like a host protocol client would.
func titleResolver() resolve.Resolver {
	return resolve.ResolverFunc(func(_ context.Context, url string) (*resolve.Descriptor, error) {
		return &resolve.Descriptor{
			Title: filepath.Base(url),
			URL:   url,
			Kind:  "audio",
		}, nil
	})
}

func newTestClient(t *testing.T, opts ...playbill.Option) (playbill.Client, *catalog.MemGateway) {
	t.Helper()
	gw := catalog.NewMemGateway()
	base := []playbill.Option{
		playbill.WithGateway(gw),
		playbill.WithStoreID("favorites"),
		playbill.WithResolver(titleResolver()),
	}
	client, err := playbill.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.Init(context.Background())
	require.NoError(t, err)
	return client, gw
}

func TestNewRequiresGateway(t *testing.T) {
	_, err := playbill.New()
	assert.Error(t, err)
}

func TestNoStoreConfigured(t *testing.T) {
	client, err := playbill.New(playbill.WithGateway(catalog.NewMemGateway()))
	require.NoError(t, err)

	_, err = client.Init(context.Background())
	assert.True(t, errors.IsNoStore(err))
}

func TestStoreLookupCached(t *testing.T) {
	gw := catalog.NewMemGateway()
	calls := 0
	client, err := playbill.New(
		playbill.WithGateway(gw),
		playbill.WithStoreLookup(func(context.Context) (string, error) {
			calls++
			return "resolved", nil
		}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Init(ctx)
	require.NoError(t, err)
	_, err = client.View(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "lookup result is cached")

	client.Reset()
	_, err = client.View(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "reset clears the cache")
}

func TestChangeEvents(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	var events []playbill.ChangeEvent
	client.OnChange(func(ev playbill.ChangeEvent) {
		events = append(events, ev)
	})

	result, err := client.AddMedia(ctx, "https://media.example.org/song.mp3", playbill.AddOptions{})
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	require.Len(t, events, 1)
	assert.Equal(t, "favorites", events[0].StoreID)

	// A duplicate add mutates nothing, so no event fires.
	result, err = client.AddMedia(ctx, "https://media.example.org/song.mp3", playbill.AddOptions{})
	require.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	assert.Len(t, events, 1)

	// Re-running init on a reconciled schema fires nothing either.
	_, err = client.Init(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEnsureTagExistingFiresNoEvent(t *testing.T) {
	client, gw := newTestClient(t)
	ctx := context.Background()

	events := 0
	client.OnChange(func(playbill.ChangeEvent) { events++ })

	require.NoError(t, client.EnsureTag(ctx, "jazz"))
	assert.Equal(t, 1, events)
	writes := gw.Writes

	// The default tag is already declared: nothing is written, so nothing
	// fires.
	require.NoError(t, client.EnsureTag(ctx, schema.DefaultTag))
	require.NoError(t, client.EnsureTag(ctx, "jazz"))
	assert.Equal(t, writes, gw.Writes)
	assert.Equal(t, 1, events)
}

func TestUpdateMediaNoOpFiresNoEvent(t *testing.T) {
	client, gw := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/song.mp3", playbill.AddOptions{})
	require.NoError(t, err)

	events := 0
	client.OnChange(func(playbill.ChangeEvent) { events++ })
	writes := gw.Writes

	result, err := client.UpdateMedia(ctx, "song.mp3", catalog.Update{Set: map[string]any{
		"no_such_field": "value",
	}})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, writes, gw.Writes)
	assert.Zero(t, events)
}

func TestAddBatchNewTagAllDuplicatesFiresEvent(t *testing.T) {
	client, gw := newTestClient(t)
	ctx := context.Background()

	url := "https://media.example.org/song.mp3"
	_, err := client.AddMedia(ctx, url, playbill.AddOptions{})
	require.NoError(t, err)

	events := 0
	client.OnChange(func(playbill.ChangeEvent) { events++ })
	writes := gw.Writes

	// Every source is a duplicate, but declaring the brand-new tag is still
	// a durable write, so exactly one event fires.
	result, err := client.AddBatch(ctx, playbill.Batch{
		Sources:        []string{url},
		Tag:            "fresh",
		CheckDuplicate: true,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Greater(t, gw.Writes, writes)
	assert.Equal(t, 1, events)

	// Re-importing under the now-declared tag writes nothing and fires
	// nothing.
	writes = gw.Writes
	result, err = client.AddBatch(ctx, playbill.Batch{
		Sources:        []string{url},
		Tag:            "fresh",
		CheckDuplicate: true,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Inserted)
	assert.Equal(t, writes, gw.Writes)
	assert.Equal(t, 1, events)
}

func TestAddMediaAutoPlayShortcut(t *testing.T) {
	playing := "https://example.com/video/BV1xx411c7mD"
	client, gw := newTestClient(t, playbill.WithNowPlaying(func() string {
		return playing
	}))
	writes := gw.Writes

	result, err := client.AddMedia(context.Background(),
		"https://example.com/video/BV1xx411c7mD?t=30-45",
		playbill.AddOptions{AutoPlay: true})
	require.NoError(t, err)

	require.NotNil(t, result.Seek)
	assert.Equal(t, catalog.TimeRange{Start: 30, End: 45}, *result.Seek)
	assert.Equal(t, writes, gw.Writes, "seek shortcut never touches the catalog")
}

func TestAddBatch(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	result, err := client.AddBatch(ctx, playbill.Batch{
		Sources: []string{
			"https://media.example.org/a.mp3",
			"https://media.example.org/b.mp3",
			"https://media.example.org/a.mp3",
		},
		Tag:            "imported",
		CheckDuplicate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Zero(t, result.Failed)

	view, err := client.View(ctx, "imported")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestAddFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.mp3", "two.flac", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "three.mp4"), []byte("x"), 0o644))

	client, _ := newTestClient(t)
	ctx := context.Background()

	result, err := client.AddFolder(ctx, dir, "local")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted, "media files in and below the folder, text files skipped")

	view, err := client.View(ctx, "local")
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
}

func TestAddFolderBadDir(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.AddFolder(context.Background(), "/no/such/dir", "local")
	assert.True(t, errors.IsValidationError(err))
}

func TestUpdateAndToggle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/song.mp3", playbill.AddOptions{})
	require.NoError(t, err)

	_, err = client.UpdateMedia(ctx, "song.mp3", catalog.Update{Set: map[string]any{
		"artist": "Chet Baker",
	}})
	require.NoError(t, err)

	on, err := client.ToggleMedia(ctx, "song.mp3", schema.FieldPinned)
	require.NoError(t, err)
	assert.True(t, on)

	view, err := client.View(ctx, schema.DefaultTag)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Chet Baker", view.Items[0].Artist)
	assert.True(t, view.Items[0].Pinned)
	assert.Equal(t, 1, view.Stats.Pinned)
}

func TestRemoveFromTagCascade(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/song.mp3",
		playbill.AddOptions{Tag: "jazz"})
	require.NoError(t, err)

	result, err := client.RemoveFromTag(ctx, "song.mp3", "jazz")
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	view, err := client.View(ctx, "jazz")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestMoveMedia(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/song.mp3",
		playbill.AddOptions{Tag: "inbox"})
	require.NoError(t, err)

	require.NoError(t, client.MoveMedia(ctx, "song.mp3", "inbox", "keepers"))

	inbox, err := client.View(ctx, "inbox")
	require.NoError(t, err)
	assert.Empty(t, inbox.Items)

	keepers, err := client.View(ctx, "keepers")
	require.NoError(t, err)
	assert.Len(t, keepers.Items, 1)
}

func TestClearTag(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/a.mp3", playbill.AddOptions{Tag: "bulk"})
	require.NoError(t, err)
	_, err = client.AddMedia(ctx, "https://media.example.org/b.mp3", playbill.AddOptions{Tag: "bulk"})
	require.NoError(t, err)

	removed, err := client.ClearTag(ctx, "bulk")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// The emptied tag is still declared.
	view, err := client.View(ctx, "bulk")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	names := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		names = append(names, tag.Name)
	}
	assert.Contains(t, names, "bulk")
}

func TestConcurrentMutationsAllLand(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://media.example.org/track-%02d.mp3", i)
			_, err := client.AddMedia(ctx, url, playbill.AddOptions{})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view, err := client.View(ctx, schema.DefaultTag)
	require.NoError(t, err)
	assert.Len(t, view.Items, n, "every serialized mutation is persisted")
}

func TestDeleteTagProtected(t *testing.T) {
	client, _ := newTestClient(t)
	err := client.DeleteTag(context.Background(), schema.DefaultTag)
	assert.True(t, errors.IsProtected(err))
}
