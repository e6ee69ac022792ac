package playbill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/schema"
)

func TestViewFiltersByTag(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/a.mp3", playbill.AddOptions{Tag: "jazz"})
	require.NoError(t, err)
	_, err = client.AddMedia(ctx, "https://media.example.org/b.mp3", playbill.AddOptions{Tag: "blues"})
	require.NoError(t, err)
	_, err = client.AddMedia(ctx, "https://media.example.org/c.mp3", playbill.AddOptions{Tag: "jazz"})
	require.NoError(t, err)

	view, err := client.View(ctx, "jazz")
	require.NoError(t, err)
	assert.Equal(t, "jazz", view.ActiveTag)
	require.Len(t, view.Items, 2)

	// Items come back in persisted row order.
	assert.Equal(t, "a.mp3", view.Items[0].Title)
	assert.Equal(t, "c.mp3", view.Items[1].Title)
	assert.Equal(t, 2, view.Stats.Total)
}

func TestViewIncludesDefaultTag(t *testing.T) {
	client, _ := newTestClient(t)

	view, err := client.View(context.Background(), "")
	require.NoError(t, err)

	names := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		names = append(names, tag.Name)
	}
	assert.Contains(t, names, schema.DefaultTag)
}

func TestViewUndeclaredTagFallsBack(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.AddMedia(ctx, "https://media.example.org/a.mp3", playbill.AddOptions{})
	require.NoError(t, err)

	// Asking for a tag nobody declared falls back instead of failing.
	view, err := client.View(ctx, "no-such-tag")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultTag, view.ActiveTag)
	assert.Len(t, view.Items, 1)
}

func TestSetActiveTag(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureTag(ctx, "jazz"))
	require.NoError(t, client.SetActiveTag(ctx, "jazz"))

	// The persisted selection drives the tagless view.
	view, err := client.View(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "jazz", view.ActiveTag)
}

func TestSetActiveTagUndeclared(t *testing.T) {
	client, _ := newTestClient(t)
	err := client.SetActiveTag(context.Background(), "ghost")
	assert.True(t, errors.IsNotFound(err))
}

func TestSetActiveTagNoRewriteWhenUnchanged(t *testing.T) {
	client, gw := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureTag(ctx, "jazz"))
	require.NoError(t, client.SetActiveTag(ctx, "jazz"))
	writes := gw.Writes

	require.NoError(t, client.SetActiveTag(ctx, "jazz"))
	assert.Equal(t, writes, gw.Writes)
}
