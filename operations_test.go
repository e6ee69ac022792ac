package playbill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill"
	"github.com/playbill/playbill/pkg/schema"
)

func TestDoUnknownOperation(t *testing.T) {
	client, _ := newTestClient(t)

	result := client.Do(context.Background(), "media.explode", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "unknown operation")
}

func TestDoMissingParameter(t *testing.T) {
	client, _ := newTestClient(t)

	result := client.Do(context.Background(), "media.add", map[string]any{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "url")
}

func TestDoAddAndView(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	result := client.Do(ctx, "media.add", map[string]any{
		"url": "https://media.example.org/song.mp3",
		"tag": "jazz",
	})
	require.True(t, result.Success, result.Message)

	// Adding the same URL again reports the duplicate without failing.
	result = client.Do(ctx, "media.add", map[string]any{
		"url": "https://media.example.org/song.mp3",
	})
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "already in catalog")

	result = client.Do(ctx, "view.get", map[string]any{"tag": "jazz"})
	require.True(t, result.Success, result.Message)
	view, ok := result.Data.(*playbill.View)
	require.True(t, ok)
	assert.Len(t, view.Items, 1)
}

func TestDoErrorsStayInResult(t *testing.T) {
	client, _ := newTestClient(t)

	result := client.Do(context.Background(), "media.delete", map[string]any{
		"title": "nobody home",
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not found")
}

func TestDoTagLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.True(t, client.Do(ctx, "tag.add", map[string]any{"name": "jazz"}).Success)
	require.True(t, client.Do(ctx, "tag.rename", map[string]any{"old": "jazz", "new": "bebop"}).Success)
	require.True(t, client.Do(ctx, "tag.delete", map[string]any{"name": "bebop"}).Success)

	result := client.Do(ctx, "tag.delete", map[string]any{"name": "default"})
	assert.False(t, result.Success)
}

func TestDoToggle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.True(t, client.Do(ctx, "media.add", map[string]any{
		"url": "https://media.example.org/song.mp3",
	}).Success)

	// Omitting the field flips the pinned flag.
	result := client.Do(ctx, "media.toggle", map[string]any{"title": "song.mp3"})
	require.True(t, result.Success)
	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, schema.FieldPinned, data["field"])
	assert.Equal(t, true, data["value"])

	result = client.Do(ctx, "media.toggle", map[string]any{"title": "song.mp3", "field": "favorite"})
	require.True(t, result.Success)
	data, ok = result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "favorite", data["field"])
	assert.Equal(t, true, data["value"])
}

func TestDoJSONShapedParams(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	// Parameter bags decoded from JSON carry []any, not []string.
	result := client.Do(ctx, "tag.reorder", map[string]any{
		"order": []any{"default", "late"},
	})
	require.True(t, result.Success, result.Message)
}
