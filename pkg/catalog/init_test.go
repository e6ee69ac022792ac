package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/schema"
)

func TestInitFreshStore(t *testing.T) {
	gw := catalog.NewMemGateway()
	engine := catalog.NewEngine(gw, catalog.WithClock(fixedClock))
	ctx := context.Background()

	result, err := engine.Init(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, len(schema.Fields()), result.Created)
	assert.Zero(t, result.Updated)

	doc, err := engine.Load(ctx, testStore)
	require.NoError(t, err)
	assert.Len(t, doc.Columns, len(schema.Fields()))
	assert.Len(t, doc.View.ColumnOrder, len(schema.Fields()))

	// Pinned columns lead the column order.
	for i, name := range doc.View.ColumnOrder {
		field, ok := schema.Lookup(name)
		require.True(t, ok)
		if i < 3 {
			assert.True(t, field.Pinned, "column %s at position %d", name, i)
		} else {
			assert.False(t, field.Pinned, "column %s at position %d", name, i)
		}
	}

	// Seeded options are present.
	field, ok := doc.TagField()
	require.True(t, ok)
	assert.True(t, schema.HasOption(field, schema.DefaultTag))
}

func TestInitIdempotent(t *testing.T) {
	gw := catalog.NewMemGateway()
	engine := catalog.NewEngine(gw, catalog.WithClock(fixedClock))
	ctx := context.Background()

	_, err := engine.Init(ctx, testStore)
	require.NoError(t, err)
	writes := gw.Writes

	result, err := engine.Init(ctx, testStore)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Dropped)

	// A no-op init does not rewrite the document.
	assert.Equal(t, writes, gw.Writes)
}

func TestInitDropsUnknownColumns(t *testing.T) {
	gw := catalog.NewMemGateway()
	engine := catalog.NewEngine(gw, catalog.WithClock(fixedClock))
	ctx := context.Background()

	_, err := engine.Init(ctx, testStore)
	require.NoError(t, err)

	_, err = engine.WithDocument(ctx, testStore, func(doc *catalog.Document) (bool, error) {
		doc.Columns["legacy_rating"] = catalog.NewColumn(schema.Field{
			Name: "legacy_rating",
			Type: schema.TypeText,
		})
		doc.View.ColumnOrder = append(doc.View.ColumnOrder, "legacy_rating")
		return true, nil
	})
	require.NoError(t, err)

	result, err := engine.Init(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dropped)

	doc, err := engine.Load(ctx, testStore)
	require.NoError(t, err)
	_, ok := doc.Column("legacy_rating")
	assert.False(t, ok)
	assert.NotContains(t, doc.View.ColumnOrder, "legacy_rating")
}

func TestInitRetypesDriftedColumn(t *testing.T) {
	gw := catalog.NewMemGateway()
	engine := catalog.NewEngine(gw, catalog.WithClock(fixedClock))
	ctx := context.Background()

	_, err := engine.Init(ctx, testStore)
	require.NoError(t, err)

	_, err = engine.WithDocument(ctx, testStore, func(doc *catalog.Document) (bool, error) {
		doc.Columns[schema.FieldDuration].Schema.Type = schema.TypeCheckbox
		return true, nil
	})
	require.NoError(t, err)

	result, err := engine.Init(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Created)

	doc, err := engine.Load(ctx, testStore)
	require.NoError(t, err)
	col, ok := doc.Column(schema.FieldDuration)
	require.True(t, ok)
	assert.Equal(t, schema.TypeText, col.Schema.Type)
}

func TestInitPreservesExistingData(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	id := mustCreate(t, engine, testDescriptor("Song", "https://media.example.org/song.mp3"),
		catalog.CreateOptions{Tag: "jazz"}).RowID

	_, err := engine.Init(ctx, testStore)
	require.NoError(t, err)

	doc, err := engine.Load(ctx, testStore)
	require.NoError(t, err)
	assert.True(t, doc.Exists(id))
	assert.Equal(t, []string{"jazz"}, doc.TagsOf(id))
}
