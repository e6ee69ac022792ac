package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill/pkg/schema"
)

func TestRegistry(t *testing.T) {
	fields := schema.Fields()
	require.NotEmpty(t, fields)

	// Title leads the registry and doubles as the record key.
	assert.Equal(t, schema.FieldTitle, fields[0].Name)
	assert.Equal(t, schema.TypeContentBlock, fields[0].Type)
	assert.True(t, fields[0].Pinned)

	seen := make(map[string]bool)
	for _, f := range fields {
		assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
	}
}

func TestRegistryReturnsCopies(t *testing.T) {
	fields := schema.Fields()
	var tagField *schema.Field
	for i := range fields {
		if fields[i].Name == schema.FieldTag {
			tagField = &fields[i]
		}
	}
	require.NotNil(t, tagField)

	schema.EnsureOption(tagField, "scribble")

	fresh, ok := schema.Lookup(schema.FieldTag)
	require.True(t, ok)
	assert.False(t, schema.HasOption(&fresh, "scribble"))
}

func TestLookup(t *testing.T) {
	f, ok := schema.Lookup(schema.FieldFavorite)
	require.True(t, ok)
	assert.Equal(t, schema.TypeCheckbox, f.Type)

	_, ok = schema.Lookup("nope")
	assert.False(t, ok)
	assert.False(t, schema.Known("nope"))
}

func TestSeededOptions(t *testing.T) {
	assert.Equal(t, []schema.TagOption{{Name: schema.DefaultTag, ColorIndex: 0}},
		schema.OptionsFor(schema.FieldTag))

	sources := schema.OptionsFor(schema.FieldSource)
	names := make([]string, 0, len(sources))
	for _, opt := range sources {
		names = append(names, opt.Name)
	}
	assert.Equal(t, []string{
		schema.SourcePlatform, schema.SourceLocal, schema.SourceRemote, schema.SourceGeneric,
	}, names)
}

func TestEnsureOption(t *testing.T) {
	f := schema.Field{Name: "tag", Type: schema.TypeMultiSelect}

	assert.True(t, schema.EnsureOption(&f, "first"))
	assert.False(t, schema.EnsureOption(&f, "first"), "idempotent")
	assert.True(t, schema.EnsureOption(&f, "second"))

	// Colors are assigned round-robin from the palette.
	assert.Equal(t, 0, f.Options[0].ColorIndex)
	assert.Equal(t, 1, f.Options[1].ColorIndex)

	for i := 0; i < len(schema.Palette); i++ {
		schema.EnsureOption(&f, string(rune('a'+i)))
	}
	last := f.Options[len(f.Options)-1]
	assert.Equal(t, (len(schema.Palette)+1)%len(schema.Palette), last.ColorIndex)
}

func TestDeleteOption(t *testing.T) {
	f := schema.Field{Name: "tag", Type: schema.TypeMultiSelect}
	schema.EnsureOption(&f, "a")
	schema.EnsureOption(&f, "b")

	assert.True(t, schema.DeleteOption(&f, "a"))
	assert.False(t, schema.DeleteOption(&f, "a"))
	assert.False(t, schema.HasOption(&f, "a"))
	assert.True(t, schema.HasOption(&f, "b"))
}

func TestOptionIndex(t *testing.T) {
	f := schema.Field{Name: "tag", Type: schema.TypeMultiSelect}
	schema.EnsureOption(&f, "a")
	schema.EnsureOption(&f, "b")

	assert.Equal(t, 1, f.Options[schema.OptionIndex(&f, "b")].ColorIndex)
	assert.Equal(t, -1, schema.OptionIndex(&f, "missing"))
}
