// Package schema defines the fixed column set of a playbill catalog document.
// Every catalog carries exactly these fields; the registry is the single
// source of truth for field names, value types, and seeded options.
package schema

// FieldType identifies the value type stored in a column.
type FieldType string

// Field value types.
const (
	// TypeText stores plain text values.
	TypeText FieldType = "text"
	// TypeURL stores media URLs.
	TypeURL FieldType = "url"
	// TypeContentBlock stores text wrapped with a generated identifier and
	// timestamps. Used only for the title field, which doubles as the
	// record's unique human key.
	TypeContentBlock FieldType = "content_block"
	// TypeSingleSelect stores a single selection from declared options.
	TypeSingleSelect FieldType = "single_select"
	// TypeMultiSelect stores multiple selections from declared options.
	TypeMultiSelect FieldType = "multi_select"
	// TypeAsset stores a reference to an external asset such as a thumbnail.
	TypeAsset FieldType = "asset"
	// TypeCheckbox stores boolean values.
	TypeCheckbox FieldType = "checkbox"
	// TypeDate stores timestamps.
	TypeDate FieldType = "date"
)

// Canonical field names.
const (
	FieldTitle      = "title"
	FieldURL        = "url"
	FieldSource     = "source"
	FieldArtist     = "artist"
	FieldArtistIcon = "artist_icon"
	FieldThumbnail  = "thumbnail"
	FieldTag        = "tag"
	FieldPath       = "path"
	FieldDuration   = "duration"
	FieldKind       = "kind"
	FieldPinned     = "pinned"
	FieldFavorite   = "favorite"
	FieldCreatedAt  = "created_at"
	FieldMediaID    = "media_id"
	FieldPageID     = "page_id"
)

// DefaultTag is the reserved tag every catalog carries. It cannot be
// renamed or deleted.
const DefaultTag = "default"

// Source classification options.
const (
	SourcePlatform = "platform"
	SourceLocal    = "local"
	SourceRemote   = "remote-storage"
	SourceGeneric  = "generic"
)

// Kind classification options.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// TagOption is one declared option of an enumerated field. Option order is
// significant: it is the display and iteration order.
type TagOption struct {
	Name       string `json:"name"`
	ColorIndex int    `json:"color_index"`
}

// Field describes one column of the catalog document.
type Field struct {
	Name    string      `json:"name"`
	Type    FieldType   `json:"type"`
	Icon    string      `json:"icon,omitempty"`
	Pinned  bool        `json:"pinned,omitempty"`
	Options []TagOption `json:"options,omitempty"`
}

// Palette is the fixed color cycle options are assigned from as they are
// created.
var Palette = []string{
	"gray", "brown", "orange", "yellow", "green",
	"blue", "purple", "pink", "red",
}

// fields is the registry. Order matters: Fields() is the canonical column
// order for a freshly initialized document.
var fields = []Field{
	{Name: FieldTitle, Type: TypeContentBlock, Icon: "🎵", Pinned: true},
	{Name: FieldURL, Type: TypeURL, Icon: "🔗"},
	{Name: FieldSource, Type: TypeSingleSelect, Icon: "📦", Options: seededOptions(SourcePlatform, SourceLocal, SourceRemote, SourceGeneric)},
	{Name: FieldArtist, Type: TypeText, Icon: "🎤"},
	{Name: FieldArtistIcon, Type: TypeURL},
	{Name: FieldThumbnail, Type: TypeAsset, Icon: "🖼"},
	{Name: FieldTag, Type: TypeMultiSelect, Icon: "🏷", Options: seededOptions(DefaultTag)},
	{Name: FieldPath, Type: TypeSingleSelect, Icon: "📁"},
	{Name: FieldDuration, Type: TypeText, Icon: "⏱"},
	{Name: FieldKind, Type: TypeSingleSelect, Options: seededOptions(KindAudio, KindVideo)},
	{Name: FieldPinned, Type: TypeCheckbox, Icon: "📌", Pinned: true},
	{Name: FieldFavorite, Type: TypeCheckbox, Icon: "⭐"},
	{Name: FieldCreatedAt, Type: TypeDate, Pinned: true},
	{Name: FieldMediaID, Type: TypeText},
	{Name: FieldPageID, Type: TypeText},
}

func seededOptions(names ...string) []TagOption {
	opts := make([]TagOption, 0, len(names))
	for i, name := range names {
		opts = append(opts, TagOption{Name: name, ColorIndex: i % len(Palette)})
	}
	return opts
}

// Fields returns the fixed column set. The returned fields are copies;
// mutating them does not change the registry.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = copyField(f)
	}
	return out
}

// Lookup returns the registry entry for a field name.
func Lookup(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return copyField(f), true
		}
	}
	return Field{}, false
}

// Known reports whether a field name is part of the registry.
func Known(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// OptionsFor returns the seeded options for an enumerated field.
func OptionsFor(name string) []TagOption {
	f, ok := Lookup(name)
	if !ok {
		return nil
	}
	return f.Options
}

func copyField(f Field) Field {
	if f.Options != nil {
		opts := make([]TagOption, len(f.Options))
		copy(opts, f.Options)
		f.Options = opts
	}
	return f
}

// EnsureOption appends name as an option on the field if it is not already
// declared, assigning the next round-robin palette color. Idempotent.
// Reports whether the option was added.
func EnsureOption(f *Field, name string) bool {
	if HasOption(f, name) {
		return false
	}
	f.Options = append(f.Options, TagOption{
		Name:       name,
		ColorIndex: len(f.Options) % len(Palette),
	})
	return true
}

// DeleteOption removes the option with the given name if present. Row values
// referencing the option are untouched; callers strip references separately.
// Reports whether an option was removed.
func DeleteOption(f *Field, name string) bool {
	for i, opt := range f.Options {
		if opt.Name == name {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			return true
		}
	}
	return false
}

// HasOption reports whether the field declares an option with the given name.
func HasOption(f *Field, name string) bool {
	for _, opt := range f.Options {
		if opt.Name == name {
			return true
		}
	}
	return false
}

// OptionIndex returns the position of an option by name, or -1.
func OptionIndex(f *Field, name string) int {
	for i, opt := range f.Options {
		if opt.Name == name {
			return i
		}
	}
	return -1
}
