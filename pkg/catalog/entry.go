package catalog

import (
	"github.com/agentstation/utc"

	"github.com/playbill/playbill/pkg/schema"
)

// Entry is the read-only projection of one record: every column's value for
// a row decoded into a flat media entry.
type Entry struct {
	ID         RowID    `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url,omitempty"`
	Source     string   `json:"source,omitempty"`
	Artist     string   `json:"artist,omitempty"`
	ArtistIcon string   `json:"artist_icon,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Path       string   `json:"path,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Pinned     bool     `json:"pinned,omitempty"`
	Favorite   bool     `json:"favorite,omitempty"`
	CreatedAt  utc.Time `json:"created_at,omitzero"`
	MediaID    string   `json:"media_id,omitempty"`
	PageID     string   `json:"page_id,omitempty"`
}

// EntryAt projects the record with the given id.
func (d *Document) EntryAt(id RowID) Entry {
	entry := Entry{ID: id}

	for name, col := range d.Columns {
		v, ok := col.Values[id]
		if !ok {
			continue
		}
		switch name {
		case schema.FieldTitle:
			if block, ok := v.(BlockValue); ok {
				entry.Title = block.Text
			}
		case schema.FieldURL:
			if u, ok := v.(URLValue); ok {
				entry.URL = u.URL
			}
		case schema.FieldSource:
			if s, ok := v.(SelectValue); ok {
				entry.Source = s.Option
			}
		case schema.FieldArtist:
			if t, ok := v.(TextValue); ok {
				entry.Artist = t.Text
			}
		case schema.FieldArtistIcon:
			if u, ok := v.(URLValue); ok {
				entry.ArtistIcon = u.URL
			}
		case schema.FieldThumbnail:
			if a, ok := v.(AssetValue); ok {
				entry.Thumbnail = a.Ref
			}
		case schema.FieldTag:
			if ms, ok := v.(MultiSelectValue); ok {
				entry.Tags = append([]string(nil), ms.Names...)
			}
		case schema.FieldPath:
			if s, ok := v.(SelectValue); ok {
				entry.Path = s.Option
			}
		case schema.FieldDuration:
			if t, ok := v.(TextValue); ok {
				entry.Duration = t.Text
			}
		case schema.FieldKind:
			if s, ok := v.(SelectValue); ok {
				entry.Kind = s.Option
			}
		case schema.FieldPinned:
			if c, ok := v.(CheckboxValue); ok {
				entry.Pinned = c.Checked
			}
		case schema.FieldFavorite:
			if c, ok := v.(CheckboxValue); ok {
				entry.Favorite = c.Checked
			}
		case schema.FieldCreatedAt:
			if dt, ok := v.(DateValue); ok {
				entry.CreatedAt = dt.Time
			}
		case schema.FieldMediaID:
			if t, ok := v.(TextValue); ok {
				entry.MediaID = t.Text
			}
		case schema.FieldPageID:
			if t, ok := v.(TextValue); ok {
				entry.PageID = t.Text
			}
		}
	}

	return entry
}
