package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/resolve"
	"github.com/playbill/playbill/pkg/schema"
)

// Engine performs create/read/update/delete of records against a catalog
// document. Every mutating operation runs inside WithDocument: the document
// is loaded, the mutation applied in memory, and the whole document
// persisted only when the mutation succeeds.
type Engine struct {
	gateway Gateway
	now     func() utc.Time
	newID   func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() utc.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides the content-block id source, for tests.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine creates an engine backed by the given gateway.
func NewEngine(gateway Gateway, opts ...EngineOption) *Engine {
	e := &Engine{
		gateway: gateway,
		now:     utc.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads and decodes a store's document. A missing document yields an
// empty one.
func (e *Engine) Load(ctx context.Context, storeID string) (*Document, error) {
	data, err := e.gateway.ReadDocument(ctx, storeID)
	if err != nil {
		return nil, errors.WrapIO("read", storeID, err)
	}
	return DecodeDocument(data)
}

// save serializes the document, writes it, and asks the host to refresh.
// The write is durable even when the notification fails; the notification
// failure still fails the caller's result.
func (e *Engine) save(ctx context.Context, storeID string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := e.gateway.WriteDocument(ctx, storeID, data); err != nil {
		return errors.WrapIO("write", storeID, err)
	}
	if err := e.gateway.NotifyRefresh(ctx, storeID); err != nil {
		return errors.WrapIO("notify", storeID, err)
	}
	return nil
}

// WithDocument loads the document for storeID, applies fn, and persists the
// document when fn reports a mutation and no error. When fn fails, the
// mutated in-memory document is discarded and nothing is written, so
// partial mutations never reach disk. Reports whether a save happened, so
// callers can tell a persisted mutation from a no-op.
func (e *Engine) WithDocument(ctx context.Context, storeID string, fn func(doc *Document) (mutated bool, err error)) (bool, error) {
	doc, err := e.Load(ctx, storeID)
	if err != nil {
		return false, err
	}
	mutated, err := fn(doc)
	if err != nil {
		return false, err
	}
	if !mutated {
		return false, nil
	}
	if err := e.save(ctx, storeID, doc); err != nil {
		return false, err
	}
	return true, nil
}

// CreateOptions controls record creation.
type CreateOptions struct {
	// AllowDuplicate skips canonical-URL deduplication.
	AllowDuplicate bool
	// Tag is the tag the new record joins. Empty means the default tag.
	Tag string
}

// CreateResult reports the outcome of a create. A duplicate hit is a
// successful, non-mutating outcome carrying the existing record.
type CreateResult struct {
	IsDuplicate bool
	Existing    *Entry
	RowID       RowID
}

// Create inserts a new record derived from the media descriptor. When
// deduplication is on and the canonical URL already exists, no mutation
// occurs and the existing record is returned.
func (e *Engine) Create(ctx context.Context, storeID string, media resolve.Descriptor, opts CreateOptions) (CreateResult, error) {
	var result CreateResult
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		// A store that was never initialized has no columns; writing a row
		// order entry with no cells would persist a ghost row.
		reconciled := reconcileSchema(doc)
		schemaChanged := reconciled.Created+reconciled.Updated+reconciled.Dropped > 0

		if !opts.AllowDuplicate && media.URL != "" {
			if id, ok := findByCanonicalURL(doc, media.URL); ok {
				existing := doc.EntryAt(id)
				result.IsDuplicate = true
				result.Existing = &existing
				result.RowID = id
				return schemaChanged, nil
			}
		}

		id := NewRowID()
		doc.View.RowOrder = append(doc.View.RowOrder, id)
		e.writeRecord(doc, id, media, opts)
		result.RowID = id

		logging.Ctx(ctx).Debug().
			Str("store", storeID).
			Str("title", media.Title).
			Msg("record created")
		return true, nil
	})
	return result, err
}

// findByCanonicalURL scans the url column for a record whose canonical URL
// matches.
func findByCanonicalURL(doc *Document, rawURL string) (RowID, bool) {
	col, ok := doc.Column(schema.FieldURL)
	if !ok {
		return "", false
	}
	canonical := CanonicalURL(rawURL)
	for id, v := range col.Values {
		u, ok := v.(URLValue)
		if !ok {
			continue
		}
		if CanonicalURL(u.URL) == canonical {
			return id, true
		}
	}
	return "", false
}

// writeRecord derives and writes one value per column for a new record.
func (e *Engine) writeRecord(doc *Document, id RowID, media resolve.Descriptor, opts CreateOptions) {
	now := e.now()
	tag := opts.Tag
	if tag == "" {
		tag = schema.DefaultTag
	}

	for name, col := range doc.Columns {
		switch name {
		case schema.FieldTitle:
			col.Values[id] = BlockValue{
				ID:        e.newID(),
				Text:      media.Title,
				CreatedAt: now,
				UpdatedAt: now,
			}
		case schema.FieldURL:
			if media.URL != "" {
				col.Values[id] = URLValue{URL: media.URL}
			}
		case schema.FieldSource:
			col.Values[id] = SelectValue{Option: classifySource(media)}
		case schema.FieldTag:
			schema.EnsureOption(&col.Schema, tag)
			col.Values[id] = MultiSelectValue{Names: []string{tag}}
		case schema.FieldKind:
			col.Values[id] = SelectValue{Option: classifyKind(media)}
		case schema.FieldCreatedAt:
			col.Values[id] = DateValue{Time: now}
		case schema.FieldArtist:
			if media.Artist != "" {
				col.Values[id] = TextValue{Text: media.Artist}
			}
		case schema.FieldArtistIcon:
			if media.ArtistIcon != "" {
				col.Values[id] = URLValue{URL: media.ArtistIcon}
			}
		case schema.FieldThumbnail:
			if media.Thumbnail != "" {
				col.Values[id] = AssetValue{Ref: media.Thumbnail}
			}
		case schema.FieldPath:
			if media.Path != "" {
				schema.EnsureOption(&col.Schema, media.Path)
				col.Values[id] = SelectValue{Option: media.Path}
			}
		case schema.FieldDuration:
			if media.Duration != "" {
				col.Values[id] = TextValue{Text: media.Duration}
			}
		case schema.FieldMediaID:
			if media.MediaID != "" {
				col.Values[id] = TextValue{Text: media.MediaID}
			}
		case schema.FieldPageID:
			if media.PageID != "" {
				col.Values[id] = TextValue{Text: media.PageID}
			}
		}
	}
}

// classifySource picks the source option for a descriptor. The resolver's
// own classification wins when present.
func classifySource(media resolve.Descriptor) string {
	if media.Source != "" {
		return media.Source
	}
	switch {
	case videoPathPattern.MatchString(media.URL):
		return schema.SourcePlatform
	case media.Path != "":
		return schema.SourceRemote
	case strings.HasPrefix(media.URL, "http://"), strings.HasPrefix(media.URL, "https://"):
		return schema.SourceGeneric
	default:
		return schema.SourceLocal
	}
}

// classifyKind picks audio or video for a descriptor.
func classifyKind(media resolve.Descriptor) string {
	if media.Kind == schema.KindAudio || media.Kind == schema.KindVideo {
		return media.Kind
	}
	return schema.KindVideo
}

// Update describes a partial-field update of one record.
type Update struct {
	// RemoveTag strips one tag from the record. When the remaining tag set
	// is empty the record is deleted entirely.
	RemoveTag string
	// Set overwrites (or creates) column values by field name. A false
	// boolean is only written to checkbox fields, so "explicitly false"
	// stays distinct from "no value".
	Set map[string]any
}

// UpdateResult reports what an update did.
type UpdateResult struct {
	// Deleted is set when a tag removal emptied the record's tag set and
	// cascaded into row deletion.
	Deleted bool
	// RemovedFromTag is set when a tag was stripped but the record kept
	// other tags.
	RemovedFromTag bool
	// Changed reports whether anything was persisted. False when every
	// assignment targeted an unknown field or the update was otherwise a
	// no-op.
	Changed bool
}

// Update resolves the unique record with the given title and applies the
// update.
func (e *Engine) Update(ctx context.Context, storeID, title string, update Update) (UpdateResult, error) {
	var result UpdateResult
	saved, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		id, ok := doc.RowByTitle(title)
		if !ok {
			return false, errors.NewNotFoundError("record", title)
		}

		if update.RemoveTag != "" {
			return e.removeFromTag(doc, id, update.RemoveTag, &result)
		}

		mutated := false
		for name, raw := range update.Set {
			if raw == nil {
				continue
			}
			col, ok := doc.Column(name)
			if !ok {
				logging.Ctx(ctx).Debug().Str("field", name).Msg("skipping unknown field in update")
				continue
			}
			if e.setValue(col, id, raw) {
				mutated = true
			}
		}
		if mutated {
			e.touch(doc, id)
		}
		return mutated, nil
	})
	result.Changed = saved
	return result, err
}

// removeFromTag strips one tag from a record, cascading into deletion when
// the tag set becomes empty.
func (e *Engine) removeFromTag(doc *Document, id RowID, tag string, result *UpdateResult) (bool, error) {
	col, ok := doc.Column(schema.FieldTag)
	if !ok {
		return false, nil
	}
	ms, ok := col.Values[id].(MultiSelectValue)
	if !ok {
		return false, nil
	}

	names := make([]string, 0, len(ms.Names))
	for _, name := range ms.Names {
		if name != tag {
			names = append(names, name)
		}
	}
	if len(names) == len(ms.Names) {
		return false, nil
	}

	if len(names) == 0 {
		doc.RemoveRow(id)
		result.Deleted = true
		return true, nil
	}
	col.Values[id] = MultiSelectValue{Names: names}
	result.RemovedFromTag = true
	return true, nil
}

// setValue coerces a loosely-typed update value into the column's value
// type. Reports whether a value was written.
func (e *Engine) setValue(col *Column, id RowID, raw any) bool {
	switch col.Schema.Type {
	case schema.TypeText:
		if s, ok := raw.(string); ok {
			col.Values[id] = TextValue{Text: s}
			return true
		}
	case schema.TypeURL:
		if s, ok := raw.(string); ok {
			col.Values[id] = URLValue{URL: s}
			return true
		}
	case schema.TypeAsset:
		if s, ok := raw.(string); ok {
			col.Values[id] = AssetValue{Ref: s}
			return true
		}
	case schema.TypeContentBlock:
		if s, ok := raw.(string); ok {
			block, exists := col.Values[id].(BlockValue)
			if !exists {
				block = BlockValue{ID: e.newID(), CreatedAt: e.now()}
			}
			block.Text = s
			block.UpdatedAt = e.now()
			col.Values[id] = block
			return true
		}
	case schema.TypeSingleSelect:
		if s, ok := raw.(string); ok {
			schema.EnsureOption(&col.Schema, s)
			col.Values[id] = SelectValue{Option: s}
			return true
		}
	case schema.TypeMultiSelect:
		if names, ok := toStringSlice(raw); ok {
			for _, name := range names {
				schema.EnsureOption(&col.Schema, name)
			}
			col.Values[id] = MultiSelectValue{Names: names}
			return true
		}
	case schema.TypeCheckbox:
		if b, ok := raw.(bool); ok {
			col.Values[id] = CheckboxValue{Checked: b}
			return true
		}
	case schema.TypeDate:
		switch t := raw.(type) {
		case utc.Time:
			col.Values[id] = DateValue{Time: t}
			return true
		case int64:
			col.Values[id] = DateValue{Time: utc.Time{Time: time.Unix(t, 0).UTC()}}
			return true
		}
	}
	return false
}

// toStringSlice accepts []string or []any of strings.
func toStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			names = append(names, s)
		}
		return names, true
	}
	return nil, false
}

// touch stamps the record's title block with an updated timestamp.
func (e *Engine) touch(doc *Document, id RowID) {
	col, ok := doc.Column(schema.FieldTitle)
	if !ok {
		return
	}
	if block, ok := col.Values[id].(BlockValue); ok {
		block.UpdatedAt = e.now()
		col.Values[id] = block
	}
}

// DeleteByTitle removes the single record with the given title
// unconditionally.
func (e *Engine) DeleteByTitle(ctx context.Context, storeID, title string) error {
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		id, ok := doc.RowByTitle(title)
		if !ok {
			return false, errors.NewNotFoundError("record", title)
		}
		doc.RemoveRow(id)
		return true, nil
	})
	return err
}

// DeleteByTag removes every record whose tag set contains the tag,
// regardless of any other tags the record also carries. The tag's
// declaration itself is kept; this empties the tag's contents. Returns the
// number of records removed.
func (e *Engine) DeleteByTag(ctx context.Context, storeID, tag string) (int, error) {
	removed := 0
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		for _, id := range append([]RowID(nil), doc.View.RowOrder...) {
			if doc.HasTag(id, tag) {
				doc.RemoveRow(id)
				removed++
			}
		}
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Toggle flips a checkbox field on the record with the given title,
// creating the value when absent (default false, so the first toggle yields
// true). Returns the new value.
func (e *Engine) Toggle(ctx context.Context, storeID, title, field string) (bool, error) {
	var toggled bool
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		id, ok := doc.RowByTitle(title)
		if !ok {
			return false, errors.NewNotFoundError("record", title)
		}
		col, ok := doc.Column(field)
		if !ok || col.Schema.Type != schema.TypeCheckbox {
			return false, errors.NewValidationError(field, nil, "not a checkbox field")
		}
		current := false
		if v, ok := col.Values[id].(CheckboxValue); ok {
			current = v.Checked
		}
		toggled = !current
		col.Values[id] = CheckboxValue{Checked: toggled}
		return true, nil
	})
	return toggled, err
}

// Move transfers a record from one tag to another. The destination tag is
// ensured first, so the record never ends up tagless and no cascade fires.
func (e *Engine) Move(ctx context.Context, storeID, title, fromTag, toTag string) error {
	if strings.TrimSpace(toTag) == "" {
		return errors.NewValidationError("tag", toTag, "destination tag must not be blank")
	}
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		id, ok := doc.RowByTitle(title)
		if !ok {
			return false, errors.NewNotFoundError("record", title)
		}
		col, ok := doc.Column(schema.FieldTag)
		if !ok {
			return false, nil
		}
		ms, _ := col.Values[id].(MultiSelectValue)

		names := make([]string, 0, len(ms.Names)+1)
		present := false
		for _, name := range ms.Names {
			if name == fromTag {
				continue
			}
			if name == toTag {
				present = true
			}
			names = append(names, name)
		}
		if !present {
			names = append(names, toTag)
		}
		schema.EnsureOption(&col.Schema, toTag)
		col.Values[id] = MultiSelectValue{Names: names}
		return true, nil
	})
	return err
}
