package catalog

import (
	"context"
	"strings"

	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/schema"
)

// Tags manages the lifecycle of the multi-select tag column: ensure,
// rename, delete-with-cascade, reorder.
type Tags struct {
	engine *Engine
}

// Tags returns the tag manager for this engine.
func (e *Engine) Tags() *Tags {
	return &Tags{engine: e}
}

// Ensure adds name as a declared tag option when absent. Idempotent; reports
// whether the declaration was actually persisted.
func (t *Tags) Ensure(ctx context.Context, storeID, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, errors.NewValidationError("tag", name, "tag name must not be blank")
	}
	return t.engine.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		field, ok := doc.TagField()
		if !ok {
			return false, errors.NewNotFoundError("column", schema.FieldTag)
		}
		return schema.EnsureOption(field, name), nil
	})
}

// Delete removes a tag declaration and strips it from every record. A
// record whose only tag was the deleted one is removed entirely: the
// cascade that keeps orphaned rows out of the document. The reserved
// default tag is protected. Reports whether anything was persisted; deleting
// a tag that was never declared is a no-op.
func (t *Tags) Delete(ctx context.Context, storeID, name string) (bool, error) {
	if name == schema.DefaultTag {
		return false, errors.NewProtectedError("tag", name, "delete")
	}
	return t.engine.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		field, ok := doc.TagField()
		if !ok {
			return false, errors.NewNotFoundError("column", schema.FieldTag)
		}
		mutated := schema.DeleteOption(field, name)

		col := doc.Columns[schema.FieldTag]
		cascaded := 0
		for _, id := range append([]RowID(nil), doc.View.RowOrder...) {
			ms, ok := col.Values[id].(MultiSelectValue)
			if !ok {
				continue
			}
			names := make([]string, 0, len(ms.Names))
			for _, tag := range ms.Names {
				if tag != name {
					names = append(names, tag)
				}
			}
			if len(names) == len(ms.Names) {
				continue
			}
			mutated = true
			if len(names) == 0 {
				doc.RemoveRow(id)
				cascaded++
				continue
			}
			col.Values[id] = MultiSelectValue{Names: names}
		}

		if cascaded > 0 {
			logging.Ctx(ctx).Debug().
				Str("store", storeID).
				Str("tag", name).
				Int("cascaded", cascaded).
				Msg("tag delete cascaded into record deletion")
		}
		return mutated, nil
	})
}

// Rename changes a tag's name and rewrites the tag value on every record
// that referenced it. The default tag is protected; the new name must be
// non-blank and must not collide with an existing option.
func (t *Tags) Rename(ctx context.Context, storeID, oldName, newName string) error {
	if oldName == schema.DefaultTag {
		return errors.NewProtectedError("tag", oldName, "rename")
	}
	if strings.TrimSpace(newName) == "" {
		return errors.NewValidationError("tag", newName, "tag name must not be blank")
	}
	_, err := t.engine.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		field, ok := doc.TagField()
		if !ok {
			return false, errors.NewNotFoundError("column", schema.FieldTag)
		}
		if schema.HasOption(field, newName) {
			return false, errors.NewConflictError("tag", newName)
		}
		idx := schema.OptionIndex(field, oldName)
		if idx < 0 {
			return false, errors.NewNotFoundError("tag", oldName)
		}
		field.Options[idx].Name = newName

		col := doc.Columns[schema.FieldTag]
		for id, v := range col.Values {
			ms, ok := v.(MultiSelectValue)
			if !ok {
				continue
			}
			for i, tag := range ms.Names {
				if tag == oldName {
					ms.Names[i] = newName
				}
			}
			col.Values[id] = ms
		}
		return true, nil
	})
	return err
}

// Reorder persists the tag options in exactly the given order. Declared
// options missing from the order are dropped silently, so callers must pass
// the full current set to avoid data loss. Names not yet declared are
// appended as new options.
func (t *Tags) Reorder(ctx context.Context, storeID string, order []string) error {
	_, err := t.engine.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		field, ok := doc.TagField()
		if !ok {
			return false, errors.NewNotFoundError("column", schema.FieldTag)
		}

		existing := make(map[string]schema.TagOption, len(field.Options))
		for _, opt := range field.Options {
			existing[opt.Name] = opt
		}

		options := make([]schema.TagOption, 0, len(order))
		for _, name := range order {
			if opt, ok := existing[name]; ok {
				options = append(options, opt)
				continue
			}
			options = append(options, schema.TagOption{
				Name:       name,
				ColorIndex: len(options) % len(schema.Palette),
			})
		}
		field.Options = options
		return true, nil
	})
	return err
}

// ReorderRows persists the view's row order. Unknown and duplicate ids are
// dropped.
func (t *Tags) ReorderRows(ctx context.Context, storeID string, order []RowID) error {
	_, err := t.engine.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		seen := make(map[RowID]bool, len(order))
		rows := make([]RowID, 0, len(order))
		for _, id := range order {
			if seen[id] {
				continue
			}
			if _, ok := doc.TitleOf(id); !ok {
				continue
			}
			seen[id] = true
			rows = append(rows, id)
		}
		doc.View.RowOrder = rows
		return true, nil
	})
	return err
}
