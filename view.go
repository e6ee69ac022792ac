package playbill

import (
	"context"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/schema"
)

// View is a read-only projection of the catalog filtered to one tag.
type View struct {
	// Tags lists every declared tag in display order. The default tag is
	// always present even when the document never declared it.
	Tags []schema.TagOption `json:"tags"`
	// ActiveTag is the tag the items are filtered to.
	ActiveTag string `json:"active_tag"`
	// Items are the matching records in persisted row order.
	Items []catalog.Entry `json:"items"`
	// Stats summarizes the filtered set.
	Stats ViewStats `json:"stats"`
}

// ViewStats carries counts over the filtered items.
type ViewStats struct {
	Total  int `json:"total"`
	Pinned int `json:"pinned"`
}

// View implements Client. When tag is empty or not declared, the view falls
// back to the persisted active tag, then to the first declared tag.
func (c *client) View(ctx context.Context, tag string) (*View, error) {
	storeID, err := c.resolveStore(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.engine.Load(ctx, storeID)
	if err != nil {
		return nil, err
	}

	tags := declaredTags(doc)
	active := pickActiveTag(doc, tags, tag)

	view := &View{
		Tags:      tags,
		ActiveTag: active,
		Items:     make([]catalog.Entry, 0),
	}
	for _, id := range doc.View.RowOrder {
		if !doc.Exists(id) || !doc.HasTag(id, active) {
			continue
		}
		entry := doc.EntryAt(id)
		view.Items = append(view.Items, entry)
		view.Stats.Total++
		if entry.Pinned {
			view.Stats.Pinned++
		}
	}
	return view, nil
}

// SetActiveTag implements Client. The tag must be declared.
func (c *client) SetActiveTag(ctx context.Context, tag string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		return c.engine.WithDocument(ctx, storeID, func(doc *catalog.Document) (bool, error) {
			field, ok := doc.TagField()
			if !ok || !schema.HasOption(field, tag) {
				return false, errors.NewNotFoundError("tag", tag)
			}
			if doc.View.ActiveTag == tag {
				return false, nil
			}
			doc.View.ActiveTag = tag
			return true, nil
		})
	})
}

// declaredTags returns the document's tag options, guaranteeing the default
// tag appears even on documents that never declared it.
func declaredTags(doc *catalog.Document) []schema.TagOption {
	var tags []schema.TagOption
	if field, ok := doc.TagField(); ok {
		tags = append(tags, field.Options...)
	}
	for _, t := range tags {
		if t.Name == schema.DefaultTag {
			return tags
		}
	}
	return append(tags, schema.TagOption{Name: schema.DefaultTag})
}

// pickActiveTag chooses the tag the view filters on: the requested tag when
// declared, else the persisted active tag when declared, else the first
// declared tag.
func pickActiveTag(doc *catalog.Document, tags []schema.TagOption, requested string) string {
	declared := func(name string) bool {
		for _, t := range tags {
			if t.Name == name {
				return true
			}
		}
		return false
	}
	if requested != "" && declared(requested) {
		return requested
	}
	if doc.View.ActiveTag != "" && declared(doc.View.ActiveTag) {
		return doc.View.ActiveTag
	}
	if len(tags) > 0 {
		return tags[0].Name
	}
	return schema.DefaultTag
}
