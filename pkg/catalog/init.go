package catalog

import (
	"context"

	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/schema"
)

// InitResult reports what Init changed.
type InitResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Dropped int `json:"dropped"`
}

// Init reconciles a store's document against the field registry: columns
// not in the registry are dropped, missing columns are created (pinned
// columns at the front of the column order, others appended, options
// seeded), and columns whose declared type drifted are retyped in place.
//
// Init is idempotent: a second call on an unchanged schema reports
// {0, 0, 0} and writes nothing.
func (e *Engine) Init(ctx context.Context, storeID string) (InitResult, error) {
	var result InitResult
	_, err := e.WithDocument(ctx, storeID, func(doc *Document) (bool, error) {
		result = reconcileSchema(doc)
		mutated := result.Created+result.Updated+result.Dropped > 0
		if mutated {
			logging.Ctx(ctx).Info().
				Str("store", storeID).
				Int("created", result.Created).
				Int("updated", result.Updated).
				Int("dropped", result.Dropped).
				Msg("catalog schema initialized")
		}
		return mutated, nil
	})
	return result, err
}

// reconcileSchema aligns a document's columns with the field registry and
// reports what changed.
func reconcileSchema(doc *Document) InitResult {
	var result InitResult

	for name := range doc.Columns {
		if !schema.Known(name) {
			delete(doc.Columns, name)
			dropUnknownColumn(&doc.View, name)
			result.Dropped++
		}
	}

	for _, field := range schema.Fields() {
		col, ok := doc.Columns[field.Name]
		if !ok {
			doc.Columns[field.Name] = NewColumn(field)
			insertColumnOrder(&doc.View, field)
			result.Created++
			continue
		}
		if col.Schema.Type != field.Type {
			col.Schema.Type = field.Type
			result.Updated++
		}
	}
	return result
}

// insertColumnOrder places a new column in the view's column order. Pinned
// columns go to the front, after any pinned columns already there.
func insertColumnOrder(view *View, field schema.Field) {
	if !field.Pinned {
		view.ColumnOrder = append(view.ColumnOrder, field.Name)
		return
	}

	pinnedEnd := 0
	for _, name := range view.ColumnOrder {
		f, ok := schema.Lookup(name)
		if !ok || !f.Pinned {
			break
		}
		pinnedEnd++
	}
	order := make([]string, 0, len(view.ColumnOrder)+1)
	order = append(order, view.ColumnOrder[:pinnedEnd]...)
	order = append(order, field.Name)
	order = append(order, view.ColumnOrder[pinnedEnd:]...)
	view.ColumnOrder = order
}

// dropUnknownColumn removes a dropped column from the view's column order.
func dropUnknownColumn(view *View, name string) {
	for i, existing := range view.ColumnOrder {
		if existing == name {
			view.ColumnOrder = append(view.ColumnOrder[:i], view.ColumnOrder[i+1:]...)
			return
		}
	}
}
