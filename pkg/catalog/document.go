// Package catalog implements the playbill media catalog store: a
// schema-enforced, tag-oriented document database persisted as a single
// typed, column-oriented JSON document per store identifier.
//
// A Document holds one Column per registry field plus an explicit view
// state (row order, column order, active tag). Records are created through
// the Engine, tagged through the tag Manager, and projected into flat
// Entry values for consumption by the rest of the application.
package catalog

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/schema"
)

// RowID is the opaque, stable identifier of one record. IDs are
// generator-assigned and never reused.
type RowID string

// NewRowID allocates a fresh row identifier.
func NewRowID() RowID {
	return RowID(uuid.NewString())
}

// Column is a typed map from row identifier to value, corresponding to one
// registry field.
type Column struct {
	Schema schema.Field
	Values map[RowID]Value
}

// NewColumn creates an empty column for the given field.
func NewColumn(field schema.Field) *Column {
	return &Column{
		Schema: field,
		Values: make(map[RowID]Value),
	}
}

// columnJSON is the wire shape of a column.
type columnJSON struct {
	Schema schema.Field             `json:"schema"`
	Values map[RowID]json.RawMessage `json:"values"`
}

// MarshalJSON implements json.Marshaler.
func (c *Column) MarshalJSON() ([]byte, error) {
	out := columnJSON{
		Schema: c.Schema,
		Values: make(map[RowID]json.RawMessage, len(c.Values)),
	}
	for id, v := range c.Values {
		payload, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		out.Values[id] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Cells are decoded according to
// the column's declared field type.
func (c *Column) UnmarshalJSON(data []byte) error {
	var in columnJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.WrapParse("json", "", err)
	}
	c.Schema = in.Schema
	c.Values = make(map[RowID]Value, len(in.Values))
	for id, raw := range in.Values {
		v, err := decodeValue(in.Schema.Type, raw)
		if err != nil {
			return err
		}
		c.Values[id] = v
	}
	return nil
}

// View is the explicit, persisted presentation state of the document.
type View struct {
	// RowOrder is the display order of records, independent of insertion
	// order. It contains no id absent from the title column.
	RowOrder []RowID `json:"row_order"`
	// ColumnOrder is the display order of columns. Pinned columns are
	// inserted at the front during init.
	ColumnOrder []string `json:"column_order"`
	// ActiveTag is the last tag selected through the view surface.
	ActiveTag string `json:"active_tag,omitempty"`
}

// Document is the in-memory representation of one persisted catalog.
type Document struct {
	Columns map[string]*Column `json:"columns"`
	View    View               `json:"view"`
}

// NewDocument creates an empty document with no columns. Columns are
// created by Engine.Init against the registry.
func NewDocument() *Document {
	return &Document{
		Columns: make(map[string]*Column),
	}
}

// DecodeDocument parses the persisted JSON form of a document. Empty input
// yields a fresh empty document, which is how a catalog comes into being on
// first init.
func DecodeDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return NewDocument(), nil
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if doc.Columns == nil {
		doc.Columns = make(map[string]*Column)
	}
	return doc, nil
}

// Encode serializes the document to its persisted JSON form.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return data, nil
}

// Column returns the column for a field name.
func (d *Document) Column(name string) (*Column, bool) {
	col, ok := d.Columns[name]
	return col, ok
}

// TitleOf returns the title text of a record.
func (d *Document) TitleOf(id RowID) (string, bool) {
	col, ok := d.Columns[schema.FieldTitle]
	if !ok {
		return "", false
	}
	block, ok := col.Values[id].(BlockValue)
	if !ok {
		return "", false
	}
	return block.Text, true
}

// RowByTitle resolves the unique record whose title text equals title.
func (d *Document) RowByTitle(title string) (RowID, bool) {
	col, ok := d.Columns[schema.FieldTitle]
	if !ok {
		return "", false
	}
	for id, v := range col.Values {
		if block, ok := v.(BlockValue); ok && block.Text == title {
			return id, true
		}
	}
	return "", false
}

// TagsOf returns the tag membership of a record, or nil when unset.
func (d *Document) TagsOf(id RowID) []string {
	col, ok := d.Columns[schema.FieldTag]
	if !ok {
		return nil
	}
	ms, ok := col.Values[id].(MultiSelectValue)
	if !ok {
		return nil
	}
	return ms.Names
}

// HasTag reports whether a record's tag set contains name.
func (d *Document) HasTag(id RowID, name string) bool {
	for _, tag := range d.TagsOf(id) {
		if tag == name {
			return true
		}
	}
	return false
}

// Exists reports whether a record exists: it appears in the view's row
// order and carries a title value.
func (d *Document) Exists(id RowID) bool {
	if _, ok := d.TitleOf(id); !ok {
		return false
	}
	for _, rowID := range d.View.RowOrder {
		if rowID == id {
			return true
		}
	}
	return false
}

// RemoveRow deletes a record entirely: every column value and the row
// order entry.
func (d *Document) RemoveRow(id RowID) {
	for _, col := range d.Columns {
		delete(col.Values, id)
	}
	for i, rowID := range d.View.RowOrder {
		if rowID == id {
			d.View.RowOrder = append(d.View.RowOrder[:i], d.View.RowOrder[i+1:]...)
			break
		}
	}
}

// TagField returns the schema of the tag column.
func (d *Document) TagField() (*schema.Field, bool) {
	col, ok := d.Columns[schema.FieldTag]
	if !ok {
		return nil, false
	}
	return &col.Schema, true
}
