package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/agentstation/utc"

	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/schema"
)

// Value is one cell of a column. It is a closed union: exactly one concrete
// type exists per field type, and a column only ever holds values matching
// its declared type. A row with no entry in a column is "unset", which is
// distinct from an empty list, false, or zero.
type Value interface {
	// Type returns the field type this value belongs to.
	Type() schema.FieldType
}

// TextValue holds a plain text cell.
type TextValue struct {
	Text string
}

// Type implements Value.
func (TextValue) Type() schema.FieldType { return schema.TypeText }

// URLValue holds a media URL cell.
type URLValue struct {
	URL string
}

// Type implements Value.
func (URLValue) Type() schema.FieldType { return schema.TypeURL }

// AssetValue holds a reference to an external asset such as a thumbnail.
type AssetValue struct {
	Ref string
}

// Type implements Value.
func (AssetValue) Type() schema.FieldType { return schema.TypeAsset }

// SelectValue holds a single selected option name.
type SelectValue struct {
	Option string
}

// Type implements Value.
func (SelectValue) Type() schema.FieldType { return schema.TypeSingleSelect }

// MultiSelectValue holds the selected option names in order.
type MultiSelectValue struct {
	Names []string
}

// Type implements Value.
func (MultiSelectValue) Type() schema.FieldType { return schema.TypeMultiSelect }

// CheckboxValue holds a boolean cell. Presence means the value was written
// explicitly, so false here is "explicitly false".
type CheckboxValue struct {
	Checked bool
}

// Type implements Value.
func (CheckboxValue) Type() schema.FieldType { return schema.TypeCheckbox }

// DateValue holds a timestamp cell.
type DateValue struct {
	Time utc.Time
}

// Type implements Value.
func (DateValue) Type() schema.FieldType { return schema.TypeDate }

// BlockValue wraps text with a generated identifier and timestamps. Only the
// title field uses this type; its text doubles as the record's unique key.
type BlockValue struct {
	ID        string
	Text      string
	CreatedAt utc.Time
	UpdatedAt utc.Time
}

// Type implements Value.
func (BlockValue) Type() schema.FieldType { return schema.TypeContentBlock }

// blockJSON is the wire shape of a content block cell.
type blockJSON struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	CreatedAt utc.Time `json:"created_at"`
	UpdatedAt utc.Time `json:"updated_at"`
}

// encodeValue converts a value into its wire shape.
func encodeValue(v Value) (any, error) {
	switch val := v.(type) {
	case TextValue:
		return val.Text, nil
	case URLValue:
		return val.URL, nil
	case AssetValue:
		return val.Ref, nil
	case SelectValue:
		return val.Option, nil
	case MultiSelectValue:
		if val.Names == nil {
			return []string{}, nil
		}
		return val.Names, nil
	case CheckboxValue:
		return val.Checked, nil
	case DateValue:
		return val.Time, nil
	case BlockValue:
		return blockJSON{
			ID:        val.ID,
			Text:      val.Text,
			CreatedAt: val.CreatedAt,
			UpdatedAt: val.UpdatedAt,
		}, nil
	default:
		return nil, errors.NewValidationError("value", v, fmt.Sprintf("unknown value type %T", v))
	}
}

// decodeValue parses a raw cell according to the column's declared type.
func decodeValue(fieldType schema.FieldType, raw json.RawMessage) (Value, error) {
	switch fieldType {
	case schema.TypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return TextValue{Text: s}, nil
	case schema.TypeURL:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return URLValue{URL: s}, nil
	case schema.TypeAsset:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return AssetValue{Ref: s}, nil
	case schema.TypeSingleSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return SelectValue{Option: s}, nil
	case schema.TypeMultiSelect:
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return MultiSelectValue{Names: names}, nil
	case schema.TypeCheckbox:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return CheckboxValue{Checked: b}, nil
	case schema.TypeDate:
		var t utc.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return DateValue{Time: t}, nil
	case schema.TypeContentBlock:
		var block blockJSON
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return BlockValue{
			ID:        block.ID,
			Text:      block.Text,
			CreatedAt: block.CreatedAt,
			UpdatedAt: block.UpdatedAt,
		}, nil
	default:
		return nil, errors.NewValidationError("field type", fieldType, "unknown field type")
	}
}
