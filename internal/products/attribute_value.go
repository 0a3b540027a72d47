package product

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// AttributeValue is a closed set of typed attribute values. Only TextValue and
// IntegerValue implement it.
type AttributeValue interface {
	Type() enums.AttributeType
	Render() string
	isAttributeValue()
}

type TextValue string

type IntegerValue int64

func (TextValue) Type() enums.AttributeType    { return enums.AttributeTypeText }
func (IntegerValue) Type() enums.AttributeType { return enums.AttributeTypeInteger }

func (v TextValue) Render() string    { return string(v) }
func (v IntegerValue) Render() string { return strconv.FormatInt(int64(v), 10) }

func (TextValue) isAttributeValue()    {}
func (IntegerValue) isAttributeValue() {}

// ParseAttributeValue decodes raw JSON according to the attribute's declared type.
func ParseAttributeValue(attrType enums.AttributeType, raw json.RawMessage) (AttributeValue, error) {
	switch attrType {
	case enums.AttributeTypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected a string")
		}
		return TextValue(s), nil
	case enums.AttributeTypeInteger:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("expected an integer")
		}
		return IntegerValue(n), nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %q", attrType)
	}
}

// checkValueType fails when the variant does not match the attribute definition.
func checkValueType(attr models.ProductAttribute, value AttributeValue) error {
	if value == nil {
		return fmt.Errorf("attribute %q requires a value", attr.Code)
	}
	if value.Type() != attr.Type {
		return fmt.Errorf("attribute %q expects %s, got %s", attr.Code, attr.Type, value.Type())
	}
	return nil
}

// storeValue writes the variant into the typed columns of row.
func storeValue(row *models.ProductAttributeValue, value AttributeValue) {
	row.ValueText = nil
	row.ValueInteger = nil
	switch v := value.(type) {
	case TextValue:
		s := string(v)
		row.ValueText = &s
	case IntegerValue:
		n := int64(v)
		row.ValueInteger = &n
	}
}

// loadValue reads the typed column selected by the attribute type.
func loadValue(attrType enums.AttributeType, row models.ProductAttributeValue) (AttributeValue, bool) {
	switch attrType {
	case enums.AttributeTypeText:
		if row.ValueText == nil {
			return nil, false
		}
		return TextValue(*row.ValueText), true
	case enums.AttributeTypeInteger:
		if row.ValueInteger == nil {
			return nil, false
		}
		return IntegerValue(*row.ValueInteger), true
	}
	return nil, false
}

// RenderAttributeValue returns the display form of a stored value, or "" when unset.
func RenderAttributeValue(row models.ProductAttributeValue) string {
	if row.Attribute == nil {
		return ""
	}
	value, ok := loadValue(row.Attribute.Type, row)
	if !ok {
		return ""
	}
	return value.Render()
}
