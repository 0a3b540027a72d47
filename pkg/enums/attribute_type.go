package enums

import "fmt"

// AttributeType is the declared type of a product attribute.
type AttributeType string

const (
	AttributeTypeText    AttributeType = "text"
	AttributeTypeInteger AttributeType = "integer"
)

var validAttributeTypes = []AttributeType{
	AttributeTypeText,
	AttributeTypeInteger,
}

func (a AttributeType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AttributeType.
func (a AttributeType) IsValid() bool {
	for _, candidate := range validAttributeTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttributeType converts raw input into an AttributeType.
func ParseAttributeType(value string) (AttributeType, error) {
	for _, candidate := range validAttributeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attribute type %q", value)
}
