package enums

import "fmt"

// ProductStructure distinguishes standalone products from parent/child variants.
type ProductStructure string

const (
	ProductStructureStandalone ProductStructure = "standalone"
	ProductStructureParent     ProductStructure = "parent"
	ProductStructureChild      ProductStructure = "child"
)

var validProductStructures = []ProductStructure{
	ProductStructureStandalone,
	ProductStructureParent,
	ProductStructureChild,
}

func (s ProductStructure) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStructure.
func (s ProductStructure) IsValid() bool {
	for _, candidate := range validProductStructures {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStructure converts raw input into a ProductStructure.
func ParseProductStructure(value string) (ProductStructure, error) {
	for _, candidate := range validProductStructures {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product structure %q", value)
}
