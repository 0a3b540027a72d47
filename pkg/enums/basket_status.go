package enums

import "fmt"

// BasketStatus tracks where a basket sits in its lifecycle.
type BasketStatus string

const (
	BasketStatusOpen      BasketStatus = "Open"
	BasketStatusMerged    BasketStatus = "Merged"
	BasketStatusSaved     BasketStatus = "Saved"
	BasketStatusFrozen    BasketStatus = "Frozen"
	BasketStatusSubmitted BasketStatus = "Submitted"
)

var validBasketStatuses = []BasketStatus{
	BasketStatusOpen,
	BasketStatusMerged,
	BasketStatusSaved,
	BasketStatusFrozen,
	BasketStatusSubmitted,
}

// editableBasketStatuses lists the statuses whose lines may still change.
var editableBasketStatuses = []BasketStatus{BasketStatusOpen}

// String implements fmt.Stringer.
func (s BasketStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BasketStatus.
func (s BasketStatus) IsValid() bool {
	for _, candidate := range validBasketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsEditable reports whether lines of a basket in this status may be mutated.
func (s BasketStatus) IsEditable() bool {
	for _, candidate := range editableBasketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// EditableBasketStatuses returns a copy of the editable status set for query filters.
func EditableBasketStatuses() []BasketStatus {
	out := make([]BasketStatus, len(editableBasketStatuses))
	copy(out, editableBasketStatuses)
	return out
}

// ParseBasketStatus converts raw input into a BasketStatus.
func ParseBasketStatus(value string) (BasketStatus, error) {
	for _, candidate := range validBasketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid basket status %q", value)
}
