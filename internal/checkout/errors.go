package checkout

import (
	"fmt"

	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

// Failure reasons carried in the "reason" detail of checkout errors.
const (
	ReasonUnauthorized         = "Unauthorized"
	ReasonEmptyBasket          = "EmptyBasketCheckout"
	ReasonGuestEmailRequired   = "GuestEmailRequired"
	ReasonInvalidGuestEmail    = "InvalidGuestEmail"
	ReasonDuplicateOrderNumber = "DuplicateOrderNumber"
)

func reasonError(code pkgerrors.Code, reason, message string) error {
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"reason":  reason,
		"message": message,
	})
}

func errUnauthorized() error {
	return reasonError(pkgerrors.CodeUnauthorized, ReasonUnauthorized, "Unauthorized")
}

func errEmptyBasket() error {
	return reasonError(pkgerrors.CodeValidation, ReasonEmptyBasket, "Cannot checkout with empty basket")
}

func errGuestEmailRequired() error {
	return reasonError(pkgerrors.CodeValidation, ReasonGuestEmailRequired, "Guest email is required for anonymous checkouts")
}

func errInvalidGuestEmail() error {
	return reasonError(pkgerrors.CodeValidation, ReasonInvalidGuestEmail, "Guest email is not a valid email address")
}

func errDuplicateOrderNumber(number string) error {
	message := fmt.Sprintf("There is already an order with number %s", number)
	return pkgerrors.New(pkgerrors.CodeConflict, message).WithDetails(map[string]any{
		"reason":       ReasonDuplicateOrderNumber,
		"message":      message,
		"order_number": number,
	})
}
