package basket

import (
	"errors"

	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

// Failure reasons carried in the "reason" detail of basket errors.
const (
	ReasonQuantityNotAllowed   = "QuantityNotAllowed"
	ReasonProductUnavailable   = "ProductUnavailable"
	ReasonIncorrectStockRecord = "IncorrectStockRecord"
	ReasonInvalidQuantity      = "InvalidQuantity"
	ReasonNotEditable          = "BasketNotEditable"
)

const (
	msgQuantityNotAllowed   = "This quantity is not allowed."
	msgProductUnavailable   = "This product is not available to buy now"
	msgIncorrectStockRecord = "Incorrect stockrecord"
	msgInvalidQuantity      = "Cannot buy this quantity."
	msgNotEditable          = "basket can no longer be modified"
)

func reasonError(code pkgerrors.Code, reason, message string) error {
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"reason":  reason,
		"message": message,
	})
}

// ErrNotEditable reports a mutation attempted against a basket outside the Open status.
func ErrNotEditable() error {
	return reasonError(pkgerrors.CodeStateConflict, ReasonNotEditable, msgNotEditable)
}

func errBasketNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
}

func errLineNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "basket line not found")
}

func errForbidden() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "basket belongs to another shopper")
}

// translateWrite maps storage failures from line and basket writes onto typed errors.
func translateWrite(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrBasketNotEditable) {
		return ErrNotEditable()
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if translated := db.TranslateIntegrity(err); pkgerrors.As(translated) != nil {
		return translated
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func translateRead(err error, op string) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
