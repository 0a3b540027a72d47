package basket

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

type catalogReader interface {
	FindByID(ctx context.Context, id uint64) (*models.Product, error)
	FindStockRecord(ctx context.Context, id uint64) (*models.StockRecord, error)
}

type stockReader interface {
	StockOnHand(ctx context.Context, productID, stockRecordID uint64) (int, error)
}

// LineValidator rejects line quantities above stock on hand. The check is
// advisory: stock is read now and may drop before checkout.
type LineValidator struct {
	repo    *Repository
	catalog catalogReader
	stock   stockReader
}

func NewLineValidator(repo *Repository, catalog catalogReader, stock stockReader) *LineValidator {
	return &LineValidator{repo: repo, catalog: catalog, stock: stock}
}

// ValidateAdd checks that adding delta of (productID, stockRecordID) keeps the
// line within stock.
func (v *LineValidator) ValidateAdd(ctx context.Context, basket *models.Basket, productID, stockRecordID uint64, delta int) error {
	if _, err := v.catalog.FindByID(ctx, productID); err != nil {
		return lookupError(err, "product_id", "product not found")
	}
	record, err := v.catalog.FindStockRecord(ctx, stockRecordID)
	if err != nil {
		return lookupError(err, "stock_record_id", "stock record not found")
	}
	if record.ProductID != productID {
		return reasonError(pkgerrors.CodeValidation, ReasonIncorrectStockRecord, msgIncorrectStockRecord)
	}

	desired := delta
	if basket.IsPersisted() {
		line, err := v.repo.FindLine(ctx, basket.ID, productID, &stockRecordID)
		if err != nil {
			return translateRead(err, "load basket line")
		}
		if line != nil {
			desired += line.Quantity
		}
	}

	onHand, err := v.stock.StockOnHand(ctx, productID, stockRecordID)
	if err != nil {
		return err
	}
	if desired > onHand {
		if onHand < 1 {
			return reasonError(pkgerrors.CodeValidation, ReasonProductUnavailable, msgProductUnavailable)
		}
		return reasonError(pkgerrors.CodeValidation, ReasonQuantityNotAllowed, msgQuantityNotAllowed)
	}
	return nil
}

// ValidateQuantity checks an absolute quantity for an existing line.
func (v *LineValidator) ValidateQuantity(ctx context.Context, line *models.BasketLine, quantity int) error {
	if quantity < 0 || line.StockRecordID == nil {
		return reasonError(pkgerrors.CodeValidation, ReasonInvalidQuantity, msgInvalidQuantity)
	}
	onHand, err := v.stock.StockOnHand(ctx, line.ProductID, *line.StockRecordID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return reasonError(pkgerrors.CodeValidation, ReasonInvalidQuantity, msgInvalidQuantity)
	}
	if err != nil {
		return err
	}
	if quantity > onHand {
		return reasonError(pkgerrors.CodeValidation, ReasonInvalidQuantity, msgInvalidQuantity)
	}
	return nil
}

func lookupError(err error, field, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{field: message})
	}
	return translateRead(err, "load catalog entry")
}
