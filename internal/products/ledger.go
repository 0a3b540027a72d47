package product

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

// ReasonInsufficientStock marks a floor-checked decrement that would go negative.
const ReasonInsufficientStock = "InsufficientStock"

// StockLedger is the authoritative stock-on-hand source per (product, stock record).
type StockLedger struct {
	db *gorm.DB
}

func NewStockLedger(db *gorm.DB) *StockLedger {
	return &StockLedger{db: db}
}

// WithTx returns a ledger bound to tx.
func (l *StockLedger) WithTx(tx *gorm.DB) *StockLedger {
	return &StockLedger{db: tx}
}

// StockOnHand returns num_in_stock for the stock record, which must belong to productID.
func (l *StockLedger) StockOnHand(ctx context.Context, productID, stockRecordID uint64) (int, error) {
	record, err := l.find(ctx, productID, stockRecordID)
	if err != nil {
		return 0, err
	}
	return record.NumInStock, nil
}

// DecrementStock subtracts amount with a plain read-modify-write. Stock may go
// negative under concurrent checkouts.
func (l *StockLedger) DecrementStock(ctx context.Context, productID, stockRecordID uint64, amount int) error {
	record, err := l.find(ctx, productID, stockRecordID)
	if err != nil {
		return err
	}
	record.NumInStock -= amount
	return l.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ?", record.ID).
		Update("num_in_stock", record.NumInStock).Error
}

// DecrementStockFloor subtracts amount atomically and only when enough stock remains.
func (l *StockLedger) DecrementStockFloor(ctx context.Context, productID, stockRecordID uint64, amount int) error {
	res := l.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ? AND product_id = ? AND num_in_stock >= ?", stockRecordID, productID, amount).
		Update("num_in_stock", gorm.Expr("num_in_stock - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := l.find(ctx, productID, stockRecordID); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "not enough stock to fulfil this order").
			WithDetails(map[string]any{"reason": ReasonInsufficientStock, "stock_record_id": stockRecordID})
	}
	return nil
}

func (l *StockLedger) find(ctx context.Context, productID, stockRecordID uint64) (*models.StockRecord, error) {
	var record models.StockRecord
	err := l.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", stockRecordID, productID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return &record, nil
}
