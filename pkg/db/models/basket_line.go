package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrBasketNotEditable is returned when a line is written under a basket that left the Open status.
var ErrBasketNotEditable = errors.New("basket is not editable")

// BasketLine is one (product, stock record, quantity) entry of a basket.
type BasketLine struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	BasketID      uint64       `gorm:"column:basket_id;not null;index"`
	ProductID     uint64       `gorm:"column:product_id;not null"`
	StockRecordID *uint64      `gorm:"column:stock_record_id"`
	Quantity      int          `gorm:"column:quantity;not null"`
	StockRecord   *StockRecord `gorm:"foreignKey:StockRecordID"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave rejects writes while the parent basket is not editable. It runs on
// the caller's connection so it sees uncommitted status changes in the same tx.
func (l *BasketLine) BeforeSave(tx *gorm.DB) error {
	var parent Basket
	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("id", "status").
		Where("id = ?", l.BasketID).
		Take(&parent).Error
	if err != nil {
		return fmt.Errorf("load basket %d for line write: %w", l.BasketID, err)
	}
	if !parent.CanBeEdited() {
		return ErrBasketNotEditable
	}
	return nil
}
