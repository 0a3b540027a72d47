package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// CreateUser inserts an active, non-staff user.
func CreateUser(t testing.TB, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("shopper_%s@example.com", uuid.NewString()[:8]),
		Username:     "shopper",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateProduct inserts a standalone product.
func CreateProduct(t testing.TB, conn *gorm.DB, title string) *models.Product {
	t.Helper()
	product := &models.Product{Title: title, Structure: enums.ProductStructureStandalone}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// CreateStockRecord inserts a stock record priced at price (e.g. "10.00").
func CreateStockRecord(t testing.TB, conn *gorm.DB, productID uint64, price string, numInStock int) *models.StockRecord {
	t.Helper()
	record := &models.StockRecord{
		ProductID:  productID,
		PartnerSKU: "SKU-" + uuid.NewString()[:8],
		Price:      decimal.RequireFromString(price),
		NumInStock: numInStock,
	}
	if err := conn.Create(record).Error; err != nil {
		t.Fatalf("create stock record: %v", err)
	}
	return record
}

// CreateBasket inserts a basket in the given status, owned by owner when non-nil.
func CreateBasket(t testing.TB, conn *gorm.DB, owner *uuid.UUID, status enums.BasketStatus) *models.Basket {
	t.Helper()
	basket := &models.Basket{OwnerID: owner, Status: status}
	if err := conn.Create(basket).Error; err != nil {
		t.Fatalf("create basket: %v", err)
	}
	return basket
}

// CreateLine inserts a basket line.
func CreateLine(t testing.TB, conn *gorm.DB, basketID, productID, stockRecordID uint64, quantity int) *models.BasketLine {
	t.Helper()
	line := &models.BasketLine{
		BasketID:      basketID,
		ProductID:     productID,
		StockRecordID: &stockRecordID,
		Quantity:      quantity,
	}
	if err := conn.Create(line).Error; err != nil {
		t.Fatalf("create basket line: %v", err)
	}
	return line
}

// StockOf reads num_in_stock for a stock record.
func StockOf(t testing.TB, conn *gorm.DB, stockRecordID uint64) int {
	t.Helper()
	var record models.StockRecord
	if err := conn.First(&record, "id = ?", stockRecordID).Error; err != nil {
		t.Fatalf("load stock record: %v", err)
	}
	return record.NumInStock
}
