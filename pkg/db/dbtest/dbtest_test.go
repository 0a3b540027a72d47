package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

func TestSchemaRejectsNegativeLineQuantity(t *testing.T) {
	conn := Open(t)
	p := CreateProduct(t, conn, "Mug")
	sr := CreateStockRecord(t, conn, p.ID, "4.00", 3)
	b := CreateBasket(t, conn, nil, enums.BasketStatusOpen)

	err := conn.Create(&models.BasketLine{BasketID: b.ID, ProductID: p.ID, StockRecordID: &sr.ID, Quantity: -1}).Error
	require.Error(t, err)

	line := CreateLine(t, conn, b.ID, p.ID, sr.ID, 0)
	err = conn.Model(&models.BasketLine{}).Where("id = ?", line.ID).Update("quantity", -2).Error
	require.Error(t, err)
}

func TestSchemaRejectsUnknownBasketStatus(t *testing.T) {
	conn := Open(t)

	err := conn.Create(&models.Basket{Status: enums.BasketStatus("Abandoned")}).Error
	require.Error(t, err)

	b := CreateBasket(t, conn, nil, enums.BasketStatusOpen)
	err = conn.Model(&models.Basket{}).Where("id = ?", b.ID).Update("status", "Abandoned").Error
	require.Error(t, err)
}
