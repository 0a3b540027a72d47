package basket

import (
	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

type LineDTO struct {
	ID            uint64  `json:"id"`
	BasketID      uint64  `json:"basket_id"`
	ProductID     uint64  `json:"product_id"`
	StockRecordID *uint64 `json:"stock_record_id"`
	Quantity      int     `json:"quantity"`
	Price         *string `json:"price"`
}

// BasketDTO is the basket representation. ID is null for a transient basket.
type BasketDTO struct {
	ID         *uint64            `json:"id"`
	OwnerID    *uuid.UUID         `json:"owner_id"`
	Status     enums.BasketStatus `json:"status"`
	Lines      []LineDTO          `json:"lines"`
	NumItems   int                `json:"num_items"`
	TotalPrice string             `json:"total_price"`
}

func NewLineDTO(line models.BasketLine) LineDTO {
	dto := LineDTO{
		ID:            line.ID,
		BasketID:      line.BasketID,
		ProductID:     line.ProductID,
		StockRecordID: line.StockRecordID,
		Quantity:      line.Quantity,
	}
	if price, ok := LinePrice(line); ok {
		formatted := price.StringFixed(2)
		dto.Price = &formatted
	}
	return dto
}

func NewBasketDTO(basket *models.Basket, lines []models.BasketLine) *BasketDTO {
	dto := &BasketDTO{
		OwnerID:    basket.OwnerID,
		Status:     basket.Status,
		Lines:      make([]LineDTO, 0, len(lines)),
		NumItems:   NumItems(lines),
		TotalPrice: TotalPrice(lines).StringFixed(2),
	}
	if basket.IsPersisted() {
		id := basket.ID
		dto.ID = &id
	}
	for _, line := range lines {
		dto.Lines = append(dto.Lines, NewLineDTO(line))
	}
	return dto
}
