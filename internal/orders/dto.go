package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

type OrderDTO struct {
	ID              uint64              `json:"id"`
	Number          string              `json:"number"`
	Total           string              `json:"total"`
	Email           string              `json:"email"`
	GuestEmail      string              `json:"guest_email,omitempty"`
	IsAnonymous     bool                `json:"is_anonymous"`
	BasketID        *uint64             `json:"basket_id"`
	UserID          *uuid.UUID          `json:"user_id"`
	ShippingAddress *ShippingAddressDTO `json:"shipping_address"`
	Lines           []OrderLineDTO      `json:"lines"`
	DatePlaced      time.Time           `json:"date_placed"`
}

type OrderLineDTO struct {
	ID            uint64             `json:"id"`
	ProductID     *uint64            `json:"product_id"`
	StockRecordID *uint64            `json:"stock_record_id"`
	Quantity      int                `json:"quantity"`
	Attributes    []LineAttributeDTO `json:"attributes"`
}

type LineAttributeDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type ShippingAddressDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// NewOrderDTO maps an order loaded with its user, address and lines.
func NewOrderDTO(o *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:         o.ID,
		Number:     o.Number,
		Total:      o.Total.StringFixed(2),
		Email:      o.Email(),
		BasketID:   o.BasketID,
		UserID:     o.UserID,
		Lines:      make([]OrderLineDTO, 0, len(o.Lines)),
		DatePlaced: o.DatePlaced,
	}
	if o.IsAnonymous() {
		dto.IsAnonymous = true
		dto.GuestEmail = o.GuestEmail
	}
	if a := o.ShippingAddress; a != nil {
		dto.ShippingAddress = &ShippingAddressDTO{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Line1:     a.Line1,
			Line2:     a.Line2,
			Phone:     a.Phone,
			Notes:     a.Notes,
		}
	}
	for _, line := range o.Lines {
		attrs := make([]LineAttributeDTO, 0, len(line.Attributes))
		for _, attr := range line.Attributes {
			attrs = append(attrs, LineAttributeDTO{Type: attr.Type, Value: attr.Value})
		}
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ID:            line.ID,
			ProductID:     line.ProductID,
			StockRecordID: line.StockRecordID,
			Quantity:      line.Quantity,
			Attributes:    attrs,
		})
	}
	return dto
}
