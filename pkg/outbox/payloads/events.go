package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent is published once a basket has been converted into an order.
type OrderPlacedEvent struct {
	OrderID   uint64     `json:"order_id"`
	Number    string     `json:"number"`
	BasketID  uint64     `json:"basket_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Email     string     `json:"email"`
	Total     string     `json:"total"`
	LineCount int        `json:"line_count"`
	PlacedAt  time.Time  `json:"placed_at"`
}

// BasketFrozenEvent records that a basket stopped accepting edits.
type BasketFrozenEvent struct {
	BasketID uint64 `json:"basket_id"`
}
