package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

// Repository abstracts order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NumberExists(ctx context.Context, number string) (bool, error)
	CreateShippingAddress(ctx context.Context, address *models.ShippingAddress) error
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLine(ctx context.Context, line *models.OrderLine) error
	CreateLineAttributes(ctx context.Context, attrs []models.OrderLineAttribute) error
	FindByID(ctx context.Context, id uint64) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, afterID uint64, limit int) ([]models.Order, error)
}
