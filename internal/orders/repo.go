package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateShippingAddress(ctx context.Context, address *models.ShippingAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.OrderLine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

func (r *repository) CreateLineAttributes(ctx context.Context, attrs []models.OrderLineAttribute) error {
	if len(attrs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attrs).Error
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	err := r.withDetail(ctx).Where("id = ?", id).Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders newest first, starting below afterID when set.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, afterID uint64, limit int) ([]models.Order, error) {
	q := r.withDetail(ctx).Where("user_id = ?", userID)
	if afterID > 0 {
		q = q.Where("id < ?", afterID)
	}
	var out []models.Order
	err := q.Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *repository) withDetail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("ShippingAddress").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}
