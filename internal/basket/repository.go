package basket

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// Repository persists baskets and their lines.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a basket in any status.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Basket, error) {
	var basket models.Basket
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&basket).Error; err != nil {
		return nil, err
	}
	return &basket, nil
}

// FindEditableByID loads a basket only while its lines may still change.
func (r *Repository) FindEditableByID(ctx context.Context, id uint64) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, enums.EditableBasketStatuses()).
		Take(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

// FindAnonymousOpen loads an ownerless Open basket. Missing rows yield nil, nil.
func (r *Repository) FindAnonymousOpen(ctx context.Context, id uint64) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id IS NULL AND status = ?", id, enums.BasketStatusOpen).
		Take(&basket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

// ListOpenByOwner returns the owner's Open baskets, earliest first.
func (r *Repository) ListOpenByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Basket, error) {
	var baskets []models.Basket
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, enums.BasketStatusOpen).
		Order("created_at ASC").
		Order("id ASC").
		Find(&baskets).Error
	return baskets, err
}

func (r *Repository) Create(ctx context.Context, basket *models.Basket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(basket).Error
}

// UpdateStatus moves a basket to status.
func (r *Repository) UpdateStatus(ctx context.Context, id uint64, status enums.BasketStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Touch bumps updated_at on a basket whose lines changed under it.
func (r *Repository) Touch(ctx context.Context, basket *models.Basket) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("id = ?", basket.ID).
		Update("updated_at", now).Error
	if err == nil {
		basket.UpdatedAt = now
	}
	return err
}

// Lines returns a basket's lines in insertion order with their stock records.
// A deleted stock record leaves StockRecord nil.
func (r *Repository) Lines(ctx context.Context, basketID uint64) ([]models.BasketLine, error) {
	var lines []models.BasketLine
	err := r.db.WithContext(ctx).
		Preload("StockRecord").
		Where("basket_id = ?", basketID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// FindLine looks a line up by its (basket, product, stock record) triple.
// Missing rows yield nil, nil.
func (r *Repository) FindLine(ctx context.Context, basketID, productID uint64, stockRecordID *uint64) (*models.BasketLine, error) {
	q := r.db.WithContext(ctx).Where("basket_id = ? AND product_id = ?", basketID, productID)
	if stockRecordID == nil {
		q = q.Where("stock_record_id IS NULL")
	} else {
		q = q.Where("stock_record_id = ?", *stockRecordID)
	}
	var line models.BasketLine
	err := q.Take(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLineByID loads a line that belongs to basketID.
func (r *Repository) FindLineByID(ctx context.Context, basketID, lineID uint64) (*models.BasketLine, error) {
	var line models.BasketLine
	err := r.db.WithContext(ctx).
		Preload("StockRecord").
		Where("id = ? AND basket_id = ?", lineID, basketID).
		Take(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) CreateLine(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

// SaveLine writes quantity and parent changes of an existing line.
func (r *Repository) SaveLine(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(line).Error
}

func (r *Repository) DeleteLine(ctx context.Context, lineID uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", lineID).Delete(&models.BasketLine{}).Error
}
