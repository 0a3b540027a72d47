package product

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

// Repository wires together all catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductDetail loads the product with class, category, attribute values and stock records.
func (r *Repository) GetProductDetail(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("ProductClass.Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Category").
		Preload("AttributeValues", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("AttributeValues.Attribute").
		Preload("StockRecords", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns products after the cursor id, newest first.
func (r *Repository) ListProducts(ctx context.Context, afterID uint64, limit int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("StockRecords", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id DESC").
		Limit(limit)
	if afterID > 0 {
		q = q.Where("id < ?", afterID)
	}
	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

// FindProductClass loads a class with its attribute definitions.
func (r *Repository) FindProductClass(ctx context.Context, id uint64) (*models.ProductClass, error) {
	var class models.ProductClass
	err := r.db.WithContext(ctx).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&class, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *Repository) ListProductClasses(ctx context.Context) ([]models.ProductClass, error) {
	var rows []models.ProductClass
	err := r.db.WithContext(ctx).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateProductClass(ctx context.Context, class *models.ProductClass) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(class).Error
}

func (r *Repository) CreateAttribute(ctx context.Context, attr *models.ProductAttribute) error {
	return r.db.WithContext(ctx).Create(attr).Error
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	var rows []models.ProductCategory
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindCategory(ctx context.Context, id uint64) (*models.ProductCategory, error) {
	var category models.ProductCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.ProductCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindAttributeValue returns the value row for (product, attribute), or nil when absent.
func (r *Repository) FindAttributeValue(ctx context.Context, productID, attributeID uint64) (*models.ProductAttributeValue, error) {
	var row models.ProductAttributeValue
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND attribute_id = ?", productID, attributeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) SaveAttributeValue(ctx context.Context, row *models.ProductAttributeValue) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(row).Error
}

func (r *Repository) ListStockRecords(ctx context.Context, productID uint64) ([]models.StockRecord, error) {
	var rows []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindStockRecord(ctx context.Context, id uint64) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) SaveStockRecord(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
