package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// ProductClass groups products sharing an attribute schema.
type ProductClass struct {
	ID         uint64             `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string             `gorm:"column:name;not null"`
	Slug       string             `gorm:"column:slug;not null;uniqueIndex"`
	TrackStock bool               `gorm:"column:track_stock;not null"`
	Attributes []ProductAttribute `gorm:"foreignKey:ProductClassID"`
}

type ProductCategory struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null"`
}

type Product struct {
	ID              uint64                  `gorm:"column:id;primaryKey;autoIncrement"`
	Structure       enums.ProductStructure  `gorm:"column:structure;not null;default:'standalone'"`
	Title           string                  `gorm:"column:title;not null"`
	Article         string                  `gorm:"column:article;not null;default:''"`
	ProductClassID  *uint64                 `gorm:"column:product_class_id"`
	ProductClass    *ProductClass           `gorm:"foreignKey:ProductClassID"`
	CategoryID      *uint64                 `gorm:"column:category_id"`
	Category        *ProductCategory        `gorm:"foreignKey:CategoryID"`
	ParentID        *uint64                 `gorm:"column:parent_id"`
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	StockRecords    []StockRecord           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

type ProductAttribute struct {
	ID             uint64              `gorm:"column:id;primaryKey;autoIncrement"`
	ProductClassID uint64              `gorm:"column:product_class_id;not null;index"`
	Name           string              `gorm:"column:name;not null"`
	Code           string              `gorm:"column:code;not null"`
	Type           enums.AttributeType `gorm:"column:type;not null;default:'text'"`
	Required       bool                `gorm:"column:required;not null;default:false"`
}

// ProductAttributeValue stores exactly one of ValueText/ValueInteger, per the
// attribute's declared type.
type ProductAttributeValue struct {
	ID           uint64            `gorm:"column:id;primaryKey;autoIncrement"`
	AttributeID  uint64            `gorm:"column:attribute_id;not null"`
	Attribute    *ProductAttribute `gorm:"foreignKey:AttributeID"`
	ProductID    uint64            `gorm:"column:product_id;not null;index"`
	ValueText    *string           `gorm:"column:value_text"`
	ValueInteger *int64            `gorm:"column:value_integer"`
}

// StockRecord is a sellable offer of a product: a price plus stock on hand.
type StockRecord struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID         uint64          `gorm:"column:product_id;not null;index"`
	PartnerSKU        string          `gorm:"column:partner_sku;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	NumInStock        int             `gorm:"column:num_in_stock;not null;default:0"`
	LowStockThreshold *int            `gorm:"column:low_stock_threshold"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowOnStock reports whether stock dropped to the configured threshold.
func (s *StockRecord) IsLowOnStock() bool {
	return s.LowStockThreshold != nil && s.NumInStock <= *s.LowStockThreshold
}
