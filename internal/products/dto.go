package product

import (
	"time"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

// ProductSummaryDTO is the list representation of a product.
type ProductSummaryDTO struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Structure   string  `json:"structure"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	Price       *string `json:"price,omitempty"`
	IsAvailable bool    `json:"is_available"`
}

// ProductDTO is the detail representation of a product.
type ProductDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Article        string              `json:"article"`
	Structure      string              `json:"structure"`
	ProductClassID *uint64             `json:"product_class_id,omitempty"`
	Category       *CategoryDTO        `json:"category,omitempty"`
	ParentID       *uint64             `json:"parent_id,omitempty"`
	Attributes     []AttributeValueDTO `json:"attributes"`
	StockRecords   []StockRecordDTO    `json:"stock_records"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type AttributeValueDTO struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type StockRecordDTO struct {
	ID                uint64 `json:"id"`
	ProductID         uint64 `json:"product_id"`
	PartnerSKU        string `json:"partner_sku"`
	Price             string `json:"price"`
	NumInStock        int    `json:"num_in_stock"`
	LowStockThreshold *int   `json:"low_stock_threshold,omitempty"`
	IsLowOnStock      bool   `json:"is_low_on_stock"`
}

type CategoryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type AttributeDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type ProductClassDTO struct {
	ID         uint64         `json:"id"`
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	TrackStock bool           `json:"track_stock"`
	Attributes []AttributeDTO `json:"attributes"`
}

func NewProductSummaryDTO(p models.Product) ProductSummaryDTO {
	dto := ProductSummaryDTO{
		ID:         p.ID,
		Title:      p.Title,
		Structure:  string(p.Structure),
		CategoryID: p.CategoryID,
	}
	var cheapest *models.StockRecord
	for i := range p.StockRecords {
		sr := &p.StockRecords[i]
		if sr.NumInStock > 0 {
			dto.IsAvailable = true
		}
		if cheapest == nil || sr.Price.LessThan(cheapest.Price) {
			cheapest = sr
		}
	}
	if cheapest != nil {
		price := cheapest.Price.StringFixed(2)
		dto.Price = &price
	}
	return dto
}

func NewProductDTO(p *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:             p.ID,
		Title:          p.Title,
		Article:        p.Article,
		Structure:      string(p.Structure),
		ProductClassID: p.ProductClassID,
		ParentID:       p.ParentID,
		Attributes:     make([]AttributeValueDTO, 0, len(p.AttributeValues)),
		StockRecords:   make([]StockRecordDTO, 0, len(p.StockRecords)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		c := NewCategoryDTO(*p.Category)
		dto.Category = &c
	}
	for _, v := range p.AttributeValues {
		if v.Attribute == nil {
			continue
		}
		dto.Attributes = append(dto.Attributes, AttributeValueDTO{
			Code:  v.Attribute.Code,
			Name:  v.Attribute.Name,
			Type:  string(v.Attribute.Type),
			Value: RenderAttributeValue(v),
		})
	}
	for _, sr := range p.StockRecords {
		dto.StockRecords = append(dto.StockRecords, NewStockRecordDTO(sr))
	}
	return dto
}

func NewStockRecordDTO(sr models.StockRecord) StockRecordDTO {
	return StockRecordDTO{
		ID:                sr.ID,
		ProductID:         sr.ProductID,
		PartnerSKU:        sr.PartnerSKU,
		Price:             sr.Price.StringFixed(2),
		NumInStock:        sr.NumInStock,
		LowStockThreshold: sr.LowStockThreshold,
		IsLowOnStock:      sr.IsLowOnStock(),
	}
}

func NewCategoryDTO(c models.ProductCategory) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func NewProductClassDTO(c models.ProductClass) ProductClassDTO {
	dto := ProductClassDTO{
		ID:         c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		TrackStock: c.TrackStock,
		Attributes: make([]AttributeDTO, 0, len(c.Attributes)),
	}
	for _, a := range c.Attributes {
		dto.Attributes = append(dto.Attributes, NewAttributeDTO(a))
	}
	return dto
}

func NewAttributeDTO(a models.ProductAttribute) AttributeDTO {
	return AttributeDTO{ID: a.ID, Name: a.Name, Code: a.Code, Type: string(a.Type), Required: a.Required}
}
