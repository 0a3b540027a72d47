package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

// ProductChanges is the full set of edits for one product. Nil/empty parts are skipped.
type ProductChanges struct {
	Core         *CoreFields
	Attributes   []AttributeChange
	StockRecords []StockRecordChange
}

type CoreFields struct {
	Title          *string
	Article        *string
	Structure      *enums.ProductStructure
	ProductClassID *uint64
	CategoryID     *uint64
	ParentID       *uint64
}

// AttributeChange sets the value of the attribute named by Code. Raw is decoded
// against the attribute's declared type when Value is nil.
type AttributeChange struct {
	Code  string
	Value AttributeValue
	Raw   json.RawMessage
}

// StockRecordChange updates the record with ID, or creates one when ID is nil.
type StockRecordChange struct {
	ID                *uint64
	PartnerSKU        *string
	Price             *decimal.Decimal
	NumInStock        *int
	LowStockThreshold *int
}

// ApplyProductChanges persists core fields, then attribute values, then stock
// records. The first failing step aborts; callers run it inside a transaction.
func ApplyProductChanges(ctx context.Context, repo *Repository, product *models.Product, changes ProductChanges) error {
	if err := applyCoreFields(ctx, repo, product, changes.Core); err != nil {
		return err
	}
	if err := applyAttributeValues(ctx, repo, product, changes.Attributes); err != nil {
		return err
	}
	return applyStockRecords(ctx, repo, product, changes.StockRecords)
}

func applyCoreFields(ctx context.Context, repo *Repository, product *models.Product, core *CoreFields) error {
	if core == nil {
		if product.ID == 0 {
			return fieldError("title", "title is required")
		}
		return nil
	}
	if core.Title != nil {
		product.Title = strings.TrimSpace(*core.Title)
	}
	if product.Title == "" {
		return fieldError("title", "title is required")
	}
	if core.Article != nil {
		product.Article = strings.TrimSpace(*core.Article)
	}
	if core.Structure != nil {
		if !core.Structure.IsValid() {
			return fieldError("structure", fmt.Sprintf("invalid structure %q", *core.Structure))
		}
		product.Structure = *core.Structure
	}
	if product.Structure == "" {
		product.Structure = enums.ProductStructureStandalone
	}
	if core.ProductClassID != nil {
		if _, err := repo.FindProductClass(ctx, *core.ProductClassID); err != nil {
			return lookupError(err, "product_class_id", "product class not found")
		}
		product.ProductClassID = core.ProductClassID
	}
	if core.CategoryID != nil {
		if _, err := repo.FindCategory(ctx, *core.CategoryID); err != nil {
			return lookupError(err, "category_id", "category not found")
		}
		product.CategoryID = core.CategoryID
	}
	if core.ParentID != nil {
		if product.ID != 0 && *core.ParentID == product.ID {
			return fieldError("parent_id", "a product cannot be its own parent")
		}
		if _, err := repo.FindByID(ctx, *core.ParentID); err != nil {
			return lookupError(err, "parent_id", "parent product not found")
		}
		product.ParentID = core.ParentID
	}
	if product.Structure == enums.ProductStructureChild && product.ParentID == nil {
		return fieldError("parent_id", "child products need a parent")
	}

	if product.ID == 0 {
		return repo.CreateProduct(ctx, product)
	}
	return repo.UpdateProduct(ctx, product)
}

func applyAttributeValues(ctx context.Context, repo *Repository, product *models.Product, changes []AttributeChange) error {
	if product.ProductClassID == nil {
		if len(changes) > 0 {
			return fieldError("attributes", "product has no class to define attributes")
		}
		return nil
	}
	class, err := repo.FindProductClass(ctx, *product.ProductClassID)
	if err != nil {
		return lookupError(err, "product_class_id", "product class not found")
	}
	byCode := make(map[string]models.ProductAttribute, len(class.Attributes))
	for _, attr := range class.Attributes {
		byCode[attr.Code] = attr
	}

	for _, change := range changes {
		attr, ok := byCode[change.Code]
		if !ok {
			return fieldError("attributes."+change.Code, "unknown attribute")
		}
		value := change.Value
		if value == nil {
			if value, err = ParseAttributeValue(attr.Type, change.Raw); err != nil {
				return fieldError("attributes."+change.Code, err.Error())
			}
		}
		if err := checkValueType(attr, value); err != nil {
			return fieldError("attributes."+change.Code, err.Error())
		}
		row, err := repo.FindAttributeValue(ctx, product.ID, attr.ID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &models.ProductAttributeValue{AttributeID: attr.ID, ProductID: product.ID}
		}
		storeValue(row, value)
		if err := repo.SaveAttributeValue(ctx, row); err != nil {
			return err
		}
	}

	for _, attr := range class.Attributes {
		if !attr.Required {
			continue
		}
		row, err := repo.FindAttributeValue(ctx, product.ID, attr.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return fieldError("attributes."+attr.Code, "attribute is required")
		}
		if _, ok := loadValue(attr.Type, *row); !ok {
			return fieldError("attributes."+attr.Code, "attribute is required")
		}
	}
	return nil
}

func applyStockRecords(ctx context.Context, repo *Repository, product *models.Product, changes []StockRecordChange) error {
	for i, change := range changes {
		field := fmt.Sprintf("stock_records[%d]", i)
		record := &models.StockRecord{ProductID: product.ID}
		if change.ID != nil {
			existing, err := repo.FindStockRecord(ctx, *change.ID)
			if err != nil {
				return lookupError(err, field+".id", "stock record not found")
			}
			if existing.ProductID != product.ID {
				return fieldError(field+".id", "stock record belongs to another product")
			}
			record = existing
		} else if change.PartnerSKU == nil || change.Price == nil {
			return fieldError(field, "partner_sku and price are required for new stock records")
		}

		if change.PartnerSKU != nil {
			record.PartnerSKU = strings.TrimSpace(*change.PartnerSKU)
			if record.PartnerSKU == "" {
				return fieldError(field+".partner_sku", "partner_sku must not be blank")
			}
		}
		if change.Price != nil {
			if change.Price.IsNegative() {
				return fieldError(field+".price", "price must not be negative")
			}
			record.Price = change.Price.Round(2)
		}
		if change.NumInStock != nil {
			if *change.NumInStock < 0 {
				return fieldError(field+".num_in_stock", "num_in_stock must not be negative")
			}
			record.NumInStock = *change.NumInStock
		}
		if change.LowStockThreshold != nil {
			threshold := *change.LowStockThreshold
			record.LowStockThreshold = &threshold
		}
		if err := repo.SaveStockRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}

func lookupError(err error, field, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fieldError(field, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
