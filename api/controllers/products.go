package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/homeshopping/homeshopping-backend/api/responses"
	"github.com/homeshopping/homeshopping-backend/api/validators"
	product "github.com/homeshopping/homeshopping-backend/internal/products"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

type productChangesRequest struct {
	Title          *string                     `json:"title" validate:"omitempty,min=1,max=255"`
	Article        *string                     `json:"article" validate:"omitempty,max=255"`
	Structure      *string                     `json:"structure" validate:"omitempty,oneof=standalone parent child"`
	ProductClassID *uint64                     `json:"product_class_id"`
	CategoryID     *uint64                     `json:"category_id"`
	ParentID       *uint64                     `json:"parent_id"`
	Attributes     []attributeValueRequest     `json:"attributes" validate:"dive"`
	StockRecords   []stockRecordChangesRequest `json:"stock_records" validate:"dive"`
}

type attributeValueRequest struct {
	Code  string          `json:"code" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

type stockRecordChangesRequest struct {
	ID                *uint64          `json:"id"`
	PartnerSKU        *string          `json:"partner_sku" validate:"omitempty,max=128"`
	Price             *decimal.Decimal `json:"price"`
	NumInStock        *int             `json:"num_in_stock" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
}

func (req productChangesRequest) toChanges() product.ProductChanges {
	changes := product.ProductChanges{}
	if req.Title != nil || req.Article != nil || req.Structure != nil ||
		req.ProductClassID != nil || req.CategoryID != nil || req.ParentID != nil {
		core := &product.CoreFields{
			Title:          req.Title,
			Article:        req.Article,
			ProductClassID: req.ProductClassID,
			CategoryID:     req.CategoryID,
			ParentID:       req.ParentID,
		}
		if req.Structure != nil {
			structure := enums.ProductStructure(*req.Structure)
			core.Structure = &structure
		}
		changes.Core = core
	}
	for _, attr := range req.Attributes {
		changes.Attributes = append(changes.Attributes, product.AttributeChange{Code: attr.Code, Raw: attr.Value})
	}
	for _, sr := range req.StockRecords {
		changes.StockRecords = append(changes.StockRecords, product.StockRecordChange{
			ID:                sr.ID,
			PartnerSKU:        sr.PartnerSKU,
			Price:             sr.Price,
			NumInStock:        sr.NumInStock,
			LowStockThreshold: sr.LowStockThreshold,
		})
	}
	return changes
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type createProductClassRequest struct {
	Name       string `json:"name" validate:"required,max=128"`
	Slug       string `json:"slug" validate:"required,max=128"`
	TrackStock *bool  `json:"track_stock"`
}

type createAttributeRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	Code     string `json:"code" validate:"required,max=128"`
	Type     string `json:"type" validate:"required,oneof=text integer"`
	Required bool   `json:"required"`
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ListStockRecords(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, err := svc.ListStockRecords(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

func GetStockRecord(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recordID, err := validators.ParseIDParam(r, "stockRecordID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.GetStockRecord(r.Context(), productID, recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func ListCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func GetCategory(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.GetCategory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productChangesRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateProduct(r.Context(), req.toChanges())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req productChangesRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateProduct(r.Context(), id, req.toChanges())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminCreateCategory(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), req.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminListProductClasses(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classes, err := svc.ListProductClasses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, classes)
	}
}

func AdminCreateProductClass(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductClassRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := product.CreateProductClassInput{Name: req.Name, Slug: req.Slug, TrackStock: true}
		if req.TrackStock != nil {
			input.TrackStock = *req.TrackStock
		}
		class, err := svc.CreateProductClass(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, class)
	}
}

func AdminCreateAttribute(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID, err := validators.ParseIDParam(r, "classID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createAttributeRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		attr, err := svc.CreateAttribute(r.Context(), classID, product.CreateAttributeInput{
			Name:     req.Name,
			Code:     req.Code,
			Type:     enums.AttributeType(req.Type),
			Required: req.Required,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attr)
	}
}
