package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
	"github.com/homeshopping/homeshopping-backend/pkg/pagination"
)

var attributeCodePattern = regexp.MustCompile(`^[a-zA-Z_][0-9a-zA-Z_]*$`)

// Service exposes catalog reads and staff-only catalog management.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*pagination.Page[ProductSummaryDTO], error)
	GetProduct(ctx context.Context, id uint64) (*ProductDTO, error)
	CreateProduct(ctx context.Context, changes ProductChanges) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uint64, changes ProductChanges) (*ProductDTO, error)
	ListStockRecords(ctx context.Context, productID uint64) ([]StockRecordDTO, error)
	GetStockRecord(ctx context.Context, productID, stockRecordID uint64) (*StockRecordDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uint64) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	ListProductClasses(ctx context.Context) ([]ProductClassDTO, error)
	CreateProductClass(ctx context.Context, input CreateProductClassInput) (*ProductClassDTO, error)
	CreateAttribute(ctx context.Context, classID uint64, input CreateAttributeInput) (*AttributeDTO, error)
	WarmListCache(ctx context.Context) error
}

type CreateProductClassInput struct {
	Name       string
	Slug       string
	TrackStock bool
}

type CreateAttributeInput struct {
	Name     string
	Code     string
	Type     enums.AttributeType
	Required bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// listCache is the subset of the redis client used for the product list.
type listCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

type service struct {
	repo  *Repository
	tx    txRunner
	cache listCache
	cfg   config.CatalogConfig
	logg  *logger.Logger
}

// NewService builds the catalog service. cache may be nil, which disables list caching.
func NewService(repo *Repository, tx txRunner, cache listCache, cfg config.CatalogConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, cache: cache, cfg: cfg, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*pagination.Page[ProductSummaryDTO], error) {
	cacheable := s.cacheEnabled() && params.Cursor == "" && pagination.NormalizeLimit(params.Limit) == pagination.DefaultLimit
	if cacheable {
		if page, ok := s.readCache(ctx); ok {
			return page, nil
		}
	}

	afterID, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.loadPage(ctx, afterID, params.Limit)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.writeCache(ctx, page)
	}
	return page, nil
}

// WarmListCache rebuilds the cached first page of the product list.
func (s *service) WarmListCache(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}
	page, err := s.loadPage(ctx, 0, pagination.DefaultLimit)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal product list: %w", err)
	}
	return s.cache.Set(ctx, s.cacheKey(), payload, s.cfg.ListCacheTTL)
}

func (s *service) loadPage(ctx context.Context, afterID uint64, limit int) (*pagination.Page[ProductSummaryDTO], error) {
	rows, err := s.repo.ListProducts(ctx, afterID, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	items := make([]ProductSummaryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewProductSummaryDTO(row))
	}
	page := pagination.Trim(items, limit, func(p ProductSummaryDTO) uint64 { return p.ID })
	return &page, nil
}

func (s *service) GetProduct(ctx context.Context, id uint64) (*ProductDTO, error) {
	product, err := s.repo.GetProductDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) CreateProduct(ctx context.Context, changes ProductChanges) (*ProductDTO, error) {
	product := &models.Product{Structure: enums.ProductStructureStandalone}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return ApplyProductChanges(ctx, s.repo.WithTx(tx), product, changes)
	}); err != nil {
		return nil, wrapWriteError(err, "create product")
	}
	s.invalidateCache(ctx)
	return s.GetProduct(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uint64, changes ProductChanges) (*ProductDTO, error) {
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		return ApplyProductChanges(ctx, repo, product, changes)
	}); err != nil {
		return nil, wrapWriteError(err, "update product")
	}
	s.invalidateCache(ctx)
	return s.GetProduct(ctx, id)
}

func (s *service) ListStockRecords(ctx context.Context, productID uint64) ([]StockRecordDTO, error) {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	rows, err := s.repo.ListStockRecords(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records")
	}
	out := make([]StockRecordDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewStockRecordDTO(row))
	}
	return out, nil
}

func (s *service) GetStockRecord(ctx context.Context, productID, stockRecordID uint64) (*StockRecordDTO, error) {
	record, err := s.repo.FindStockRecord(ctx, stockRecordID)
	if err != nil {
		return nil, notFoundOr(err, "stock record not found", "load stock record")
	}
	if record.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
	}
	dto := NewStockRecordDTO(*record)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewCategoryDTO(row))
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id uint64) (*CategoryDTO, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category not found", "load category")
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	category := &models.ProductCategory{Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, wrapWriteError(err, "create category")
	}
	dto := NewCategoryDTO(*category)
	return &dto, nil
}

func (s *service) ListProductClasses(ctx context.Context) ([]ProductClassDTO, error) {
	rows, err := s.repo.ListProductClasses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product classes")
	}
	out := make([]ProductClassDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewProductClassDTO(row))
	}
	return out, nil
}

func (s *service) CreateProductClass(ctx context.Context, input CreateProductClassInput) (*ProductClassDTO, error) {
	class := &models.ProductClass{
		Name:       strings.TrimSpace(input.Name),
		Slug:       strings.TrimSpace(input.Slug),
		TrackStock: input.TrackStock,
	}
	if class.Name == "" {
		return nil, fieldError("name", "name is required")
	}
	if class.Slug == "" {
		return nil, fieldError("slug", "slug is required")
	}
	if err := s.repo.CreateProductClass(ctx, class); err != nil {
		return nil, wrapWriteError(err, "create product class")
	}
	dto := NewProductClassDTO(*class)
	return &dto, nil
}

func (s *service) CreateAttribute(ctx context.Context, classID uint64, input CreateAttributeInput) (*AttributeDTO, error) {
	if !attributeCodePattern.MatchString(input.Code) {
		return nil, fieldError("code", "code must start with a letter or underscore and contain only letters, digits and underscores")
	}
	if !input.Type.IsValid() {
		return nil, fieldError("type", fmt.Sprintf("invalid attribute type %q", input.Type))
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fieldError("name", "name is required")
	}
	if _, err := s.repo.FindProductClass(ctx, classID); err != nil {
		return nil, notFoundOr(err, "product class not found", "load product class")
	}
	attr := &models.ProductAttribute{
		ProductClassID: classID,
		Name:           strings.TrimSpace(input.Name),
		Code:           input.Code,
		Type:           input.Type,
		Required:       input.Required,
	}
	if err := s.repo.CreateAttribute(ctx, attr); err != nil {
		return nil, wrapWriteError(err, "create attribute")
	}
	dto := NewAttributeDTO(*attr)
	return &dto, nil
}

func (s *service) cacheEnabled() bool {
	return s.cache != nil && s.cfg.ListCacheTTL > 0
}

func (s *service) cacheKey() string {
	name := s.cfg.ListCacheKey
	if name == "" {
		name = "p_list_cache"
	}
	return s.cache.CacheKey(name)
}

func (s *service) readCache(ctx context.Context) (*pagination.Page[ProductSummaryDTO], bool) {
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product list cache read failed")
		}
		return nil, false
	}
	var page pagination.Page[ProductSummaryDTO]
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		s.logg.Warn(ctx, "product list cache entry is corrupt")
		return nil, false
	}
	return &page, true
}

func (s *service) writeCache(ctx context.Context, page *pagination.Page[ProductSummaryDTO]) {
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), payload, s.cfg.ListCacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product list cache write failed")
	}
}

func (s *service) invalidateCache(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product list cache invalidation failed")
	}
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func wrapWriteError(err error, op string) error {
	if translated := db.TranslateIntegrity(err); pkgerrors.As(translated) != nil {
		return translated
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
