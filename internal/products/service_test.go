package product

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
	"github.com/homeshopping/homeshopping-backend/pkg/pagination"
)

type memoryCache struct {
	data map[string]string
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.sets++
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) CacheKey(name string) string {
	return "test:cache:" + name
}

func newTestService(t *testing.T, cache listCache) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), db.Wrap(conn), cache, config.CatalogConfig{
		ListCacheKey: "p_list_cache",
		ListCacheTTL: 130 * time.Second,
	}, nil)
	require.NoError(t, err)
	return svc, conn
}

func strPtr(v string) *string { return &v }
func u64Ptr(v uint64) *uint64 { return &v }
func intPtr(v int) *int       { return &v }

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil, nil, nil, config.CatalogConfig{}, nil)
	require.Error(t, err)
}

func TestListProductsUsesCache(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	svc, conn := newTestService(t, cache)
	ctx := context.Background()

	p := dbtest.CreateProduct(t, conn, "Kettle")
	dbtest.CreateStockRecord(t, conn, p.ID, "12.50", 3)
	dbtest.CreateStockRecord(t, conn, p.ID, "9.99", 0)

	page, err := svc.ListProducts(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "9.99", *page.Items[0].Price)
	require.True(t, page.Items[0].IsAvailable)
	require.Equal(t, 1, cache.sets)

	// a row added behind the cache's back stays invisible until invalidation
	dbtest.CreateProduct(t, conn, "Toaster")
	page, err = svc.ListProducts(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = svc.CreateProduct(ctx, ProductChanges{Core: &CoreFields{Title: strPtr("Mixer")}})
	require.NoError(t, err)
	page, err = svc.ListProducts(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
}

func TestListProductsPaginates(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		dbtest.CreateProduct(t, conn, fmt.Sprintf("Product %d", i))
	}

	page, err := svc.ListProducts(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.ListProducts(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 2)
	require.Less(t, next.Items[0].ID, page.Items[1].ID)

	_, err = svc.ListProducts(ctx, pagination.Params{Cursor: "!!"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestWarmListCache(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	svc, conn := newTestService(t, cache)
	dbtest.CreateProduct(t, conn, "Kettle")

	require.NoError(t, svc.WarmListCache(context.Background()))
	raw, ok := cache.data["test:cache:p_list_cache"]
	require.True(t, ok)
	var page pagination.Page[ProductSummaryDTO]
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.Items, 1)
}

func seedClass(t *testing.T, svc Service) *ProductClassDTO {
	t.Helper()
	ctx := context.Background()
	class, err := svc.CreateProductClass(ctx, CreateProductClassInput{Name: "Books", Slug: "books", TrackStock: true})
	require.NoError(t, err)
	_, err = svc.CreateAttribute(ctx, class.ID, CreateAttributeInput{Name: "Pages", Code: "pages", Type: enums.AttributeTypeInteger, Required: true})
	require.NoError(t, err)
	_, err = svc.CreateAttribute(ctx, class.ID, CreateAttributeInput{Name: "Author", Code: "author", Type: enums.AttributeTypeText})
	require.NoError(t, err)
	return class
}

func TestCreateProductAppliesAllChanges(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	class := seedClass(t, svc)
	category, err := svc.CreateCategory(ctx, "Fiction")
	require.NoError(t, err)

	price := decimal.RequireFromString("19.999")
	dto, err := svc.CreateProduct(ctx, ProductChanges{
		Core: &CoreFields{
			Title:          strPtr("  Dune "),
			ProductClassID: u64Ptr(class.ID),
			CategoryID:     u64Ptr(category.ID),
		},
		Attributes: []AttributeChange{
			{Code: "pages", Raw: json.RawMessage(`412`)},
			{Code: "author", Value: TextValue("Herbert")},
		},
		StockRecords: []StockRecordChange{
			{PartnerSKU: strPtr("DUNE-1"), Price: &price, NumInStock: intPtr(4)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Dune", dto.Title)
	require.Equal(t, "standalone", dto.Structure)
	require.Equal(t, "Fiction", dto.Category.Name)
	require.Len(t, dto.Attributes, 2)
	require.Len(t, dto.StockRecords, 1)
	require.Equal(t, "20.00", dto.StockRecords[0].Price)

	records, err := svc.ListStockRecords(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	record, err := svc.GetStockRecord(ctx, dto.ID, records[0].ID)
	require.NoError(t, err)
	require.Equal(t, 4, record.NumInStock)
}

func TestCreateProductFailuresRollBack(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	class := seedClass(t, svc)

	cases := map[string]ProductChanges{
		"missing title": {Core: &CoreFields{}},
		"missing required attribute": {
			Core: &CoreFields{Title: strPtr("Dune"), ProductClassID: u64Ptr(class.ID)},
		},
		"variant does not match type": {
			Core:       &CoreFields{Title: strPtr("Dune"), ProductClassID: u64Ptr(class.ID)},
			Attributes: []AttributeChange{{Code: "pages", Value: TextValue("many")}},
		},
		"unknown attribute": {
			Core:       &CoreFields{Title: strPtr("Dune"), ProductClassID: u64Ptr(class.ID)},
			Attributes: []AttributeChange{{Code: "isbn", Value: TextValue("x")}},
		},
		"stock record without price": {
			Core:         &CoreFields{Title: strPtr("Dune")},
			StockRecords: []StockRecordChange{{PartnerSKU: strPtr("X")}},
		},
		"child without parent": {
			Core: &CoreFields{Title: strPtr("Dune"), Structure: func() *enums.ProductStructure { s := enums.ProductStructureChild; return &s }()},
		},
	}
	for name, changes := range cases {
		_, err := svc.CreateProduct(ctx, changes)
		require.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: %v", name, err)
	}

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdateProductStockRecords(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, conn, "Kettle")
	record := dbtest.CreateStockRecord(t, conn, p.ID, "10.00", 1)
	other := dbtest.CreateProduct(t, conn, "Toaster")
	foreign := dbtest.CreateStockRecord(t, conn, other.ID, "5.00", 1)

	dto, err := svc.UpdateProduct(ctx, p.ID, ProductChanges{
		StockRecords: []StockRecordChange{{ID: u64Ptr(record.ID), NumInStock: intPtr(9)}},
	})
	require.NoError(t, err)
	require.Equal(t, "Kettle", dto.Title)
	require.Equal(t, 9, dto.StockRecords[0].NumInStock)

	_, err = svc.UpdateProduct(ctx, p.ID, ProductChanges{
		StockRecords: []StockRecordChange{{ID: u64Ptr(foreign.ID), NumInStock: intPtr(0)}},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, 1, dbtest.StockOf(t, conn, foreign.ID))

	_, err = svc.UpdateProduct(ctx, 9999, ProductChanges{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateAttributeValidatesCode(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	class, err := svc.CreateProductClass(ctx, CreateProductClassInput{Name: "Tools", Slug: "tools"})
	require.NoError(t, err)

	for _, code := range []string{"1abc", "has space", "dash-ed", ""} {
		_, err := svc.CreateAttribute(ctx, class.ID, CreateAttributeInput{Name: "X", Code: code, Type: enums.AttributeTypeText})
		require.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "code %q", code)
	}
	_, err = svc.CreateAttribute(ctx, class.ID, CreateAttributeInput{Name: "X", Code: "_ok9", Type: enums.AttributeTypeText})
	require.NoError(t, err)

	_, err = svc.CreateAttribute(ctx, class.ID, CreateAttributeInput{Name: "X", Code: "_ok9", Type: enums.AttributeTypeText})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity))

	classes, err := svc.ListProductClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Len(t, classes[0].Attributes, 1)
}

func TestCategoriesReadPaths(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	created, err := svc.CreateCategory(ctx, "Kitchen")
	require.NoError(t, err)

	got, err := svc.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Kitchen", got.Name)

	_, err = svc.GetCategory(ctx, created.ID+1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = svc.CreateCategory(ctx, "  ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
