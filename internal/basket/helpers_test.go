package basket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	product "github.com/homeshopping/homeshopping-backend/internal/products"
	"github.com/homeshopping/homeshopping-backend/pkg/auth"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
)

type fixture struct {
	conn      *gorm.DB
	repo      *Repository
	validator *LineValidator
	svc       Service
	resolver  *IdentityResolver
	codec     *auth.BasketTokenCodec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	validator := NewLineValidator(repo, product.NewRepository(conn), product.NewStockLedger(conn))
	svc, err := NewService(repo, db.Wrap(conn), validator, nil)
	require.NoError(t, err)
	codec, err := auth.NewBasketTokenCodec("basket-secret", "homeshop", time.Hour)
	require.NoError(t, err)
	resolver, err := NewIdentityResolver(repo, db.Wrap(conn), codec, nil)
	require.NoError(t, err)

	return &fixture{conn: conn, repo: repo, validator: validator, svc: svc, resolver: resolver, codec: codec}
}

// offer creates a product with one stock record.
func (f *fixture) offer(t *testing.T, price string, stock int) (*models.Product, *models.StockRecord) {
	t.Helper()
	p := dbtest.CreateProduct(t, f.conn, "Widget")
	return p, dbtest.CreateStockRecord(t, f.conn, p.ID, price, stock)
}

func (f *fixture) lines(t *testing.T, basketID uint64) []models.BasketLine {
	t.Helper()
	lines, err := f.repo.Lines(context.Background(), basketID)
	require.NoError(t, err)
	return lines
}
