package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
	"github.com/homeshopping/homeshopping-backend/pkg/pagination"
)

func createOrder(t *testing.T, conn *gorm.DB, userID *uuid.UUID, number int) *models.Order {
	t.Helper()
	repo := NewRepository(conn)
	order := &models.Order{
		Number: fmt.Sprintf("%d", number),
		Total:  decimal.RequireFromString("12.50"),
		UserID: userID,
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	pid := uint64(1)
	line := &models.OrderLine{OrderID: order.ID, ProductID: &pid, Quantity: 2}
	require.NoError(t, repo.CreateLine(context.Background(), line))
	require.NoError(t, repo.CreateLineAttributes(context.Background(), []models.OrderLineAttribute{
		{LineID: line.ID, Type: "size", Value: "L"},
	}))
	return order
}

func TestListForUserPaginates(t *testing.T) {
	t.Parallel()
	conn := dbtest.Open(t)
	user := dbtest.CreateUser(t, conn)
	other := dbtest.CreateUser(t, conn)
	for i := 0; i < 3; i++ {
		createOrder(t, conn, &user.ID, 100001+i)
	}
	createOrder(t, conn, &other.ID, 200001)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.ListForUser(ctx, user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.Equal(t, "100003", first.Items[0].Number)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, user.Email, first.Items[0].Email)
	require.Equal(t, "12.50", first.Items[0].Total)
	require.Equal(t, []LineAttributeDTO{{Type: "size", Value: "L"}}, first.Items[0].Lines[0].Attributes)

	second, err := svc.ListForUser(ctx, user.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, "100001", second.Items[0].Number)
	require.Empty(t, second.NextCursor)

	_, err = svc.ListForUser(ctx, uuid.Nil, pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestGetForUser(t *testing.T) {
	t.Parallel()
	conn := dbtest.Open(t)
	user := dbtest.CreateUser(t, conn)
	stranger := dbtest.CreateUser(t, conn)
	order := createOrder(t, conn, &user.ID, 100001)
	guestOrder := createOrder(t, conn, nil, 100002)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	got, err := svc.GetForUser(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Number, got.Number)
	require.Len(t, got.Lines, 1)

	_, err = svc.GetForUser(ctx, stranger.ID, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.GetForUser(ctx, user.ID, guestOrder.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.GetForUser(ctx, user.ID, order.ID+100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNumberExists(t *testing.T) {
	t.Parallel()
	conn := dbtest.Open(t)
	createOrder(t, conn, nil, 100009)
	repo := NewRepository(conn)

	exists, err := repo.NumberExists(context.Background(), "100009")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.NumberExists(context.Background(), "100010")
	require.NoError(t, err)
	require.False(t, exists)
}
