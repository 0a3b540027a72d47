package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox/payloads"
)

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "1",
			Data:          payloads.OrderPlacedEvent{OrderID: 1, Number: "100001", Total: "30.00"},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublished(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.NoError(t, err)
	resolved, err := reg.Resolve(rows[0])
	require.NoError(t, err)
	require.Equal(t, "orders", resolved.Descriptor.Topic)
	placed, ok := resolved.Payload.(*payloads.OrderPlacedEvent)
	require.True(t, ok)
	require.Equal(t, "100001", placed.Number)
	require.Equal(t, "30.00", placed.Total)
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	boom := errors.New("boom")

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventBasketFrozen,
			AggregateType: enums.AggregateBasket,
			AggregateID:   "9",
			Data:          payloads.BasketFrozenEvent{BasketID: 9},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := repo.FetchUnpublished(conn, 10, 0)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestEmitRejectsUnknownTypes(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	err := svc.Emit(context.Background(), conn, DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder})
	require.Error(t, err)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
}

func TestRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	first := models.OutboxEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, AggregateID: "1", Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, AggregateID: "2", Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(conn, &first))
	require.NoError(t, repo.Insert(conn, &second))

	require.NoError(t, repo.MarkFailed(conn, first.ID, errors.New("unavailable")))
	require.NoError(t, repo.MarkTerminal(conn, second.ID, errors.New("bad payload"), 3))

	rows, err := repo.FetchUnpublished(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, first.ID, rows[0].ID)
	require.Equal(t, 1, rows[0].AttemptCount)
	require.NotNil(t, rows[0].LastError)

	require.NoError(t, repo.MarkPublished(conn, first.ID))
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("id = ?", first.ID).
		Update("published_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	deleted, err := repo.DeletePublishedBefore(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func TestResolveRejectsMalformedRows(t *testing.T) {
	t.Parallel()

	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	require.NoError(t, err)

	cases := map[string]models.OutboxEvent{
		"unknown type":    {EventType: "mystery", AggregateType: enums.AggregateOrder, Payload: json.RawMessage(`{}`)},
		"wrong aggregate": {EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateBasket, Payload: json.RawMessage(`{"version":1,"data":{}}`)},
		"bad envelope":    {EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, Payload: json.RawMessage(`nope`)},
		"unknown version": {EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, Payload: json.RawMessage(`{"version":7,"data":{}}`)},
	}
	for name, row := range cases {
		row := row
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := reg.Resolve(row)
			require.Error(t, err)
			require.True(t, IsNonRetryable(err))
		})
	}

	_, err = NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}
