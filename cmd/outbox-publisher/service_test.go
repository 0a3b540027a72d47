package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox/payloads"
)

const testMaxAttempts = 3

type stubPubSub struct{}

func (stubPubSub) Ping(context.Context) error            { return nil }
func (stubPubSub) Publisher(string) *gcppubsub.Publisher { return nil }

type fakePublishResult struct {
	err error
}

func (r fakePublishResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

// fakePublisher fails messages whose aggregate id is listed in failures.
type fakePublisher struct {
	failures map[string]error
	sent     []*gcppubsub.Message
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.sent = append(p.sent, msg)
	return fakePublishResult{err: p.failures[msg.Attributes["aggregate_id"]]}
}

type harness struct {
	conn    *gorm.DB
	repo    *outbox.Repository
	emitter *outbox.Service
	pub     *fakePublisher
	service *Service
}

func newHarness(t *testing.T, factory publisherFactory) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn)
	registry, err := outbox.NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	pub := &fakePublisher{failures: map[string]error{}}
	if factory == nil {
		factory = func(string) publisher { return pub }
	}
	service, err := NewService(ServiceParams{
		Config:           config.OutboxConfig{BatchSize: 10, MaxAttempts: testMaxAttempts},
		Logger:           logger.Nop(),
		DB:               db.Wrap(conn),
		PubSub:           stubPubSub{},
		Repository:       repo,
		Registry:         registry,
		PublisherFactory: factory,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &harness{conn: conn, repo: repo, emitter: outbox.NewService(repo, nil), pub: pub, service: service}
}

func (h *harness) emitOrderPlaced(t *testing.T, orderID uint64) string {
	t.Helper()
	aggregateID := uuid.NewString()
	err := h.emitter.Emit(context.Background(), h.conn, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Data:          payloads.OrderPlacedEvent{OrderID: orderID, Number: "100001", Total: "40.00"},
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	return aggregateID
}

func (h *harness) row(t *testing.T, aggregateID string) models.OutboxEvent {
	t.Helper()
	var row models.OutboxEvent
	if err := h.conn.Where("aggregate_id = ?", aggregateID).First(&row).Error; err != nil {
		t.Fatalf("load row %s: %v", aggregateID, err)
	}
	return row
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	h := newHarness(t, nil)
	failing := h.emitOrderPlaced(t, 1)
	healthy := h.emitOrderPlaced(t, 2)
	h.pub.failures[failing] = errors.New("transient")

	processed, err := h.service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if len(h.pub.sent) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(h.pub.sent))
	}

	failed := h.row(t, failing)
	if failed.PublishedAt != nil || failed.AttemptCount != 1 || failed.LastError == nil {
		t.Fatalf("unexpected failed row %+v", failed)
	}
	published := h.row(t, healthy)
	if published.PublishedAt == nil || published.LastError != nil {
		t.Fatalf("unexpected published row %+v", published)
	}
}

func TestProcessBatchSetsMessageAttributes(t *testing.T) {
	h := newHarness(t, nil)
	aggregateID := h.emitOrderPlaced(t, 7)

	if _, err := h.service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.pub.sent) != 1 {
		t.Fatalf("expected one publish, got %d", len(h.pub.sent))
	}
	attrs := h.pub.sent[0].Attributes
	if attrs["event_type"] != string(enums.EventOrderPlaced) || attrs["aggregate_id"] != aggregateID {
		t.Fatalf("unexpected attributes %v", attrs)
	}
	if attrs["event_id"] == "" {
		t.Fatal("event id attribute missing")
	}
	env, err := outbox.DecodeEnvelope(h.pub.sent[0].Data)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.EventID != attrs["event_id"] {
		t.Fatalf("envelope id %q does not match attribute %q", env.EventID, attrs["event_id"])
	}
}

func TestProcessBatchTerminatesAtMaxAttempts(t *testing.T) {
	h := newHarness(t, nil)
	aggregateID := h.emitOrderPlaced(t, 1)
	h.pub.failures[aggregateID] = errors.New("still down")
	if err := h.conn.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", aggregateID).
		Update("attempt_count", testMaxAttempts-1).Error; err != nil {
		t.Fatalf("seed attempts: %v", err)
	}

	if _, err := h.service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	row := h.row(t, aggregateID)
	if row.AttemptCount != testMaxAttempts || row.PublishedAt != nil {
		t.Fatalf("expected terminal row, got %+v", row)
	}

	processed, err := h.service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if processed {
		t.Fatal("terminal rows must not be fetched again")
	}
}

func TestProcessBatchTerminatesUnresolvableRows(t *testing.T) {
	h := newHarness(t, nil)
	aggregateID := uuid.NewString()
	bad := &models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateBasket,
		AggregateID:   aggregateID,
		Payload:       []byte(`{"version":1,"eventId":"x","data":{}}`),
	}
	if err := h.repo.Insert(h.conn, bad); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := h.service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(h.pub.sent) != 0 {
		t.Fatalf("unresolvable rows must not be published")
	}
	row := h.row(t, aggregateID)
	if row.AttemptCount != testMaxAttempts || row.LastError == nil {
		t.Fatalf("expected terminal row, got %+v", row)
	}
}

func TestProcessBatchWithoutPublisherIsTerminal(t *testing.T) {
	h := newHarness(t, func(string) publisher { return nil })
	aggregateID := h.emitOrderPlaced(t, 1)

	if _, err := h.service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if row := h.row(t, aggregateID); row.AttemptCount != testMaxAttempts {
		t.Fatalf("expected terminal row, got %+v", row)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	h := newHarness(t, nil)
	processed, err := h.service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("empty outbox must not report processed")
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestNextBackoff(t *testing.T) {
	base := 500 * time.Millisecond
	if got := nextBackoff(0, base, maxBackoff); got != time.Second {
		t.Fatalf("expected 1s, got %s", got)
	}
	if got := nextBackoff(8*time.Second, base, maxBackoff); got != maxBackoff {
		t.Fatalf("expected cap %s, got %s", maxBackoff, got)
	}
}
