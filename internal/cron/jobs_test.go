package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/homeshopping/homeshopping-backend/pkg/db/dbtest"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox"
)

type fakeWarmer struct {
	calls int
	err   error
}

func (f *fakeWarmer) WarmListCache(context.Context) error {
	f.calls++
	return f.err
}

func TestCatalogCacheWarmJob(t *testing.T) {
	warmer := &fakeWarmer{}
	job, err := NewCatalogCacheWarmJob(warmer)
	if err != nil {
		t.Fatalf("NewCatalogCacheWarmJob: %v", err)
	}
	if job.Name() != "catalog-cache-warm" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	warmer.err = errors.New("redis down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected warm error to surface")
	}
	if warmer.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", warmer.calls)
	}
}

func TestOutboxRetentionJobPurgesOnlyOldPublishedRows(t *testing.T) {
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	insert := func(publishedAt *time.Time) models.OutboxEvent {
		row := models.OutboxEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "100001",
			Payload:       json.RawMessage(`{}`),
			PublishedAt:   publishedAt,
		}
		if err := repo.Insert(conn, &row); err != nil {
			t.Fatalf("insert: %v", err)
		}
		return row
	}
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)
	insert(&old)
	insert(&recent)
	insert(nil)

	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Outbox: repo, RetentionDays: 30})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var remaining int64
	if err := conn.Model(&models.OutboxEvent{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("expected 2 rows left, got %d", remaining)
	}
}

func TestNewOutboxRetentionJobValidates(t *testing.T) {
	if _, err := NewOutboxRetentionJob(OutboxRetentionJobParams{RetentionDays: 30}); err == nil {
		t.Fatal("expected missing repository error")
	}
	if _, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Outbox: outbox.NewRepository(nil)}); err == nil {
		t.Fatal("expected retention error")
	}
}
