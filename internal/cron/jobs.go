package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

type listCacheWarmer interface {
	WarmListCache(ctx context.Context) error
}

// CatalogCacheWarmJob rebuilds the cached first page of the product list
// ahead of its TTL.
type CatalogCacheWarmJob struct {
	catalog listCacheWarmer
}

func NewCatalogCacheWarmJob(catalog listCacheWarmer) (*CatalogCacheWarmJob, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &CatalogCacheWarmJob{catalog: catalog}, nil
}

func (j *CatalogCacheWarmJob) Name() string { return "catalog-cache-warm" }

func (j *CatalogCacheWarmJob) Run(ctx context.Context) error {
	return j.catalog.WarmListCache(ctx)
}

type publishedEventPurger interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type OutboxRetentionJobParams struct {
	Outbox        publishedEventPurger
	RetentionDays int
	Logger        *logger.Logger
}

// OutboxRetentionJob deletes outbox rows published longer ago than the
// retention window. Unpublished rows are never touched.
type OutboxRetentionJob struct {
	outbox    publishedEventPurger
	retention time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

func NewOutboxRetentionJob(params OutboxRetentionJobParams) (*OutboxRetentionJob, error) {
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &OutboxRetentionJob{
		outbox:    params.Outbox,
		retention: time.Duration(params.RetentionDays) * 24 * time.Hour,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (j *OutboxRetentionJob) Name() string { return "outbox-retention" }

func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.outbox.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge published outbox rows: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "outbox retention complete")
	return nil
}
