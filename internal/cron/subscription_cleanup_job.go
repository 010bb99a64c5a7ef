package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shopzen/shopzen-backend/pkg/logger"
)

const subscriptionRetentionDays = 90

// SubscriptionCleanupJobParams configure the stale-subscription sweep.
type SubscriptionCleanupJobParams struct {
	Logger     *logger.Logger
	Repository subscriptionCleanupRepo
	Retention  int
}

type subscriptionCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewSubscriptionCleanupJob removes stock subscriptions whose product never
// restocked within the retention window.
func NewSubscriptionCleanupJob(params SubscriptionCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = subscriptionRetentionDays
	}
	return &subscriptionCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type subscriptionCleanupJob struct {
	logg      *logger.Logger
	repo      subscriptionCleanupRepo
	retention int
	now       func() time.Time
}

func (j *subscriptionCleanupJob) Name() string { return "stock-subscription-cleanup" }

func (j *subscriptionCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("stock subscription cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "stock subscription cleanup complete")
	return nil
}
