package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/telecom-backoffice/internal/config"
	"github.com/spec-kit/telecom-backoffice/internal/persistence"
	"github.com/spec-kit/telecom-backoffice/internal/service"
)

// ExpiryLockKey is the Redis key that serializes sweeps across replicas.
const ExpiryLockKey = "locks:campaign-expiry"

// Expirer moves stale campaign applications to expired.
type Expirer interface {
	ExpireOldCampaigns(ctx context.Context) (*service.ExpireResult, error)
}

// ExpiryWorker periodically runs the campaign expiry sweep.
type ExpiryWorker struct {
	campaigns Expirer
	redis     *persistence.Redis
	interval  time.Duration
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewExpiryWorker builds the worker. A nil or disabled redis runs every sweep locally.
func NewExpiryWorker(campaigns Expirer, redis *persistence.Redis, cfg config.CampaignConfig, logger *zap.Logger) *ExpiryWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryWorker{
		campaigns: campaigns,
		redis:     redis,
		interval:  cfg.ExpiryInterval(),
		lockTTL:   cfg.ExpiryLockTTL(),
		logger:    logger,
	}
}

// Run sweeps once per interval until ctx is cancelled. A zero interval returns immediately.
func (w *ExpiryWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("campaign expiry worker disabled")
		return
	}
	w.logger.Info("campaign expiry worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("campaign expiry worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("campaign expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep runs one expiry pass. It returns (0, nil) when another replica holds the lock.
func (w *ExpiryWorker) Sweep(ctx context.Context) (int64, error) {
	if w.redis.Enabled() {
		lock, err := w.redis.AcquireLock(ctx, ExpiryLockKey, w.lockTTL)
		switch {
		case errors.Is(err, persistence.ErrLockHeld):
			w.logger.Debug("campaign expiry sweep skipped; lock held elsewhere")
			return 0, nil
		case err != nil:
			w.logger.Warn("campaign expiry lock unavailable; sweeping locally", zap.Error(err))
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					w.logger.Warn("campaign expiry lock release failed", zap.Error(err))
				}
			}()
		}
	}

	result, err := w.campaigns.ExpireOldCampaigns(ctx)
	if err != nil {
		return 0, err
	}
	return result.ExpiredUserCampaigns, nil
}
