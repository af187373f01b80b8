package negotiation

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/model"
	"github.com/dwoura/privchain-wallet/internal/txparams"
	"github.com/dwoura/privchain-wallet/internal/txparams/lock"
	"github.com/dwoura/privchain-wallet/pkg/logger"
	"go.uber.org/zap"
)

// Ticker re-enters Update on every non-terminal transaction on a fixed
// schedule, standing in for the two external events the driver otherwise
// waits on: a new chain tip (kernel confirmation, expiry) and a peer
// message that never arrived. A replica that's actually making progress on
// a txId just finds the distributed lock held and skips it.
type Ticker struct {
	cron   *cron.Cron
	db     *gorm.DB
	driver *Driver
	lock   lock.DistributedLock
}

func NewTicker(db *gorm.DB, driver *Driver, l lock.DistributedLock) *Ticker {
	return &Ticker{cron: cron.New(), db: db, driver: driver, lock: l}
}

func (t *Ticker) Start() {
	_, _ = t.cron.AddFunc("@every 10s", t.sweep)
	t.cron.Start()
	logger.Info("negotiation ticker started")
}

func (t *Ticker) Stop() {
	t.cron.Stop()
	logger.Info("negotiation ticker stopped")
}

func (t *Ticker) sweep() {
	ctx := context.Background()
	const lockKey = "negotiation-ticker-sweep"

	acquired, err := t.lock.Acquire(ctx, lockKey, 8*time.Second)
	if err != nil || !acquired {
		return
	}
	defer t.lock.Release(ctx, lockKey)

	var records []model.TxRecord
	if err := t.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(StatusPending), string(StatusInProgress), string(StatusRegistering),
		}).
		Find(&records).Error; err != nil {
		logger.Error("ticker: failed to list active transactions", zap.Error(err))
		return
	}

	for _, rec := range records {
		txID := txparams.TxID(rec.TxID)
		outcome, err := t.driver.Update(ctx, txID)
		if err != nil {
			logger.Error("ticker: update failed", zap.String("tx_id", rec.TxID), zap.Error(err))
			continue
		}
		if outcome.IsDone() {
			logger.Info("ticker: transaction settled",
				zap.String("tx_id", rec.TxID), zap.String("status", string(outcome.Status())))
		}
	}
}
