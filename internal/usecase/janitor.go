package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// Default janitor cadence and retention horizon.
const (
	DefaultJanitorInterval  = time.Hour
	DefaultRetentionHorizon = 24 * time.Hour
)

// Janitor bounds attempt-store growth by periodically evicting records that
// have been idle past the retention horizon. Records with an active lockout
// are never evicted early: eviction would silently lift the lockout.
type Janitor struct {
	store     port.AttemptStore
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewJanitor builds a janitor over the store. Zero interval or retention
// fall back to the package defaults.
func NewJanitor(store port.AttemptStore, interval, retention time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	if retention <= 0 {
		retention = DefaultRetentionHorizon
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Janitor{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// WithClock injects a custom clock (primarily for testing).
func (j *Janitor) WithClock(now func() time.Time) *Janitor {
	if now != nil {
		j.now = now
	}
	return j
}

// Start launches the background sweep loop.
func (j *Janitor) Start() {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				evicted, err := j.Sweep(context.Background())
				if err != nil {
					j.logger.Warn("janitor sweep failed", zap.Error(err))
					continue
				}
				if evicted > 0 {
					j.logger.Info("janitor sweep completed", zap.Int("evicted", evicted))
				}
			case <-j.done:
				return
			}
		}
	}()
}

// Sweep scans all records once and evicts the stale ones. It returns how
// many records were removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	keys, err := j.store.Keys(ctx)
	if err != nil {
		return 0, err
	}

	now := j.now()
	evicted := 0

	for _, key := range keys {
		record, ok, err := j.store.Get(ctx, key)
		if err != nil {
			j.logger.Warn("janitor read failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if !record.Evictable(now, j.retention) {
			continue
		}
		if err := j.store.Delete(ctx, key); err != nil {
			j.logger.Warn("janitor eviction failed", zap.String("key", key), zap.Error(err))
			continue
		}
		evicted++
	}

	return evicted, nil
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish. It is
// idempotent and safe to call during shutdown even if Start never ran.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
	})
	j.wg.Wait()
}
