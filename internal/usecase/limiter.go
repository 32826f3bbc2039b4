package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// Default limiter constants. All of them are overridable through GatePolicy;
// nothing in the engine hard-codes them.
const (
	DefaultBaseDelay       = time.Second
	DefaultMaxDelay        = 30 * time.Second
	DefaultWindow          = 15 * time.Minute
	DefaultLockoutDuration = 15 * time.Minute
	DefaultMaxAttempts     = 5
)

// GatePolicy configures one mounted gate. The zero value of any field falls
// back to the package default, so callers only state what differs.
type GatePolicy struct {
	// Name scopes stored keys so distinct gates never share counters.
	Name string
	// MaxAttempts is the threshold above which a lockout window opens.
	MaxAttempts int
	// Window is the idle duration after which attempts reset without success.
	Window time.Duration
	// LockoutDuration is how long a triggered lockout remains active.
	LockoutDuration time.Duration
	// BaseDelay and MaxDelay bound the progressive delay curve.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// OnLimitReached is invoked exactly once per lockout transition.
	OnLimitReached func(key string)
}

func (p GatePolicy) withDefaults() GatePolicy {
	if p.Name == "" {
		p.Name = "default"
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	if p.LockoutDuration <= 0 {
		p.LockoutDuration = DefaultLockoutDuration
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	return p
}

// Decision is the outcome of a single gated attempt.
type Decision struct {
	Allowed bool
	// Attempts is the counter value after this attempt was recorded. For a
	// rejected attempt against an already-active lockout it is the stored
	// count, which the engine does not advance further.
	Attempts int
	// Delay is the progressive delay that was imposed before this attempt
	// was allowed through.
	Delay time.Duration
	// RetryAfter is how long the caller must wait out an active lockout.
	// Zero for allowed decisions.
	RetryAfter time.Duration
}

// Limiter decides whether gated attempts proceed, wait, or get rejected, and
// owns every mutation of the attempt store. Clock and sleep are injectable so
// tests run without wall-clock waits.
type Limiter struct {
	store  port.AttemptStore
	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewLimiter builds a limiter over the provided store. The store is required;
// a nil store is a programmer error surfaced at construction, not per request.
func NewLimiter(store port.AttemptStore, logger *zap.Logger) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("limiter: attempt store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Limiter{
		store:  store,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// WithClock injects a custom clock (primarily for testing).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now != nil {
		l.now = now
	}
	return l
}

// WithSleep injects a custom suspension function (primarily for testing).
func (l *Limiter) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Limiter {
	if sleep != nil {
		l.sleep = sleep
	}
	return l
}

// CheckAndRecord evaluates one attempt for the key under the policy. The
// returned decision is either allowed (after the progressive delay has
// already been served) or rejected with a retry-after for the lockout.
//
// The delay is computed from the record as read before suspending, and the
// increment is written back from that same snapshot after resuming. Two
// near-simultaneous calls for one key can therefore both observe N attempts
// and both store N+1, undercounting concurrent abuse. That is the documented
// behavior of this engine, not an oversight; closing the race would require
// an atomic compare-and-increment on the store.
func (l *Limiter) CheckAndRecord(ctx context.Context, key string, policy GatePolicy) (Decision, error) {
	policy = policy.withDefaults()
	storageKey := policy.Name + ":" + key
	now := l.now()

	record, _, err := l.store.Get(ctx, storageKey)
	if err != nil {
		return Decision{}, err
	}

	if record.Locked(now) {
		return Decision{
			Allowed:    false,
			Attempts:   record.Attempts,
			RetryAfter: record.LockoutUntil.Sub(now),
		}, nil
	}

	// An expired lockout or an idle window both collapse the counter back
	// to a fresh state before the attempt is tallied.
	if record.LockoutUntil != nil || record.IdleFor(now) > policy.Window {
		record.Attempts = 0
		record.LockoutUntil = nil
	}

	delay := progressiveDelay(record.Attempts, policy)
	if delay > 0 {
		if err := l.sleep(ctx, delay); err != nil {
			// The request went away while suspended; leave the record
			// exactly as it was rather than half-updated.
			return Decision{}, err
		}
	}

	record.Attempts++
	record.LastAttemptAt = now

	if record.Attempts > policy.MaxAttempts {
		until := now.Add(policy.LockoutDuration)
		record.LockoutUntil = &until

		if err := l.store.Put(ctx, storageKey, record); err != nil {
			return Decision{}, err
		}

		l.logger.Warn("lockout triggered",
			zap.String("gate", policy.Name),
			zap.String("key", key),
			zap.Int("attempts", record.Attempts),
			zap.Time("lockout_until", until),
		)

		if policy.OnLimitReached != nil {
			policy.OnLimitReached(key)
		}

		return Decision{
			Allowed:    false,
			Attempts:   record.Attempts,
			Delay:      delay,
			RetryAfter: until.Sub(now),
		}, nil
	}

	if err := l.store.Put(ctx, storageKey, record); err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:  true,
		Attempts: record.Attempts,
		Delay:    delay,
	}, nil
}

// MarkSuccessfulAttempt clears all recorded state for the key. Deleting
// rather than zeroing keeps "no record" and "attempts=0" indistinguishable.
func (l *Limiter) MarkSuccessfulAttempt(ctx context.Context, key string, policy GatePolicy) error {
	policy = policy.withDefaults()
	return l.store.Delete(ctx, policy.Name+":"+key)
}

// Status returns a read-only view of the key's state without recording an
// attempt. An absent record reads as fresh.
func (l *Limiter) Status(ctx context.Context, key string, policy GatePolicy) (domain.LimiterStatus, error) {
	policy = policy.withDefaults()
	now := l.now()

	record, ok, err := l.store.Get(ctx, policy.Name+":"+key)
	if err != nil {
		return domain.LimiterStatus{}, err
	}
	if !ok {
		return domain.LimiterStatus{}, nil
	}

	return domain.LimiterStatus{
		Attempts:     record.Attempts,
		Locked:       record.Locked(now),
		LockoutUntil: record.LockoutUntil,
		NextDelay:    progressiveDelay(record.Attempts, policy),
	}, nil
}

// progressiveDelay computes the exponential backoff imposed before the next
// attempt: free for the first two attempts, then baseDelay doubled per
// attempt and capped at maxDelay.
func progressiveDelay(attempts int, policy GatePolicy) time.Duration {
	if attempts < 2 {
		return 0
	}

	delay := policy.BaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= policy.MaxDelay {
			return policy.MaxDelay
		}
	}

	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
