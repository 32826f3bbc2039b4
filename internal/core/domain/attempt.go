package domain

import "time"

// AttemptRecord tracks failed attempts for one gate-scoped key.
type AttemptRecord struct {
	Attempts      int        `json:"attempts"`
	LastAttemptAt time.Time  `json:"last_attempt_at"`
	LockoutUntil  *time.Time `json:"lockout_until,omitempty"`
}

// Locked reports whether a lockout is active at the given instant.
func (r AttemptRecord) Locked(now time.Time) bool {
	return r.LockoutUntil != nil && now.Before(*r.LockoutUntil)
}

// IdleFor returns how long the record has gone without a recorded attempt.
func (r AttemptRecord) IdleFor(now time.Time) time.Duration {
	return now.Sub(r.LastAttemptAt)
}

// Evictable reports whether the record may be garbage collected. A record
// under an active lockout is never evictable regardless of age; evicting it
// would silently lift the lockout.
func (r AttemptRecord) Evictable(now time.Time, retention time.Duration) bool {
	if r.Locked(now) {
		return false
	}
	return r.IdleFor(now) > retention
}

// LimiterStatus is a read-only snapshot of a key's gate state.
type LimiterStatus struct {
	Attempts     int           `json:"attempts"`
	Locked       bool          `json:"locked"`
	LockoutUntil *time.Time    `json:"lockout_until,omitempty"`
	NextDelay    time.Duration `json:"next_delay"`
}
