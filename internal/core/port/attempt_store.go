package port

import (
	"context"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
)

// AttemptStore defines the persistence operations the limiter needs for
// per-key attempt records. Implementations hold no business logic; all
// mutation decisions belong to the limiter. A record that cannot be decoded
// must be reported as absent rather than returned as an error.
type AttemptStore interface {
	Get(ctx context.Context, key string) (domain.AttemptRecord, bool, error)
	Put(ctx context.Context, key string, record domain.AttemptRecord) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
