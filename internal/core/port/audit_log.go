package port

import (
	"context"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
)

// AuditLog persists security events for later inspection.
type AuditLog interface {
	RecordSecurityEvent(ctx context.Context, event domain.SecurityEvent) error
	ListRecentByKey(ctx context.Context, key string, limit int) ([]domain.SecurityEvent, error)
}
