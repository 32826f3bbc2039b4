package port

import (
	"context"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
)

// AuditPublisher publishes security events to the message bus.
type AuditPublisher interface {
	PublishSecurityEvent(ctx context.Context, event domain.SecurityEvent) error
}
