package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

const auditDeliveryTimeout = 5 * time.Second

// AuditRecorder fans security events out to the message bus and, when
// configured, the persistent audit log. Delivery is fire-and-forget: the
// caller returns immediately and failures are only logged, so a broken
// collaborator can never change a gate's response.
type AuditRecorder struct {
	publisher port.AuditPublisher
	log       port.AuditLog
	logger    *zap.Logger
	now       func() time.Time
	// dispatch is swapped out in tests to run deliveries synchronously.
	dispatch func(func())
}

// NewAuditRecorder builds a recorder. Either collaborator may be nil.
func NewAuditRecorder(publisher port.AuditPublisher, log port.AuditLog, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuditRecorder{
		publisher: publisher,
		log:       log,
		logger:    logger,
		now:       time.Now,
		dispatch:  func(fn func()) { go fn() },
	}
}

// WithSynchronousDispatch makes Record deliver inline (primarily for testing).
func (r *AuditRecorder) WithSynchronousDispatch() *AuditRecorder {
	r.dispatch = func(fn func()) { fn() }
	return r
}

// Record emits one security event. Missing identifiers and timestamps are
// filled in before delivery.
func (r *AuditRecorder) Record(event domain.SecurityEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}

	r.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditDeliveryTimeout)
		defer cancel()

		if r.publisher != nil {
			if err := r.publisher.PublishSecurityEvent(ctx, event); err != nil {
				r.logger.Warn("audit publish failed",
					zap.String("event_id", event.EventID),
					zap.String("kind", event.Kind),
					zap.Error(err),
				)
			}
		}

		if r.log != nil {
			if err := r.log.RecordSecurityEvent(ctx, event); err != nil {
				r.logger.Warn("audit persistence failed",
					zap.String("event_id", event.EventID),
					zap.String("kind", event.Kind),
					zap.Error(err),
				)
			}
		}
	})
}
