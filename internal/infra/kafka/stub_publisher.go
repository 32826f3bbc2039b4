package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly audit publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishSecurityEvent logs the event at info level.
func (p *StubPublisher) PublishSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	p.logger.Info("Stub security event published",
		zap.String("event_id", event.EventID),
		zap.String("kind", event.Kind),
		zap.String("key", event.Key),
		zap.String("path", event.Path),
		zap.Time("timestamp", ts.UTC()),
	)

	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
