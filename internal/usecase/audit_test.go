package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
)

type capturingPublisher struct {
	events []domain.SecurityEvent
	err    error
}

func (p *capturingPublisher) PublishSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type capturingAuditLog struct {
	events []domain.SecurityEvent
	err    error
}

func (l *capturingAuditLog) RecordSecurityEvent(_ context.Context, event domain.SecurityEvent) error {
	l.events = append(l.events, event)
	return l.err
}

func (l *capturingAuditLog) ListRecentByKey(context.Context, string, int) ([]domain.SecurityEvent, error) {
	return nil, nil
}

func TestRecordFillsIdentifiers(t *testing.T) {
	publisher := &capturingPublisher{}
	auditLog := &capturingAuditLog{}

	recorder := NewAuditRecorder(publisher, auditLog, zaptest.NewLogger(t)).WithSynchronousDispatch()

	recorder.Record(domain.SecurityEvent{
		Key:  "198.51.100.7",
		Kind: domain.SecurityEventLockout,
	})

	if len(publisher.events) != 1 || len(auditLog.events) != 1 {
		t.Fatalf("expected one delivery to each collaborator, got %d and %d", len(publisher.events), len(auditLog.events))
	}

	event := publisher.events[0]
	if event.EventID == "" {
		t.Fatal("expected event id to be filled")
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be filled")
	}
	if event.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", event.Timestamp.Location())
	}
}

func TestRecordKeepsProvidedIdentifiers(t *testing.T) {
	publisher := &capturingPublisher{}
	recorder := NewAuditRecorder(publisher, nil, zaptest.NewLogger(t)).WithSynchronousDispatch()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder.Record(domain.SecurityEvent{
		EventID:   "evt-1",
		Key:       "key",
		Kind:      domain.SecurityEventCSRFRejected,
		Timestamp: ts,
	})

	if publisher.events[0].EventID != "evt-1" {
		t.Fatalf("expected event id preserved, got %q", publisher.events[0].EventID)
	}
	if !publisher.events[0].Timestamp.Equal(ts) {
		t.Fatalf("expected timestamp preserved, got %v", publisher.events[0].Timestamp)
	}
}

func TestRecordToleratesCollaboratorFailures(t *testing.T) {
	publisher := &capturingPublisher{err: errors.New("broker down")}
	auditLog := &capturingAuditLog{err: errors.New("db down")}

	recorder := NewAuditRecorder(publisher, auditLog, zaptest.NewLogger(t)).WithSynchronousDispatch()

	// Must not panic or block; failures are logged only.
	recorder.Record(domain.SecurityEvent{Key: "key", Kind: domain.SecurityEventLockout})

	if len(publisher.events) != 1 || len(auditLog.events) != 1 {
		t.Fatal("expected delivery attempts despite failures")
	}
}

func TestRecordWithNilCollaborators(t *testing.T) {
	recorder := NewAuditRecorder(nil, nil, zaptest.NewLogger(t)).WithSynchronousDispatch()
	recorder.Record(domain.SecurityEvent{Key: "key", Kind: domain.SecurityEventLockout})
}
